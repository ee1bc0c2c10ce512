// Package backend exposes the public surface for running quantum
// circuits: a seeded, fixed-capacity Backend that plans, executes and
// post-processes circuits and measurement collections.
package backend

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"runtime"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/qrunlab/qrun/circuit"
	"github.com/qrunlab/qrun/exec"
)

const defaultPlanCacheSize = 64

// Measurement groups circuits that share a constant preparation prefix.
// Each circuit is prefixed with the constant circuit and run
// independently; outputs merge by register name.
type Measurement interface {
	ConstantCircuit() *circuit.Circuit
	Circuits() []*circuit.Circuit
}

// CircuitMeasurement is a plain Measurement over explicit circuits.
type CircuitMeasurement struct {
	Constant *circuit.Circuit
	Runs     []*circuit.Circuit
}

// ConstantCircuit returns the shared preparation circuit, possibly nil.
func (m CircuitMeasurement) ConstantCircuit() *circuit.Circuit { return m.Constant }

// Circuits returns the per-run circuits.
func (m CircuitMeasurement) Circuits() []*circuit.Circuit { return m.Runs }

// Stats counts the work a Backend has performed.
type Stats struct {
	CircuitsRun     uint64
	ShotsExecuted   uint64
	PlanCacheHits   uint64
	PlanCacheMisses uint64
}

type planKey struct {
	fingerprint uint64
	repetitions int
}

// Backend runs circuits against quantum register engines of a fixed
// maximum size. Execution plans are memoized per circuit fingerprint,
// so repeated runs of the same circuit skip replanning.
type Backend struct {
	qubitCount    int
	repetitions   int
	seedWords     []uint64
	device        exec.Device
	readout       *ImperfectReadoutModel
	log           *zap.Logger
	planCacheSize int

	plans *lru.Cache[planKey, *exec.Plan]

	mu    sync.Mutex
	stats Stats
}

// Option is a functional option for configuring the Backend.
type Option func(*Backend)

// WithSeed makes every run deterministic, derived from the given words.
func WithSeed(words ...uint64) Option {
	return func(b *Backend) {
		b.seedWords = words
	}
}

// WithRepetitions sets the shot count used for stochastic circuits.
func WithRepetitions(n int) Option {
	return func(b *Backend) {
		b.repetitions = n
	}
}

// WithDevice attaches a device for gate availability checks.
func WithDevice(d exec.Device) Option {
	return func(b *Backend) {
		b.device = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Backend) {
		b.log = log
	}
}

// WithPlanCacheSize sets the number of memoized execution plans.
func WithPlanCacheSize(n int) Option {
	return func(b *Backend) {
		b.planCacheSize = n
	}
}

// New creates a Backend sized for qubitCount qubits.
func New(qubitCount int, opts ...Option) (*Backend, error) {
	if qubitCount < 1 {
		return nil, errors.Errorf("backend needs at least one qubit, got %d", qubitCount)
	}

	b := &Backend{
		qubitCount:    qubitCount,
		repetitions:   1,
		log:           zap.NewNop(),
		planCacheSize: defaultPlanCacheSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.repetitions < 1 {
		b.repetitions = 1
	}

	plans, err := lru.New[planKey, *exec.Plan](b.planCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create plan cache")
	}
	b.plans = plans

	return b, nil
}

// QubitCount returns the backend's qubit capacity.
func (b *Backend) QubitCount() int { return b.qubitCount }

// Repetitions returns the configured shot count for stochastic circuits.
func (b *Backend) Repetitions() int { return b.repetitions }

// SetRepetitions changes the shot count used for stochastic circuits.
func (b *Backend) SetRepetitions(n int) {
	if n < 1 {
		n = 1
	}
	b.repetitions = n
}

// SetImperfectReadoutModel installs a readout error model applied to
// all bit output registers. A nil model disables post-processing.
func (b *Backend) SetImperfectReadoutModel(m *ImperfectReadoutModel) {
	b.readout = m
}

// Stats reports counters accumulated across runs.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// RunCircuit executes a single circuit and returns its output
// registers, with the readout error model applied if one is set.
func (b *Backend) RunCircuit(c *circuit.Circuit) (*exec.Registers, error) {
	out, err := b.runCircuit(c, -1)
	if err != nil {
		return nil, err
	}
	return b.applyReadout(out), nil
}

// RunMeasurementRegisters runs every circuit of the measurement,
// prefixed with its constant circuit, and merges the outputs by
// register name in circuit order. Circuits run in parallel, each with
// its own engine and generator.
func (b *Backend) RunMeasurementRegisters(m Measurement) (*exec.Registers, error) {
	constant := m.ConstantCircuit()
	circuits := m.Circuits()

	results := make([]*exec.Registers, len(circuits))
	eg := errgroup.Group{}
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range circuits {
		ordinal := i
		eg.Go(func() error {
			full := circuits[ordinal]
			if constant != nil {
				full = circuit.Concat(constant, full)
			}
			out, err := b.runCircuit(full, ordinal)
			if err != nil {
				return errors.Wrapf(err, "measurement circuit %d", ordinal)
			}
			results[ordinal] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := exec.NewRegisters()
	for _, out := range results {
		merged.Merge(out)
	}
	return b.applyReadout(merged), nil
}

// runCircuit checks the circuit fits the backend's qubit count,
// resolves the execution plan and runs it. A negative ordinal marks a
// standalone run.
func (b *Backend) runCircuit(c *circuit.Circuit, ordinal int) (*exec.Registers, error) {
	layout, err := exec.Preprocess(c)
	if err != nil {
		return nil, err
	}
	if layout.Qubits > b.qubitCount {
		return nil, errors.Wrapf(exec.ErrInsufficientQubits,
			"circuit needs %d qubits, backend has %d", layout.Qubits, b.qubitCount)
	}

	plan, err := b.planFor(c, layout)
	if err != nil {
		return nil, err
	}

	out, err := exec.Run(plan, b.runOptions(ordinal)...)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.stats.CircuitsRun++
	b.stats.ShotsExecuted += uint64(plan.Shots)
	b.mu.Unlock()

	return out, nil
}

func (b *Backend) planFor(c *circuit.Circuit, layout *exec.Layout) (*exec.Plan, error) {
	key := planKey{fingerprint: c.Fingerprint(), repetitions: b.repetitions}
	if plan, ok := b.plans.Get(key); ok {
		b.mu.Lock()
		b.stats.PlanCacheHits++
		b.mu.Unlock()
		return plan, nil
	}

	plan, err := exec.BuildPlan(c, layout, b.repetitions)
	if err != nil {
		return nil, err
	}
	b.plans.Add(key, plan)

	b.mu.Lock()
	b.stats.PlanCacheMisses++
	b.mu.Unlock()

	return plan, nil
}

// runOptions assembles the exec options for one circuit run. Without
// seed words the engine generator stays OS-seeded.
func (b *Backend) runOptions(ordinal int) []exec.RunOption {
	opts := []exec.RunOption{exec.WithLogger(b.log)}
	if b.device != nil {
		opts = append(opts, exec.WithDevice(b.device))
	}
	if len(b.seedWords) == 0 {
		return opts
	}
	return append(opts, exec.WithRand(runRand(b.circuitSeedWords(ordinal))))
}

// circuitSeedWords extends the backend seed with the circuit ordinal so
// parallel measurement circuits draw from independent streams.
func (b *Backend) circuitSeedWords(ordinal int) []uint64 {
	if ordinal < 0 {
		return b.seedWords
	}
	words := make([]uint64, len(b.seedWords), len(b.seedWords)+1)
	copy(words, b.seedWords)
	return append(words, uint64(ordinal))
}

func (b *Backend) applyReadout(out *exec.Registers) *exec.Registers {
	if b.readout == nil {
		return out
	}
	return ApplyNoisyReadouts(out, b.readout, b.readoutRand())
}

func (b *Backend) readoutRand() *rand.Rand {
	if len(b.seedWords) == 0 {
		return osRand()
	}
	digest := hashSeedWords(b.seedWords)
	return randFromDigest(digest[8:16])
}

// hashSeedWords condenses a seed word list into a fixed-size digest.
// Distinct byte ranges of the digest seed independent generators.
func hashSeedWords(words []uint64) [sha256.Size]byte {
	buf := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return sha256.Sum256(buf)
}

func runRand(words []uint64) *rand.Rand {
	digest := hashSeedWords(words)
	return randFromDigest(digest[0:8])
}

func randFromDigest(b []byte) *rand.Rand {
	seed := int64(binary.LittleEndian.Uint64(b) >> 1)
	return rand.New(rand.NewSource(seed))
}
