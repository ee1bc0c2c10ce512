// Package exec implements the circuit execution core: register layout
// preprocessing, repeated-measurement planning, the per-operation
// dispatcher and the shot aggregator.
package exec

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/qrunlab/qrun/circuit"
	"github.com/qrunlab/qrun/qureg"
)

// negativeProbabilityTolerance bounds how far below zero a probability
// may drift through floating-point error before sampling refuses the
// distribution. Entries inside the tolerance are clamped to zero.
const negativeProbabilityTolerance = 1e-14

// Device answers gate availability queries and accepts reconfiguration
// requests. Gate times follow the operation naming of the circuit
// package; the second return value is false when the device does not
// offer the gate on the addressed qubits. A nil Device disables all
// availability checks.
type Device interface {
	SingleQubitGateTime(name string, qubit int) (float64, bool)
	TwoQubitGateTime(name string, control, target int) (float64, bool)
	ThreeQubitGateTime(name string, control0, control1, target int) (float64, bool)
	MultiQubitGateTime(name string, qubits []int) (float64, bool)
	ChangeDevice(name string, payload []byte) error
}

// Runner holds the mutable state of one circuit execution: the engine,
// the random source and the current shot's internal registers.
type Runner struct {
	qr     *qureg.Register
	device Device
	rng    *rand.Rand
	log    *zap.Logger

	out       *Registers
	bits      map[string]BitRegister
	floats    map[string]FloatRegister
	complexes map[string]ComplexRegister
}

// RunOption configures a run.
type RunOption func(*Runner)

// WithDevice attaches a device for gate availability checks.
func WithDevice(d Device) RunOption {
	return func(r *Runner) {
		r.device = d
	}
}

// WithRand fixes the random source used for measurement collapses and
// sampling.
func WithRand(rng *rand.Rand) RunOption {
	return func(r *Runner) {
		r.rng = rng
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) RunOption {
	return func(r *Runner) {
		r.log = log
	}
}

// Run aggregates a planned circuit into output registers. One engine
// instance serves the whole run; it is reset at the top of every shot,
// and each shot's internal registers are appended to the same-named
// outputs afterwards. The first dispatch error aborts the run.
func Run(plan *Plan, opts ...RunOption) (*Registers, error) {
	r := &Runner{log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(entropySeed()))
	}

	engineOpts := []qureg.RegisterOption{qureg.WithRand(r.rng)}
	if plan.DensityMatrix {
		engineOpts = append(engineOpts, qureg.AsDensityMatrix())
	}
	r.qr = qureg.NewRegister(plan.Layout.Qubits, engineOpts...)
	r.out = outputRegisters(plan.Layout)

	r.log.Debug("running circuit",
		zap.Int("qubits", plan.Layout.Qubits),
		zap.Int("shots", plan.Shots),
		zap.Stringer("mode", plan.Mode),
		zap.Bool("densityMatrix", plan.DensityMatrix))

	for shot := 0; shot < plan.Shots; shot++ {
		r.qr.Reset()
		r.bits = map[string]BitRegister{}
		r.floats = map[string]FloatRegister{}
		r.complexes = map[string]ComplexRegister{}

		if err := r.runCircuit(plan.Circuit); err != nil {
			return nil, err
		}

		for name, reg := range r.bits {
			r.out.Bit[name] = append(r.out.Bit[name], append(BitRegister(nil), reg...))
		}
		for name, reg := range r.floats {
			r.out.Float[name] = append(r.out.Float[name], append(FloatRegister(nil), reg...))
		}
		for name, reg := range r.complexes {
			r.out.Complex[name] = append(r.out.Complex[name], append(ComplexRegister(nil), reg...))
		}
	}

	return r.out, nil
}

// runCircuit dispatches every operation of a circuit in order.
func (r *Runner) runCircuit(c *circuit.Circuit) error {
	ops := c.Operations()
	for i := range ops {
		if err := r.dispatch(&ops[i]); err != nil {
			return err
		}
	}
	return nil
}

// dispatch executes one operation against the engine and the internal
// registers.
func (r *Runner) dispatch(op *circuit.Operation) error {
	if op.Kind.IsGate() {
		return r.executeGate(op)
	}
	if op.Kind.IsDefinition() {
		r.executeDefinition(op)
		return nil
	}

	switch op.Kind {
	case circuit.OpInputBit:
		return r.executeInputBit(op)
	case circuit.OpMeasureQubit:
		return r.executeMeasure(op)
	case circuit.OpPragmaRepeatedMeasurement:
		return r.executeRepeatedMeasurement(op)
	case circuit.OpPragmaDamping, circuit.OpPragmaDephasing,
		circuit.OpPragmaDepolarising, circuit.OpPragmaGeneralNoise:
		return r.executeNoiseChannel(op)
	case circuit.OpPragmaRandomNoise:
		return r.executeRandomNoise(op)
	case circuit.OpPragmaSetStateVector:
		return r.executeSetStateVector(op)
	case circuit.OpPragmaSetDensityMatrix:
		return r.executeSetDensityMatrix(op)
	case circuit.OpPragmaConditional:
		return r.executeConditional(op)
	case circuit.OpPragmaLoop:
		return r.executeLoop(op)
	case circuit.OpPragmaActiveReset:
		return r.executeActiveReset(op)
	case circuit.OpPragmaGetStateVector, circuit.OpPragmaGetDensityMatrix,
		circuit.OpPragmaGetPauliProduct, circuit.OpPragmaGetOccupationProbability:
		return r.executeStateAccess(op)
	case circuit.OpPragmaChangeDevice:
		return r.executeChangeDevice(op)
	}

	if op.Kind.IsAcceptedNoOp() {
		return nil
	}
	return errors.Wrapf(ErrOperationNotSupported, "operation %s", op.Kind)
}

// executeDefinition allocates the internal register for an output
// definition. Non-output definitions are accepted and ignored.
func (r *Runner) executeDefinition(op *circuit.Operation) {
	if !op.IsOutput {
		return
	}
	switch op.Kind {
	case circuit.OpDefinitionBit:
		r.bits[op.Name] = make(BitRegister, op.Length)
	case circuit.OpDefinitionFloat:
		r.floats[op.Name] = make(FloatRegister, op.Length)
	case circuit.OpDefinitionComplex:
		r.complexes[op.Name] = make(ComplexRegister, op.Length)
	}
}

// executeGate checks device availability and forwards the unitary to
// the engine.
func (r *Runner) executeGate(op *circuit.Operation) error {
	for _, q := range op.Qubits {
		if q < 0 || q >= r.qr.NumQubits() {
			return errors.Wrapf(ErrInsufficientQubits,
				"gate %s on qubit %d, engine holds %d", op.Kind, q, r.qr.NumQubits())
		}
	}
	if err := r.checkDevice(op); err != nil {
		return err
	}
	if err := r.qr.ApplyUnitary(op.Qubits, op.Matrix()); err != nil {
		return errors.Wrapf(err, "gate %s", op.Kind)
	}
	return nil
}

// checkDevice validates gate availability when a device is attached.
func (r *Runner) checkDevice(op *circuit.Operation) error {
	if r.device == nil {
		return nil
	}
	name := op.Kind.String()
	available := false
	switch len(op.Qubits) {
	case 1:
		_, available = r.device.SingleQubitGateTime(name, op.Qubits[0])
	case 2:
		_, available = r.device.TwoQubitGateTime(name, op.Qubits[0], op.Qubits[1])
	case 3:
		_, available = r.device.ThreeQubitGateTime(name, op.Qubits[0], op.Qubits[1], op.Qubits[2])
	default:
		_, available = r.device.MultiQubitGateTime(name, op.Qubits)
	}
	if !available {
		return errors.Wrapf(ErrDeviceUnavailable, "gate %s on qubits %v", op.Kind, op.Qubits)
	}
	return nil
}

// executeInputBit writes a constant into an existing bit register.
func (r *Runner) executeInputBit(op *circuit.Operation) error {
	reg, ok := r.bits[op.Name]
	if !ok {
		return errors.Wrapf(ErrRegisterNotFound, "bit register %q for input bit", op.Name)
	}
	if op.Index >= len(reg) {
		return errors.Wrapf(ErrIndexOutOfRange,
			"input bit index %d in register %q of length %d", op.Index, op.Name, len(reg))
	}
	reg[op.Index] = op.BitValue
	return nil
}

// executeMeasure collapses one qubit into the named readout.
func (r *Runner) executeMeasure(op *circuit.Operation) error {
	reg, ok := r.bits[op.Name]
	if !ok {
		return errors.Wrapf(ErrRegisterNotFound,
			"bit register %q for measurement of qubit %d", op.Name, op.Qubit)
	}
	if op.Index >= len(reg) {
		return errors.Wrapf(ErrIndexOutOfRange,
			"readout index %d in register %q of length %d", op.Index, op.Name, len(reg))
	}
	if op.Qubit < 0 || op.Qubit >= r.qr.NumQubits() {
		return errors.Wrapf(ErrInsufficientQubits,
			"measurement of qubit %d, engine holds %d", op.Qubit, r.qr.NumQubits())
	}
	outcome, err := r.qr.Measure(op.Qubit)
	if err != nil {
		return errors.Wrapf(err, "measurement of qubit %d", op.Qubit)
	}
	reg[op.Index] = outcome
	return nil
}

// executeRepeatedMeasurement draws count rows from the current
// distribution and appends them straight to the output register. The
// internal register is dropped afterwards so the shot snapshot does
// not report it a second time.
func (r *Runner) executeRepeatedMeasurement(op *circuit.Operation) error {
	template, ok := r.bits[op.Name]
	if !ok {
		return errors.Wrapf(ErrRegisterNotFound,
			"bit register %q for repeated measurement", op.Name)
	}

	cumulative, err := cumulativeDistribution(r.qr.Probabilities())
	if err != nil {
		return err
	}

	n := r.qr.NumQubits()
	for draw := 0; draw < op.Count; draw++ {
		row := append(BitRegister(nil), template...)
		basis := sampleIndex(cumulative, r.rng)
		for q := 0; q < n; q++ {
			index := q
			if mapped, ok := op.Mapping[q]; ok {
				index = mapped
			}
			if index >= len(row) {
				continue
			}
			row[index] = basis&(1<<q) != 0
		}
		r.out.Bit[op.Name] = append(r.out.Bit[op.Name], row)
	}

	delete(r.bits, op.Name)
	return nil
}

// executeNoiseChannel forwards the pragma to the engine's Kraus
// primitive. Qubits beyond the engine are skipped, matching the
// preprocessed layout being the single source of engine size.
func (r *Runner) executeNoiseChannel(op *circuit.Operation) error {
	if op.Qubit < 0 || op.Qubit >= r.qr.NumQubits() {
		r.log.Debug("noise pragma outside engine, skipped",
			zap.Stringer("kind", op.Kind), zap.Int("qubit", op.Qubit))
		return nil
	}
	if !r.qr.IsDensityMatrix() {
		return errors.Wrapf(ErrStateVectorDensityMismatch,
			"%s needs a density-matrix engine", op.Kind)
	}

	switch op.Kind {
	case circuit.OpPragmaDamping:
		return r.applyKraus(op, qureg.DampingKraus(qureg.DampingProbability(op.GateTime, op.Rate)))
	case circuit.OpPragmaDephasing:
		return r.applyKraus(op, qureg.DephasingKraus(qureg.DephasingProbability(op.GateTime, op.Rate)))
	case circuit.OpPragmaDepolarising:
		return r.applyKraus(op, qureg.DepolarisingKraus(qureg.DepolarisingProbability(op.GateTime, op.Rate)))
	case circuit.OpPragmaGeneralNoise:
		channels := [][][]complex128{
			qureg.DampingKraus(qureg.DampingProbability(op.GateTime, op.DampingRate)),
			qureg.DepolarisingKraus(qureg.DepolarisingProbability(op.GateTime, op.DepolarisingRate)),
			qureg.DephasingKraus(qureg.DephasingProbability(op.GateTime, op.DephasingRate)),
		}
		for _, operators := range channels {
			if err := r.applyKraus(op, operators); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) applyKraus(op *circuit.Operation, operators [][]complex128) error {
	if err := r.qr.ApplyKraus(op.Qubit, operators); err != nil {
		return errors.Wrapf(err, "%s on qubit %d", op.Kind, op.Qubit)
	}
	return nil
}

// executeRandomNoise applies the stochastic unravelling of
// depolarising and dephasing noise: one Pauli drawn per dispatch with
// p(X) = p(Y) = r0/3 and p(Z) = r0/3 + r1, where r0 and r1 are the
// gate-time scaled depolarising and dephasing rates. Averaging over
// shots recovers the channel, so this works in both engine modes.
func (r *Runner) executeRandomNoise(op *circuit.Operation) error {
	if op.Qubit < 0 || op.Qubit >= r.qr.NumQubits() {
		r.log.Debug("noise pragma outside engine, skipped",
			zap.Stringer("kind", op.Kind), zap.Int("qubit", op.Qubit))
		return nil
	}

	r0 := op.GateTime * op.DepolarisingRate
	r1 := op.GateTime * op.DephasingRate

	var gate circuit.Operation
	switch x := r.rng.Float64(); {
	case x < r0/3:
		gate = circuit.PauliX(op.Qubit)
	case x < 2*r0/3:
		gate = circuit.PauliY(op.Qubit)
	case x < r0+r1:
		gate = circuit.PauliZ(op.Qubit)
	default:
		return nil
	}
	if err := r.qr.ApplyUnitary(gate.Qubits, gate.Matrix()); err != nil {
		return errors.Wrapf(err, "%s on qubit %d", op.Kind, op.Qubit)
	}
	return nil
}

// executeSetStateVector installs the amplitude payload. A
// density-matrix engine receives the pure-state projector.
func (r *Runner) executeSetStateVector(op *circuit.Operation) error {
	if err := r.qr.SetStateVector(op.Values); err != nil {
		return errors.Wrap(err, "set state vector")
	}
	return nil
}

// executeSetDensityMatrix installs the density payload. State-vector
// engines cannot hold it.
func (r *Runner) executeSetDensityMatrix(op *circuit.Operation) error {
	if !r.qr.IsDensityMatrix() {
		return errors.Wrap(ErrStateVectorDensityMismatch,
			"set density matrix on a state-vector engine")
	}
	if err := r.qr.SetDensityMatrix(op.Values); err != nil {
		return errors.Wrap(err, "set density matrix")
	}
	return nil
}

// executeConditional runs the sub-circuit when the named bit is set.
func (r *Runner) executeConditional(op *circuit.Operation) error {
	reg, ok := r.bits[op.Name]
	if !ok {
		return errors.Wrapf(ErrRegisterNotFound, "conditional register %q", op.Name)
	}
	if op.Index >= len(reg) {
		return errors.Wrapf(ErrIndexOutOfRange,
			"conditional bit %d in register %q of length %d", op.Index, op.Name, len(reg))
	}
	if !reg[op.Index] || op.SubCircuit == nil {
		return nil
	}
	return r.runCircuit(op.SubCircuit)
}

// executeLoop runs the sub-circuit floor(max(repetitions, 0)) times.
func (r *Runner) executeLoop(op *circuit.Operation) error {
	if op.SubCircuit == nil {
		return nil
	}
	times := int(math.Floor(math.Max(op.Repetitions, 0)))
	for i := 0; i < times; i++ {
		if err := r.runCircuit(op.SubCircuit); err != nil {
			return err
		}
	}
	return nil
}

// executeActiveReset measures the qubit and flips it back when the
// outcome is one.
func (r *Runner) executeActiveReset(op *circuit.Operation) error {
	if op.Qubit < 0 || op.Qubit >= r.qr.NumQubits() {
		return errors.Wrapf(ErrInsufficientQubits,
			"active reset of qubit %d, engine holds %d", op.Qubit, r.qr.NumQubits())
	}
	outcome, err := r.qr.Measure(op.Qubit)
	if err != nil {
		return errors.Wrapf(err, "active reset of qubit %d", op.Qubit)
	}
	if !outcome {
		return nil
	}
	flip := circuit.PauliX(op.Qubit)
	if err := r.qr.ApplyUnitary(flip.Qubits, flip.Matrix()); err != nil {
		return errors.Wrapf(err, "active reset of qubit %d", op.Qubit)
	}
	return nil
}

// executeStateAccess evaluates a state query on a clone of the engine.
// The optional evaluation circuit mutates only the clone; its
// classical effects still land in the shared internal registers.
func (r *Runner) executeStateAccess(op *circuit.Operation) error {
	scratch := *r
	scratch.qr = r.qr.Clone()
	if op.SubCircuit != nil {
		if err := scratch.runCircuit(op.SubCircuit); err != nil {
			return err
		}
	}

	switch op.Kind {
	case circuit.OpPragmaGetStateVector:
		if _, ok := r.complexes[op.Name]; !ok {
			return errors.Wrapf(ErrRegisterNotFound,
				"complex register %q for state-vector readout", op.Name)
		}
		amps, err := scratch.qr.Amplitudes()
		if err != nil {
			return errors.Wrap(ErrStateVectorDensityMismatch,
				"state vector requested from a density-matrix engine")
		}
		r.complexes[op.Name] = ComplexRegister(amps)
	case circuit.OpPragmaGetDensityMatrix:
		if _, ok := r.complexes[op.Name]; !ok {
			return errors.Wrapf(ErrRegisterNotFound,
				"complex register %q for density-matrix readout", op.Name)
		}
		r.complexes[op.Name] = ComplexRegister(scratch.qr.DensityMatrix())
	case circuit.OpPragmaGetPauliProduct:
		if _, ok := r.floats[op.Name]; !ok {
			return errors.Wrapf(ErrRegisterNotFound,
				"float register %q for pauli product readout", op.Name)
		}
		value, err := scratch.qr.ExpectationPauliProduct(op.PauliProduct)
		if err != nil {
			return errors.Wrap(err, "pauli product expectation")
		}
		r.floats[op.Name] = FloatRegister{value}
	case circuit.OpPragmaGetOccupationProbability:
		if _, ok := r.floats[op.Name]; !ok {
			return errors.Wrapf(ErrRegisterNotFound,
				"float register %q for occupation probabilities", op.Name)
		}
		r.floats[op.Name] = FloatRegister(scratch.qr.Probabilities())
	}
	return nil
}

// executeChangeDevice forwards a reconfiguration request to the
// device, when one is attached.
func (r *Runner) executeChangeDevice(op *circuit.Operation) error {
	if r.device == nil {
		return nil
	}
	if err := r.device.ChangeDevice(op.Name, op.Payload); err != nil {
		return errors.Wrapf(err, "device change %q", op.Name)
	}
	return nil
}

// cumulativeDistribution folds a probability vector into cumulative
// sums for sampling.
func cumulativeDistribution(probs []float64) ([]float64, error) {
	cumulative := make([]float64, len(probs))
	sum := 0.0
	for i, p := range probs {
		if p < -negativeProbabilityTolerance {
			return nil, errors.Wrapf(ErrNegativeProbability,
				"probability %g at basis state %d", p, i)
		}
		if p < 0 {
			p = 0
		}
		sum += p
		cumulative[i] = sum
	}
	return cumulative, nil
}

// sampleIndex draws one basis-state index from a cumulative
// distribution.
func sampleIndex(cumulative []float64, rng *rand.Rand) int {
	total := cumulative[len(cumulative)-1]
	idx := sort.SearchFloat64s(cumulative, rng.Float64()*total)
	if idx >= len(cumulative) {
		idx = len(cumulative) - 1
	}
	return idx
}

// entropySeed draws a 63-bit seed from the operating system.
func entropySeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
