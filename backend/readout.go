package backend

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sort"
	"time"

	"github.com/qrunlab/qrun/exec"
)

// ImperfectReadoutModel captures per-qubit measurement error rates: the
// probability of reading a 0 as a 1 and of reading a 1 as a 0. Qubits
// without an entry read out perfectly.
type ImperfectReadoutModel struct {
	ZeroAsOne map[int]float64 `json:"zero_as_one"`
	OneAsZero map[int]float64 `json:"one_as_zero"`
}

// NewImperfectReadoutModel returns an empty, error-free model.
func NewImperfectReadoutModel() *ImperfectReadoutModel {
	return &ImperfectReadoutModel{
		ZeroAsOne: make(map[int]float64),
		OneAsZero: make(map[int]float64),
	}
}

// NewUniformReadoutModel applies the same error rates to the first
// qubits qubits.
func NewUniformReadoutModel(qubits int, zeroAsOne, oneAsZero float64) *ImperfectReadoutModel {
	m := NewImperfectReadoutModel()
	for q := 0; q < qubits; q++ {
		m.SetError(q, zeroAsOne, oneAsZero)
	}
	return m
}

// SetError sets both error rates for one qubit.
func (m *ImperfectReadoutModel) SetError(qubit int, zeroAsOne, oneAsZero float64) {
	if m.ZeroAsOne == nil {
		m.ZeroAsOne = make(map[int]float64)
	}
	if m.OneAsZero == nil {
		m.OneAsZero = make(map[int]float64)
	}
	m.ZeroAsOne[qubit] = zeroAsOne
	m.OneAsZero[qubit] = oneAsZero
}

func (m *ImperfectReadoutModel) flipProbability(index int, value bool) float64 {
	if value {
		return m.OneAsZero[index]
	}
	return m.ZeroAsOne[index]
}

// ApplyNoisyReadouts flips each bit of every bit output register
// independently with its column-indexed error rate and returns a new
// register set. The input registers are not mutated; float and complex
// registers pass through untouched. Register names are visited in
// sorted order so a fixed generator yields reproducible flips.
func ApplyNoisyReadouts(regs *exec.Registers, model *ImperfectReadoutModel, rng *rand.Rand) *exec.Registers {
	noisy := exec.NewRegisters()
	for name, rows := range regs.Float {
		noisy.Float[name] = rows
	}
	for name, rows := range regs.Complex {
		noisy.Complex[name] = rows
	}

	names := make([]string, 0, len(regs.Bit))
	for name := range regs.Bit {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rows := regs.Bit[name]
		flipped := make([]exec.BitRegister, len(rows))
		for i, row := range rows {
			out := make(exec.BitRegister, len(row))
			for q, bit := range row {
				p := model.flipProbability(q, bit)
				if p > 0 && rng.Float64() < p {
					bit = !bit
				}
				out[q] = bit
			}
			flipped[i] = out
		}
		noisy.Bit[name] = flipped
	}
	return noisy
}

func osRand() *rand.Rand {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(buf[:]) >> 1)))
}
