// Package qureg provides the dense quantum register simulation engine.
//
// A Register holds either a pure state vector of 2^n complex amplitudes
// or a full 2^n x 2^n density matrix. It exposes the primitives the
// execution layer drives: unitary application, Kraus noise channels,
// collapse measurement, probability and amplitude extraction, reset and
// cloning. Qubit indices are zero-based; qubit k corresponds to bit k
// of a basis-state index.
package qureg

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/pkg/errors"
)

// Register is a simulated quantum register. The qubit count and the
// representation (state vector or density matrix) are fixed for the
// register's lifetime.
type Register struct {
	numQubits int
	isDensity bool

	// amps holds 2^n amplitudes in state-vector mode, or the row-major
	// 2^n x 2^n density matrix entries otherwise.
	amps []complex128

	rng *rand.Rand
}

// RegisterOption configures a Register.
type RegisterOption func(*Register)

// AsDensityMatrix makes the register track a density matrix instead of
// a pure state vector.
func AsDensityMatrix() RegisterOption {
	return func(r *Register) {
		r.isDensity = true
	}
}

// WithRand supplies the random number generator used for measurement
// collapse. The register defaults to an OS-seeded generator.
func WithRand(rng *rand.Rand) RegisterOption {
	return func(r *Register) {
		r.rng = rng
	}
}

// NewRegister creates a register of numQubits qubits in the all-zero
// state.
func NewRegister(numQubits int, opts ...RegisterOption) *Register {
	r := &Register{numQubits: numQubits}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(osSeed()))
	}
	dim := 1 << numQubits
	if r.isDensity {
		r.amps = make([]complex128, dim*dim)
	} else {
		r.amps = make([]complex128, dim)
	}
	r.amps[0] = 1
	return r
}

func osSeed() int64 {
	var b [8]byte
	if _, err := cryptorand.Read(b[:]); err != nil {
		return 1
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// NumQubits returns the number of qubits in the register.
func (r *Register) NumQubits() int {
	return r.numQubits
}

// IsDensityMatrix reports whether the register tracks a density matrix.
func (r *Register) IsDensityMatrix() bool {
	return r.isDensity
}

// Dim returns the Hilbert-space dimension 2^n.
func (r *Register) Dim() int {
	return 1 << r.numQubits
}

// Reset returns the register to the all-zero state.
func (r *Register) Reset() {
	for i := range r.amps {
		r.amps[i] = 0
	}
	r.amps[0] = 1
}

// Clone returns a deep copy of the register sharing the generator.
func (r *Register) Clone() *Register {
	out := &Register{
		numQubits: r.numQubits,
		isDensity: r.isDensity,
		amps:      make([]complex128, len(r.amps)),
		rng:       r.rng,
	}
	copy(out.amps, r.amps)
	return out
}

func (r *Register) checkQubits(qubits ...int) error {
	for _, q := range qubits {
		if q < 0 || q >= r.numQubits {
			return errors.Errorf("qubit %d out of range for register of %d qubits", q, r.numQubits)
		}
	}
	return nil
}

// ApplyUnitary applies a row-major 2^k x 2^k unitary to the given k
// qubits. qubits[0] addresses the least significant bit of the matrix
// index.
func (r *Register) ApplyUnitary(qubits []int, matrix []complex128) error {
	if len(qubits) == 0 {
		return errors.New("unitary application needs at least one qubit")
	}
	if err := r.checkQubits(qubits...); err != nil {
		return err
	}
	if err := checkDistinct(qubits); err != nil {
		return err
	}
	dim := 1 << len(qubits)
	if len(matrix) != dim*dim {
		return errors.Errorf("unitary matrix has %d entries, want %d", len(matrix), dim*dim)
	}
	full := r.Dim()
	if !r.isDensity {
		applyMatrixAxis(r.amps, matrix, qubits, r.numQubits, 1, 1, 0, false)
		return nil
	}
	// rho -> U rho: transform the row index of every column.
	applyMatrixAxis(r.amps, matrix, qubits, r.numQubits, full, full, 1, false)
	// rho -> rho U+: transform the column index of every row with conj(U).
	applyMatrixAxis(r.amps, matrix, qubits, r.numQubits, 1, full, full, true)
	return nil
}

func checkDistinct(qubits []int) error {
	for i := 0; i < len(qubits); i++ {
		for j := i + 1; j < len(qubits); j++ {
			if qubits[i] == qubits[j] {
				return errors.Errorf("duplicate qubit %d in operand list", qubits[i])
			}
		}
	}
	return nil
}

// applyMatrixAxis multiplies the matrix into buf along one index axis.
// The axis is a virtual vector of 2^n entries at positions
// base + idx*stride; baseCount bases spaced baseStep apart are
// transformed. With conjugate set the element-wise conjugate of the
// matrix is used.
func applyMatrixAxis(buf, matrix []complex128, qubits []int, n, stride, baseCount, baseStep int, conjugate bool) {
	k := len(qubits)
	dim := 1 << k

	offsets := make([]int, dim)
	for j := 1; j < dim; j++ {
		off := 0
		for b := 0; b < k; b++ {
			if j&(1<<b) != 0 {
				off |= 1 << qubits[b]
			}
		}
		offsets[j] = off
	}
	mask := offsets[dim-1]

	m := matrix
	if conjugate {
		m = make([]complex128, len(matrix))
		for i, v := range matrix {
			m[i] = cmplx.Conj(v)
		}
	}

	scratch := make([]complex128, dim)
	total := 1 << n
	for bi := 0; bi < baseCount; bi++ {
		base := bi * baseStep
		for idx := 0; idx < total; idx++ {
			if idx&mask != 0 {
				continue
			}
			for j := 0; j < dim; j++ {
				scratch[j] = buf[base+(idx|offsets[j])*stride]
			}
			for i := 0; i < dim; i++ {
				var sum complex128
				row := m[i*dim:]
				for j := 0; j < dim; j++ {
					sum += row[j] * scratch[j]
				}
				buf[base+(idx|offsets[i])*stride] = sum
			}
		}
	}
}

// Measure collapses one qubit and returns the sampled outcome.
func (r *Register) Measure(qubit int) (bool, error) {
	if err := r.checkQubits(qubit); err != nil {
		return false, err
	}
	full := r.Dim()
	bit := 1 << qubit

	var pOne float64
	if r.isDensity {
		for i := 0; i < full; i++ {
			if i&bit != 0 {
				pOne += real(r.amps[i*full+i])
			}
		}
	} else {
		for i, a := range r.amps {
			if i&bit != 0 {
				pOne += real(a)*real(a) + imag(a)*imag(a)
			}
		}
	}

	outcome := r.rng.Float64() < pOne
	keep := pOne
	if !outcome {
		keep = 1 - pOne
	}
	if keep <= 0 {
		return false, errors.Errorf("measurement of qubit %d collapsed onto a zero-probability branch", qubit)
	}

	matches := func(i int) bool { return (i&bit != 0) == outcome }
	if r.isDensity {
		norm := complex(1/keep, 0)
		for row := 0; row < full; row++ {
			for col := 0; col < full; col++ {
				if matches(row) && matches(col) {
					r.amps[row*full+col] *= norm
				} else {
					r.amps[row*full+col] = 0
				}
			}
		}
	} else {
		norm := complex(1/math.Sqrt(keep), 0)
		for i := range r.amps {
			if matches(i) {
				r.amps[i] *= norm
			} else {
				r.amps[i] = 0
			}
		}
	}
	return outcome, nil
}

// Probabilities returns the occupation probability of every basis
// state.
func (r *Register) Probabilities() []float64 {
	full := r.Dim()
	probs := make([]float64, full)
	if r.isDensity {
		for i := 0; i < full; i++ {
			probs[i] = real(r.amps[i*full+i])
		}
	} else {
		for i, a := range r.amps {
			probs[i] = real(a)*real(a) + imag(a)*imag(a)
		}
	}
	return probs
}

// Amplitudes returns a copy of the state vector. Density-matrix
// registers have no state vector and return an error.
func (r *Register) Amplitudes() ([]complex128, error) {
	if r.isDensity {
		return nil, errors.New("cannot obtain a state vector from a density-matrix register")
	}
	out := make([]complex128, len(r.amps))
	copy(out, r.amps)
	return out, nil
}

// DensityMatrix returns the row-major density matrix. State-vector
// registers return the outer product of their state.
func (r *Register) DensityMatrix() []complex128 {
	full := r.Dim()
	out := make([]complex128, full*full)
	if r.isDensity {
		copy(out, r.amps)
		return out
	}
	for row := 0; row < full; row++ {
		for col := 0; col < full; col++ {
			out[row*full+col] = r.amps[row] * cmplx.Conj(r.amps[col])
		}
	}
	return out
}

// SetStateVector replaces the register state with the given
// amplitudes. A density-matrix register receives the pure-state
// projector.
func (r *Register) SetStateVector(values []complex128) error {
	full := r.Dim()
	if len(values) != full {
		return errors.Errorf("state vector has %d amplitudes, want %d", len(values), full)
	}
	if !r.isDensity {
		copy(r.amps, values)
		return nil
	}
	for row := 0; row < full; row++ {
		for col := 0; col < full; col++ {
			r.amps[row*full+col] = values[row] * cmplx.Conj(values[col])
		}
	}
	return nil
}

// SetDensityMatrix replaces the register state with the given
// row-major density matrix. State-vector registers cannot hold one.
func (r *Register) SetDensityMatrix(values []complex128) error {
	if !r.isDensity {
		return errors.New("cannot set a density matrix on a state-vector register")
	}
	full := r.Dim()
	if len(values) != full*full {
		return errors.Errorf("density matrix has %d entries, want %d", len(values), full*full)
	}
	copy(r.amps, values)
	return nil
}

// ExpectationPauliProduct returns the real expectation value of a
// product of single-qubit Pauli operators. Codes: 0=I, 1=X, 2=Y, 3=Z.
func (r *Register) ExpectationPauliProduct(paulis map[int]int) (float64, error) {
	applied := r.cloneBuffer()
	full := r.Dim()
	for qubit, code := range paulis {
		if err := r.checkQubits(qubit); err != nil {
			return 0, err
		}
		if code < 0 || code > 3 {
			return 0, errors.Errorf("unknown pauli code %d for qubit %d", code, qubit)
		}
		if code == 0 {
			continue
		}
		m := pauliMatrix(code)
		if r.isDensity {
			applyMatrixAxis(applied, m, []int{qubit}, r.numQubits, full, full, 1, false)
		} else {
			applyMatrixAxis(applied, m, []int{qubit}, r.numQubits, 1, 1, 0, false)
		}
	}
	var exp float64
	if r.isDensity {
		for i := 0; i < full; i++ {
			exp += real(applied[i*full+i])
		}
	} else {
		for i, a := range r.amps {
			exp += real(cmplx.Conj(a) * applied[i])
		}
	}
	return exp, nil
}

func (r *Register) cloneBuffer() []complex128 {
	out := make([]complex128, len(r.amps))
	copy(out, r.amps)
	return out
}

func pauliMatrix(code int) []complex128 {
	switch code {
	case 1:
		return []complex128{0, 1, 1, 0}
	case 2:
		return []complex128{0, -1i, 1i, 0}
	case 3:
		return []complex128{1, 0, 0, -1}
	}
	return []complex128{1, 0, 0, 1}
}
