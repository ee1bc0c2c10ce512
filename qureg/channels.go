package qureg

import (
	"math"

	"github.com/pkg/errors"
)

// DampingProbability converts an amplitude damping rate acting over a
// gate time into the channel probability 1 - exp(-time*rate).
func DampingProbability(gateTime, rate float64) float64 {
	return 1 - math.Exp(-gateTime*rate)
}

// DephasingProbability converts a dephasing rate acting over a gate
// time into the channel probability (1 - exp(-2*time*rate))/2. The
// off-diagonal coherences then shrink by exactly exp(-2*time*rate).
func DephasingProbability(gateTime, rate float64) float64 {
	return (1 - math.Exp(-2*gateTime*rate)) / 2
}

// DepolarisingProbability converts a depolarising rate acting over a
// gate time into the channel probability 3/4 * (1 - exp(-time*rate)),
// reaching the maximally mixed state as time grows.
func DepolarisingProbability(gateTime, rate float64) float64 {
	return 3.0 / 4.0 * (1 - math.Exp(-gateTime*rate))
}

// DampingKraus returns the Kraus operators of the amplitude damping
// channel with damping probability p.
func DampingKraus(p float64) [][]complex128 {
	return [][]complex128{
		{1, 0, 0, complex(math.Sqrt(1-p), 0)},
		{0, complex(math.Sqrt(p), 0), 0, 0},
	}
}

// DephasingKraus returns the Kraus operators of the phase damping
// channel rho -> (1-p) rho + p Z rho Z.
func DephasingKraus(p float64) [][]complex128 {
	k0 := complex(math.Sqrt(1-p), 0)
	k1 := complex(math.Sqrt(p), 0)
	return [][]complex128{
		{k0, 0, 0, k0},
		{k1, 0, 0, -k1},
	}
}

// DepolarisingKraus returns the Kraus operators of the depolarising
// channel rho -> (1-p) rho + p/3 (X rho X + Y rho Y + Z rho Z).
func DepolarisingKraus(p float64) [][]complex128 {
	k0 := complex(math.Sqrt(1-p), 0)
	k := complex(math.Sqrt(p/3), 0)
	return [][]complex128{
		{k0, 0, 0, k0},
		{0, k, k, 0},
		{0, -1i * k, 1i * k, 0},
		{k, 0, 0, -k},
	}
}

// ApplyKraus applies a single-qubit noise channel given by its Kraus
// operators, rho -> sum_i K_i rho K_i+. Only density-matrix registers
// can hold the resulting mixed state.
func (r *Register) ApplyKraus(qubit int, operators [][]complex128) error {
	if !r.isDensity {
		return errors.New("cannot apply a noise channel to a state-vector register")
	}
	if err := r.checkQubits(qubit); err != nil {
		return err
	}
	if len(operators) == 0 {
		return errors.New("noise channel needs at least one Kraus operator")
	}
	for _, k := range operators {
		if len(k) != 4 {
			return errors.Errorf("Kraus operator has %d entries, want 4", len(k))
		}
	}

	full := r.Dim()
	result := make([]complex128, full*full)
	term := make([]complex128, full*full)
	for _, k := range operators {
		copy(term, r.amps)
		// term -> K term K+
		applyMatrixAxis(term, k, []int{qubit}, r.numQubits, full, full, 1, false)
		applyMatrixAxis(term, k, []int{qubit}, r.numQubits, 1, full, full, true)
		for i := range result {
			result[i] += term[i]
		}
	}
	copy(r.amps, result)
	return nil
}
