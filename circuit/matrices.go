package circuit

import (
	"math"
	"math/bits"
	"math/cmplx"
)

// Matrix returns the unitary matrix of a gate operation as a row-major
// d x d slice, with d = 2^len(Qubits) and Qubits[0] addressing the
// least significant index bit. Non-gate operations return nil.
func (op *Operation) Matrix() []complex128 {
	switch op.Kind {
	case OpHadamard:
		s := complex(1/math.Sqrt2, 0)
		return []complex128{s, s, s, -s}
	case OpPauliX:
		return []complex128{0, 1, 1, 0}
	case OpPauliY:
		return []complex128{0, -1i, 1i, 0}
	case OpPauliZ:
		return []complex128{1, 0, 0, -1}
	case OpSGate:
		return []complex128{1, 0, 0, 1i}
	case OpTGate:
		return []complex128{1, 0, 0, cmplx.Exp(1i * math.Pi / 4)}
	case OpSqrtPauliX:
		return []complex128{
			complex(0.5, 0.5), complex(0.5, -0.5),
			complex(0.5, -0.5), complex(0.5, 0.5),
		}
	case OpInvSqrtPauliX:
		return []complex128{
			complex(0.5, -0.5), complex(0.5, 0.5),
			complex(0.5, 0.5), complex(0.5, -0.5),
		}
	case OpPhaseShiftState0:
		return []complex128{cmplx.Exp(complex(0, op.Theta)), 0, 0, 1}
	case OpPhaseShiftState1:
		return []complex128{1, 0, 0, cmplx.Exp(complex(0, op.Theta))}
	case OpRotateX:
		c := complex(math.Cos(op.Theta/2), 0)
		s := complex(0, -math.Sin(op.Theta/2))
		return []complex128{c, s, s, c}
	case OpRotateY:
		c := complex(math.Cos(op.Theta/2), 0)
		s := complex(math.Sin(op.Theta/2), 0)
		return []complex128{c, -s, s, c}
	case OpRotateZ:
		return []complex128{
			cmplx.Exp(complex(0, -op.Theta/2)), 0,
			0, cmplx.Exp(complex(0, op.Theta/2)),
		}
	case OpCNOT:
		// Index = control + 2*target: |c=1,t=0> <-> |c=1,t=1>
		return []complex128{
			1, 0, 0, 0,
			0, 0, 0, 1,
			0, 0, 1, 0,
			0, 1, 0, 0,
		}
	case OpControlledPauliZ:
		return diagonal(1, 1, 1, -1)
	case OpControlledPhaseShift:
		return diagonal(1, 1, 1, cmplx.Exp(complex(0, op.Theta)))
	case OpSWAP:
		return []complex128{
			1, 0, 0, 0,
			0, 0, 1, 0,
			0, 1, 0, 0,
			0, 0, 0, 1,
		}
	case OpISwap:
		return []complex128{
			1, 0, 0, 0,
			0, 0, 1i, 0,
			0, 1i, 0, 0,
			0, 0, 0, 1,
		}
	case OpToffoli:
		// Index = c0 + 2*c1 + 4*target: |110> <-> |111>
		m := identity(8)
		m[3*8+3], m[7*8+7] = 0, 0
		m[3*8+7], m[7*8+3] = 1, 1
		return m
	case OpControlledControlledPauliZ:
		m := identity(8)
		m[7*8+7] = -1
		return m
	case OpMultiQubitZZ:
		dim := 1 << len(op.Qubits)
		m := make([]complex128, dim*dim)
		for i := 0; i < dim; i++ {
			sign := 1.0
			if bits.OnesCount(uint(i))%2 == 1 {
				sign = -1.0
			}
			m[i*dim+i] = cmplx.Exp(complex(0, -sign*op.Theta/2))
		}
		return m
	}
	return nil
}

func identity(dim int) []complex128 {
	m := make([]complex128, dim*dim)
	for i := 0; i < dim; i++ {
		m[i*dim+i] = 1
	}
	return m
}

func diagonal(entries ...complex128) []complex128 {
	dim := len(entries)
	m := make([]complex128, dim*dim)
	for i, e := range entries {
		m[i*dim+i] = e
	}
	return m
}
