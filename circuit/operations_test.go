package circuit_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/qrunlab/qrun/circuit"
)

var _ = Describe("Operations", func() {
	Describe("kind classification", func() {
		It("should classify gates", func() {
			Expect(circuit.OpHadamard.IsGate()).To(BeTrue())
			Expect(circuit.OpCNOT.IsGate()).To(BeTrue())
			Expect(circuit.OpMultiQubitZZ.IsGate()).To(BeTrue())
			Expect(circuit.OpMeasureQubit.IsGate()).To(BeFalse())
			Expect(circuit.OpDefinitionBit.IsGate()).To(BeFalse())
		})

		It("should classify noise pragmas", func() {
			Expect(circuit.OpPragmaDamping.IsNoise()).To(BeTrue())
			Expect(circuit.OpPragmaRandomNoise.IsNoise()).To(BeTrue())
			Expect(circuit.OpPauliX.IsNoise()).To(BeFalse())
		})

		It("should mark density-matrix requirements", func() {
			Expect(circuit.OpPragmaDamping.RequiresDensityMatrix()).To(BeTrue())
			Expect(circuit.OpPragmaSetDensityMatrix.RequiresDensityMatrix()).To(BeTrue())
			Expect(circuit.OpPragmaRandomNoise.RequiresDensityMatrix()).To(BeFalse())
			Expect(circuit.OpPragmaSetStateVector.RequiresDensityMatrix()).To(BeFalse())
		})

		It("should mark stochastic unravelling kinds", func() {
			Expect(circuit.OpPragmaRandomNoise.IsStochastic()).To(BeTrue())
			Expect(circuit.OpPragmaOverrotation.IsStochastic()).To(BeTrue())
			Expect(circuit.OpPragmaDamping.IsStochastic()).To(BeFalse())
		})

		It("should mark accepted no-ops", func() {
			Expect(circuit.OpPragmaGlobalPhase.IsAcceptedNoOp()).To(BeTrue())
			Expect(circuit.OpPragmaSetNumberOfMeasurements.IsAcceptedNoOp()).To(BeTrue())
			Expect(circuit.OpDefinitionUsize.IsAcceptedNoOp()).To(BeTrue())
			Expect(circuit.OpMeasureQubit.IsAcceptedNoOp()).To(BeFalse())
		})

		It("should print kind names", func() {
			Expect(circuit.OpHadamard.String()).To(Equal("Hadamard"))
			Expect(circuit.OpPragmaRepeatedMeasurement.String()).To(Equal("PragmaRepeatedMeasurement"))
			Expect(circuit.OpKind(9999).String()).To(Equal("Unknown"))
		})
	})

	Describe("InvolvedQubits", func() {
		It("should report gate operands", func() {
			op := circuit.Toffoli(2, 4, 1)
			qubits, all := op.InvolvedQubits()

			Expect(all).To(BeFalse())
			Expect(qubits).To(Equal([]int{2, 4, 1}))
		})

		It("should report the measured qubit", func() {
			op := circuit.MeasureQubit(3, "ro", 0)
			qubits, all := op.InvolvedQubits()

			Expect(all).To(BeFalse())
			Expect(qubits).To(Equal([]int{3}))
		})

		It("should report all qubits for an unmapped repeated measurement", func() {
			op := circuit.PragmaRepeatedMeasurement("ro", 10, nil)
			_, all := op.InvolvedQubits()

			Expect(all).To(BeTrue())
		})

		It("should report mapping keys for a mapped repeated measurement", func() {
			op := circuit.PragmaRepeatedMeasurement("ro", 10, map[int]int{2: 0, 5: 1})
			qubits, all := op.InvolvedQubits()

			Expect(all).To(BeFalse())
			Expect(qubits).To(ConsistOf(2, 5))
		})

		It("should report all qubits for state initialization", func() {
			op := circuit.PragmaSetStateVector([]complex128{1, 0})
			_, all := op.InvolvedQubits()

			Expect(all).To(BeTrue())
		})

		It("should union sub-circuit qubits for control flow", func() {
			sub := circuit.New().Add(circuit.Hadamard(1)).Add(circuit.CNOT(1, 4))
			op := circuit.PragmaConditional("ro", 0, sub)
			qubits, all := op.InvolvedQubits()

			Expect(all).To(BeFalse())
			Expect(qubits).To(ConsistOf(1, 4))
		})

		It("should propagate an all-qubit sub-circuit operation", func() {
			sub := circuit.New().Add(circuit.PragmaSetStateVector([]complex128{1, 0}))
			op := circuit.PragmaLoop(2, sub)
			_, all := op.InvolvedQubits()

			Expect(all).To(BeTrue())
		})

		It("should report nothing for classical bookkeeping", func() {
			op := circuit.PragmaSetNumberOfMeasurements("ro", 100)
			qubits, all := op.InvolvedQubits()

			Expect(all).To(BeFalse())
			Expect(qubits).To(BeEmpty())
		})
	})

	Describe("Matrix", func() {
		It("should build the Hadamard matrix", func() {
			op := circuit.Hadamard(0)
			m := op.Matrix()

			s := 1 / math.Sqrt2
			Expect(m).To(HaveLen(4))
			Expect(real(m[0])).To(BeNumerically("~", s, 1e-12))
			Expect(real(m[3])).To(BeNumerically("~", -s, 1e-12))
		})

		It("should build the CNOT permutation", func() {
			op := circuit.CNOT(0, 1)
			m := op.Matrix()

			// Index = control + 2*target
			Expect(m[0*4+0]).To(Equal(complex128(1)))
			Expect(m[1*4+3]).To(Equal(complex128(1)))
			Expect(m[2*4+2]).To(Equal(complex128(1)))
			Expect(m[3*4+1]).To(Equal(complex128(1)))
			Expect(m[1*4+1]).To(Equal(complex128(0)))
		})

		It("should build RotateX at pi as -i X", func() {
			op := circuit.RotateX(0, math.Pi)
			m := op.Matrix()

			Expect(real(m[0])).To(BeNumerically("~", 0, 1e-12))
			Expect(imag(m[1])).To(BeNumerically("~", -1, 1e-12))
			Expect(imag(m[2])).To(BeNumerically("~", -1, 1e-12))
		})

		It("should build a diagonal MultiQubitZZ matrix", func() {
			op := circuit.MultiQubitZZ([]int{0, 1}, math.Pi/2)
			m := op.Matrix()

			Expect(m).To(HaveLen(16))
			// Even parity picks up exp(-i theta/2), odd parity the conjugate.
			Expect(imag(m[0*4+0])).To(BeNumerically("~", -math.Sin(math.Pi/4), 1e-12))
			Expect(imag(m[1*4+1])).To(BeNumerically("~", math.Sin(math.Pi/4), 1e-12))
			Expect(m[0*4+1]).To(Equal(complex128(0)))
		})

		It("should invert SqrtPauliX with InvSqrtPauliX", func() {
			a := circuit.SqrtPauliX(0).Matrix()
			b := circuit.InvSqrtPauliX(0).Matrix()

			// b * a should be the identity.
			for r := 0; r < 2; r++ {
				for c := 0; c < 2; c++ {
					var sum complex128
					for k := 0; k < 2; k++ {
						sum += b[r*2+k] * a[k*2+c]
					}
					want := complex128(0)
					if r == c {
						want = 1
					}
					Expect(real(sum)).To(BeNumerically("~", real(want), 1e-12))
					Expect(imag(sum)).To(BeNumerically("~", imag(want), 1e-12))
				}
			}
		})

		It("should return nil for non-gate operations", func() {
			op := circuit.MeasureQubit(0, "ro", 0)
			Expect(op.Matrix()).To(BeNil())
		})
	})
})
