package qureg_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/qrunlab/qrun/circuit"
	"github.com/qrunlab/qrun/qureg"
)

func trace(dm []complex128, dim int) float64 {
	sum := 0.0
	for i := 0; i < dim; i++ {
		sum += real(dm[i*dim+i])
	}
	return sum
}

var _ = Describe("Noise channels", func() {
	It("should convert a gate-time and rate into a probability", func() {
		Expect(qureg.DampingProbability(0, 0.5)).To(BeZero())
		Expect(qureg.DampingProbability(1, 0)).To(BeZero())
		Expect(qureg.DampingProbability(0.1, 0.5)).To(BeNumerically("~", 1-math.Exp(-0.05), 1e-12))
		Expect(qureg.DampingProbability(1e6, 1)).To(BeNumerically("~", 1, 1e-12))

		Expect(qureg.DephasingProbability(1, 0)).To(BeZero())
		Expect(qureg.DephasingProbability(0.1, 0.5)).To(BeNumerically("~", (1-math.Exp(-0.1))/2, 1e-12))
		Expect(qureg.DephasingProbability(1e6, 1)).To(BeNumerically("~", 0.5, 1e-12))

		Expect(qureg.DepolarisingProbability(1, 0)).To(BeZero())
		Expect(qureg.DepolarisingProbability(0.1, 0.5)).To(BeNumerically("~", 0.75*(1-math.Exp(-0.05)), 1e-12))
		Expect(qureg.DepolarisingProbability(1e6, 1)).To(BeNumerically("~", 0.75, 1e-12))
	})

	It("should refuse to run on a state-vector register", func() {
		r := qureg.NewRegister(1)
		err := r.ApplyKraus(0, qureg.DampingKraus(0.1))

		Expect(err).To(HaveOccurred())
	})

	Describe("damping", func() {
		It("should decay |1> towards |0>", func() {
			r := qureg.NewRegister(1, qureg.AsDensityMatrix())
			Expect(r.ApplyUnitary([]int{0}, circuit.PauliX(0).Matrix())).To(Succeed())

			p := 0.25
			Expect(r.ApplyKraus(0, qureg.DampingKraus(p))).To(Succeed())

			probs := r.Probabilities()
			Expect(probs[0]).To(BeNumerically("~", p, 1e-12))
			Expect(probs[1]).To(BeNumerically("~", 1-p, 1e-12))
		})

		It("should leave |0> untouched", func() {
			r := qureg.NewRegister(1, qureg.AsDensityMatrix())
			Expect(r.ApplyKraus(0, qureg.DampingKraus(0.5))).To(Succeed())

			Expect(r.Probabilities()[0]).To(BeNumerically("~", 1, 1e-12))
		})
	})

	Describe("dephasing", func() {
		It("should shrink the off-diagonal coherences", func() {
			r := qureg.NewRegister(1, qureg.AsDensityMatrix())
			Expect(r.ApplyUnitary([]int{0}, circuit.Hadamard(0).Matrix())).To(Succeed())

			p := 0.3
			Expect(r.ApplyKraus(0, qureg.DephasingKraus(p))).To(Succeed())

			dm := r.DensityMatrix()
			Expect(real(dm[0])).To(BeNumerically("~", 0.5, 1e-12))
			Expect(real(dm[3])).To(BeNumerically("~", 0.5, 1e-12))
			Expect(real(dm[1])).To(BeNumerically("~", 0.5*(1-2*p), 1e-12))
		})
	})

	Describe("depolarising", func() {
		It("should mix |1> towards the maximally mixed state", func() {
			r := qureg.NewRegister(1, qureg.AsDensityMatrix())
			Expect(r.ApplyUnitary([]int{0}, circuit.PauliX(0).Matrix())).To(Succeed())

			p := 0.3
			Expect(r.ApplyKraus(0, qureg.DepolarisingKraus(p))).To(Succeed())

			probs := r.Probabilities()
			Expect(probs[0]).To(BeNumerically("~", 2*p/3, 1e-12))
			Expect(probs[1]).To(BeNumerically("~", 1-2*p/3, 1e-12))
		})
	})

	It("should preserve the trace", func() {
		r := qureg.NewRegister(2, qureg.AsDensityMatrix())
		Expect(r.ApplyUnitary([]int{0}, circuit.Hadamard(0).Matrix())).To(Succeed())
		Expect(r.ApplyUnitary([]int{0, 1}, circuit.CNOT(0, 1).Matrix())).To(Succeed())

		Expect(r.ApplyKraus(0, qureg.DampingKraus(0.2))).To(Succeed())
		Expect(r.ApplyKraus(1, qureg.DephasingKraus(0.4))).To(Succeed())
		Expect(r.ApplyKraus(0, qureg.DepolarisingKraus(0.1))).To(Succeed())

		Expect(trace(r.DensityMatrix(), 4)).To(BeNumerically("~", 1, 1e-12))
	})

	It("should act on the addressed qubit only", func() {
		r := qureg.NewRegister(2, qureg.AsDensityMatrix())
		Expect(r.ApplyUnitary([]int{1}, circuit.PauliX(1).Matrix())).To(Succeed())

		Expect(r.ApplyKraus(0, qureg.DampingKraus(0.9))).To(Succeed())

		probs := r.Probabilities()
		Expect(probs[2]).To(BeNumerically("~", 1, 1e-12))
	})
})
