package circuit_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/qrunlab/qrun/circuit"
)

func TestCircuit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Circuit Suite")
}

var _ = Describe("Circuit", func() {
	It("should start empty", func() {
		c := circuit.New()
		Expect(c.Len()).To(Equal(0))
		Expect(c.Operations()).To(BeEmpty())
	})

	It("should append operations in order", func() {
		c := circuit.New()
		c.Add(circuit.Hadamard(0)).Add(circuit.CNOT(0, 1))

		Expect(c.Len()).To(Equal(2))
		Expect(c.Operations()[0].Kind).To(Equal(circuit.OpHadamard))
		Expect(c.Operations()[1].Kind).To(Equal(circuit.OpCNOT))
	})

	It("should extend with another circuit", func() {
		a := circuit.New().Add(circuit.Hadamard(0))
		b := circuit.New().Add(circuit.PauliX(1))

		a.Extend(b)

		Expect(a.Len()).To(Equal(2))
		Expect(a.Operations()[1].Kind).To(Equal(circuit.OpPauliX))
	})

	It("should concatenate circuits without mutating the inputs", func() {
		a := circuit.New().Add(circuit.Hadamard(0))
		b := circuit.New().Add(circuit.PauliX(1))

		joined := circuit.Concat(a, b)

		Expect(joined.Len()).To(Equal(2))
		Expect(a.Len()).To(Equal(1))
		Expect(b.Len()).To(Equal(1))
	})

	It("should concatenate a nil prefix", func() {
		b := circuit.New().Add(circuit.PauliX(1))

		joined := circuit.Concat(nil, b)

		Expect(joined.Len()).To(Equal(1))
	})

	Describe("Fingerprint", func() {
		It("should be stable across calls", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 2, true)).
				Add(circuit.Hadamard(0)).
				Add(circuit.PragmaRepeatedMeasurement("ro", 10, map[int]int{0: 1, 1: 0}))

			Expect(c.Fingerprint()).To(Equal(c.Fingerprint()))
		})

		It("should match an identically built circuit", func() {
			build := func() *circuit.Circuit {
				return circuit.New().
					Add(circuit.DefinitionBit("ro", 2, true)).
					Add(circuit.RotateX(0, 0.25)).
					Add(circuit.MeasureQubit(0, "ro", 0))
			}

			Expect(build().Fingerprint()).To(Equal(build().Fingerprint()))
		})

		It("should differ when an angle differs", func() {
			a := circuit.New().Add(circuit.RotateX(0, 0.25))
			b := circuit.New().Add(circuit.RotateX(0, 0.5))

			Expect(a.Fingerprint()).NotTo(Equal(b.Fingerprint()))
		})

		It("should differ when operation order differs", func() {
			a := circuit.New().Add(circuit.Hadamard(0)).Add(circuit.PauliX(1))
			b := circuit.New().Add(circuit.PauliX(1)).Add(circuit.Hadamard(0))

			Expect(a.Fingerprint()).NotTo(Equal(b.Fingerprint()))
		})

		It("should descend into sub-circuits", func() {
			inner1 := circuit.New().Add(circuit.PauliX(0))
			inner2 := circuit.New().Add(circuit.PauliY(0))
			a := circuit.New().Add(circuit.PragmaLoop(2, inner1))
			b := circuit.New().Add(circuit.PragmaLoop(2, inner2))

			Expect(a.Fingerprint()).NotTo(Equal(b.Fingerprint()))
		})
	})
})
