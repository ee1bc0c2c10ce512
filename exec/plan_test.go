package exec_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/qrunlab/qrun/circuit"
	"github.com/qrunlab/qrun/exec"
)

func mustPlan(c *circuit.Circuit, repetitions int) *exec.Plan {
	layout, err := exec.Preprocess(c)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	plan, err := exec.BuildPlan(c, layout, repetitions)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return plan
}

func kinds(c *circuit.Circuit) []circuit.OpKind {
	ops := c.Operations()
	out := make([]circuit.OpKind, len(ops))
	for i := range ops {
		out[i] = ops[i].Kind
	}
	return out
}

var _ = Describe("BuildPlan", func() {
	It("should run a plain circuit once without a repeat mode", func() {
		c := circuit.New().
			Add(circuit.DefinitionBit("ro", 1, true)).
			Add(circuit.Hadamard(0)).
			Add(circuit.MeasureQubit(0, "ro", 0))

		plan := mustPlan(c, 25)

		Expect(plan.Mode).To(Equal(exec.RepeatNone))
		Expect(plan.Shots).To(Equal(1))
		Expect(plan.BaseRepetitions).To(Equal(1))
		Expect(plan.Circuit).To(BeIdenticalTo(c))
		Expect(plan.DensityMatrix).To(BeFalse())
	})

	It("should apply the configured repetitions only for stochastic noise", func() {
		c := circuit.New().
			Add(circuit.DefinitionBit("ro", 1, true)).
			Add(circuit.PragmaRandomNoise(0, 0.01, 0.1, 0.2)).
			Add(circuit.MeasureQubit(0, "ro", 0))

		plan := mustPlan(c, 25)

		Expect(plan.Mode).To(Equal(exec.RepeatNone))
		Expect(plan.Shots).To(Equal(25))
		Expect(plan.BaseRepetitions).To(Equal(25))
	})

	Describe("density matrix selection", func() {
		It("should switch on noise channels", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 1, true)).
				Add(circuit.PragmaDamping(0, 0.1, 0.5))

			Expect(mustPlan(c, 1).DensityMatrix).To(BeTrue())
		})

		It("should look into control-flow sub-circuits", func() {
			sub := circuit.New().Add(circuit.PragmaDephasing(0, 0.1, 0.5))
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 1, true)).
				Add(circuit.PragmaLoop(2, sub))

			Expect(mustPlan(c, 1).DensityMatrix).To(BeTrue())
		})

		It("should ignore evaluation circuits of state-access pragmas", func() {
			eval := circuit.New().Add(circuit.PragmaDamping(0, 0.1, 0.5))
			c := circuit.New().
				Add(circuit.DefinitionComplex("psi", 2, true)).
				Add(circuit.PragmaGetStateVector("psi", eval))

			Expect(mustPlan(c, 1).DensityMatrix).To(BeFalse())
		})
	})

	It("should reject a second repeat pragma of either kind", func() {
		c := circuit.New().
			Add(circuit.DefinitionBit("ro", 2, true)).
			Add(circuit.MeasureQubit(0, "ro", 0)).
			Add(circuit.PragmaSetNumberOfMeasurements("ro", 10)).
			Add(circuit.PragmaRepeatedMeasurement("ro", 10, nil))

		layout, err := exec.Preprocess(c)
		Expect(err).NotTo(HaveOccurred())
		_, err = exec.BuildPlan(c, layout, 1)

		Expect(err).To(MatchError(exec.ErrDuplicateRepeatedMeasurement))
	})

	Describe("with a repeated-measurement pragma", func() {
		It("should sample from the final state when nothing follows", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 3, true)).
				Add(circuit.Hadamard(0)).
				Add(circuit.CNOT(0, 1)).
				Add(circuit.PragmaRepeatedMeasurement("ro", 100, nil))

			plan := mustPlan(c, 1)

			Expect(plan.Mode).To(Equal(exec.RepeatSampledReplace))
			Expect(plan.Shots).To(Equal(1))
			Expect(plan.ReplaceQubit).To(Equal(-1))
			Expect(plan.Circuit).To(BeIdenticalTo(c))
		})

		It("should keep sampling when later gates avoid the measured group", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 2, true)).
				Add(circuit.Hadamard(0)).
				Add(circuit.PragmaRepeatedMeasurement("ro", 10, map[int]int{0: 0, 1: 1})).
				Add(circuit.Hadamard(2))

			Expect(mustPlan(c, 1).Mode).To(Equal(exec.RepeatSampledReplace))
		})

		It("should replay fully when a later gate hits a measured qubit", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 2, true)).
				Add(circuit.PragmaRepeatedMeasurement("ro", 10, map[int]int{0: 0, 1: 1})).
				Add(circuit.PauliX(1))

			plan := mustPlan(c, 1)

			Expect(plan.Mode).To(Equal(exec.RepeatFullReplay))
			Expect(plan.Shots).To(Equal(10))
		})

		It("should replay fully when any single measurement coexists", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 2, true)).
				Add(circuit.DefinitionBit("extra", 1, true)).
				Add(circuit.MeasureQubit(0, "extra", 0)).
				Add(circuit.PragmaRepeatedMeasurement("ro", 5, nil))

			Expect(mustPlan(c, 1).Mode).To(Equal(exec.RepeatFullReplay))
		})

		It("should treat an unmapped pragma as covering every qubit", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 2, true)).
				Add(circuit.PragmaRepeatedMeasurement("ro", 5, nil)).
				Add(circuit.Hadamard(1))

			Expect(mustPlan(c, 1).Mode).To(Equal(exec.RepeatFullReplay))
		})

		It("should expand a replayed pragma into in-range measurements", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 2, true)).
				Add(circuit.Hadamard(2)).
				Add(circuit.PragmaRepeatedMeasurement("ro", 4, nil)).
				Add(circuit.PauliX(0))

			plan := mustPlan(c, 1)
			Expect(plan.Mode).To(Equal(exec.RepeatFullReplay))

			measured := 0
			for _, op := range plan.Circuit.Operations() {
				if op.Kind == circuit.OpMeasureQubit {
					measured++
					Expect(op.Index).To(BeNumerically("<", 2))
				}
				Expect(op.Kind).NotTo(Equal(circuit.OpPragmaRepeatedMeasurement))
			}
			// Three engine qubits, but qubit 2 has no slot in the
			// two-entry readout.
			Expect(measured).To(Equal(2))
		})

		It("should multiply replay shots by the stochastic base", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 1, true)).
				Add(circuit.PragmaRandomNoise(0, 0.01, 0.1, 0.2)).
				Add(circuit.PragmaRepeatedMeasurement("ro", 10, nil)).
				Add(circuit.PauliX(0))

			plan := mustPlan(c, 3)

			Expect(plan.Mode).To(Equal(exec.RepeatFullReplay))
			Expect(plan.Shots).To(Equal(30))
		})
	})

	Describe("with a set-number-of-measurements pragma", func() {
		It("should collapse matching measurements into one sampled pragma", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 3, true)).
				Add(circuit.Hadamard(0)).
				Add(circuit.MeasureQubit(0, "ro", 0)).
				Add(circuit.MeasureQubit(2, "ro", 1)).
				Add(circuit.PragmaSetNumberOfMeasurements("ro", 50))

			plan := mustPlan(c, 1)

			Expect(plan.Mode).To(Equal(exec.RepeatSampledReplace))
			Expect(plan.Shots).To(Equal(1))
			Expect(plan.ReplaceQubit).To(Equal(0))
			Expect(kinds(plan.Circuit)).To(Equal([]circuit.OpKind{
				circuit.OpDefinitionBit,
				circuit.OpHadamard,
				circuit.OpPragmaRepeatedMeasurement,
			}))

			rewritten := plan.Circuit.Operations()[2]
			Expect(rewritten.Name).To(Equal("ro"))
			Expect(rewritten.Count).To(Equal(50))
			Expect(rewritten.Mapping).To(Equal(map[int]int{0: 0, 2: 1}))
		})

		It("should fail when no measurement names the readout", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 1, true)).
				Add(circuit.Hadamard(0)).
				Add(circuit.PragmaSetNumberOfMeasurements("ro", 50))

			layout, err := exec.Preprocess(c)
			Expect(err).NotTo(HaveOccurred())
			_, err = exec.BuildPlan(c, layout, 1)

			Expect(err).To(MatchError(exec.ErrUnmatchedSetMeasurements))
		})

		It("should replay fully when a qubit is measured twice", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 2, true)).
				Add(circuit.MeasureQubit(0, "ro", 0)).
				Add(circuit.MeasureQubit(0, "ro", 1)).
				Add(circuit.PragmaSetNumberOfMeasurements("ro", 10))

			plan := mustPlan(c, 1)

			Expect(plan.Mode).To(Equal(exec.RepeatFullReplay))
			Expect(plan.Shots).To(Equal(10))
		})

		It("should replay fully when another readout is measured", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 1, true)).
				Add(circuit.DefinitionBit("other", 1, true)).
				Add(circuit.MeasureQubit(0, "ro", 0)).
				Add(circuit.MeasureQubit(1, "other", 0)).
				Add(circuit.PragmaSetNumberOfMeasurements("ro", 10))

			Expect(mustPlan(c, 1).Mode).To(Equal(exec.RepeatFullReplay))
		})

		It("should replay fully when a measured qubit is touched afterwards", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 1, true)).
				Add(circuit.MeasureQubit(0, "ro", 0)).
				Add(circuit.Hadamard(0)).
				Add(circuit.PragmaSetNumberOfMeasurements("ro", 10))

			Expect(mustPlan(c, 1).Mode).To(Equal(exec.RepeatFullReplay))
		})

		It("should keep sampling when later gates only touch fresh qubits", func() {
			c := circuit.New().
				Add(circuit.DefinitionBit("ro", 1, true)).
				Add(circuit.MeasureQubit(0, "ro", 0)).
				Add(circuit.Hadamard(1)).
				Add(circuit.PragmaSetNumberOfMeasurements("ro", 10))

			Expect(mustPlan(c, 1).Mode).To(Equal(exec.RepeatSampledReplace))
		})
	})
})
