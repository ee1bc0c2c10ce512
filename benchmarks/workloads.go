// Package benchmarks provides workload infrastructure for measuring the
// circuit engine's sampling throughput and statistical accuracy.
package benchmarks

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/qrunlab/qrun/circuit"
	"github.com/qrunlab/qrun/exec"
)

// GetWorkloads returns the standard set of workloads. Each workload
// targets a specific execution path of the engine.
func GetWorkloads() []Workload {
	return []Workload{
		bellSampling(),
		ghzChain(),
		replayedMarginal(),
		conditionalFeedback(),
		dampedPopulation(),
		pauliExpectation(),
		stateSnapshot(),
	}
}

// GetCoreWorkloads returns a minimal set of 3 workloads for quick
// validation: one per engine path (sampled, replayed, density matrix).
func GetCoreWorkloads() []Workload {
	return []Workload{
		bellSampling(),
		conditionalFeedback(),
		dampedPopulation(),
	}
}

// 1. Bell Sampling - measures final-state sampling throughput
func bellSampling() Workload {
	return Workload{
		Name:        "bell_sampling",
		Description: "1000 sampled rows of a Bell pair - exercises the sampled-replace shortcut",
		Build: func() *circuit.Circuit {
			c := circuit.New()
			c.Add(circuit.DefinitionBit("ro", 2, true))
			c.Add(circuit.Hadamard(0))
			c.Add(circuit.CNOT(0, 1))
			c.Add(circuit.PragmaRepeatedMeasurement("ro", 1000, nil))
			return c
		},
		Check: func(out *exec.Registers) error {
			rows := out.Bit["ro"]
			if len(rows) != 1000 {
				return fmt.Errorf("expected 1000 rows, got %d", len(rows))
			}
			// A Bell pair never produces anticorrelated bits.
			for i, row := range rows {
				if len(row) != 2 {
					return fmt.Errorf("row %d: expected 2 bits, got %d", i, len(row))
				}
				if row[0] != row[1] {
					return fmt.Errorf("row %d: bell pair bits disagree", i)
				}
			}
			return nil
		},
	}
}

// 2. GHZ Chain - wider entangled state, bigger amplitude vector
func ghzChain() Workload {
	return Workload{
		Name:        "ghz_chain",
		Description: "500 sampled rows of a 5-qubit GHZ chain - scales the state vector to 32 amplitudes",
		Build: func() *circuit.Circuit {
			c := circuit.New()
			c.Add(circuit.DefinitionBit("ro", 5, true))
			c.Add(circuit.Hadamard(0))
			for q := 0; q < 4; q++ {
				c.Add(circuit.CNOT(q, q+1))
			}
			c.Add(circuit.PragmaRepeatedMeasurement("ro", 500, nil))
			return c
		},
		Check: func(out *exec.Registers) error {
			rows := out.Bit["ro"]
			if len(rows) != 500 {
				return fmt.Errorf("expected 500 rows, got %d", len(rows))
			}
			// GHZ rows are all-zeros or all-ones.
			for i, row := range rows {
				for b := 1; b < len(row); b++ {
					if row[b] != row[0] {
						return fmt.Errorf("row %d: GHZ bits disagree", i)
					}
				}
			}
			return nil
		},
	}
}

// 3. Replayed Marginal - re-executes the collapse for every row
func replayedMarginal() Workload {
	return Workload{
		Name:        "replayed_marginal",
		Description: "200 full replays of a superposition collapse - measures per-shot re-execution cost",
		Build: func() *circuit.Circuit {
			c := circuit.New()
			c.Add(circuit.DefinitionBit("ro", 1, true))
			c.Add(circuit.DefinitionBit("echo", 1, true))
			c.Add(circuit.Hadamard(0))
			c.Add(circuit.MeasureQubit(0, "ro", 0))
			c.Add(circuit.MeasureQubit(0, "echo", 0))
			c.Add(circuit.PragmaSetNumberOfMeasurements("ro", 200))
			return c
		},
		Check: func(out *exec.Registers) error {
			if got := len(out.Bit["ro"]); got != 200 {
				return fmt.Errorf("expected 200 ro rows, got %d", got)
			}
			if got := len(out.Bit["echo"]); got != 200 {
				return fmt.Errorf("expected 200 echo rows, got %d", got)
			}
			// Remeasuring a collapsed qubit repeats the outcome.
			for i := range out.Bit["ro"] {
				if out.Bit["ro"][i][0] != out.Bit["echo"][i][0] {
					return fmt.Errorf("row %d: post-collapse remeasure disagrees", i)
				}
			}
			return nil
		},
	}
}

// 4. Conditional Feedback - classical control in the replay loop
func conditionalFeedback() Workload {
	return Workload{
		Name:        "conditional_feedback",
		Description: "200 replays of measure-then-correct feedback - exercises conditional dispatch",
		Build: func() *circuit.Circuit {
			correction := circuit.New()
			correction.Add(circuit.PauliX(1))

			c := circuit.New()
			c.Add(circuit.DefinitionBit("sync", 1, true))
			c.Add(circuit.DefinitionBit("ro", 1, true))
			c.Add(circuit.PauliX(0))
			c.Add(circuit.MeasureQubit(0, "sync", 0))
			c.Add(circuit.PragmaConditional("sync", 0, correction))
			c.Add(circuit.MeasureQubit(1, "ro", 0))
			c.Add(circuit.PragmaSetNumberOfMeasurements("ro", 200))
			return c
		},
		Check: func(out *exec.Registers) error {
			rows := out.Bit["ro"]
			if len(rows) != 200 {
				return fmt.Errorf("expected 200 rows, got %d", len(rows))
			}
			// The sync bit is always set, so the correction always fires.
			for i, row := range rows {
				if !row[0] {
					return fmt.Errorf("row %d: correction did not fire", i)
				}
			}
			return nil
		},
	}
}

// 5. Damped Population - density-matrix evolution under amplitude damping
func dampedPopulation() Workload {
	return Workload{
		Name:        "damped_population",
		Description: "500 sampled rows of a half-decayed qubit - exercises the density-matrix engine",
		Build: func() *circuit.Circuit {
			c := circuit.New()
			c.Add(circuit.DefinitionBit("ro", 1, true))
			c.Add(circuit.PauliX(0))
			// gate time 1 at rate ln 2 leaves half the excited population
			c.Add(circuit.PragmaDamping(0, 1.0, math.Ln2))
			c.Add(circuit.MeasureQubit(0, "ro", 0))
			c.Add(circuit.PragmaSetNumberOfMeasurements("ro", 500))
			return c
		},
		Check: func(out *exec.Registers) error {
			rows := out.Bit["ro"]
			if len(rows) != 500 {
				return fmt.Errorf("expected 500 rows, got %d", len(rows))
			}
			return nil
		},
	}
}

// 6. Pauli Expectation - state access without sampling
func pauliExpectation() Workload {
	return Workload{
		Name:        "pauli_expectation",
		Description: "Z expectation on a flipped qubit - exercises the state-access clone path",
		Build: func() *circuit.Circuit {
			c := circuit.New()
			c.Add(circuit.DefinitionFloat("exp", 1, true))
			c.Add(circuit.PauliX(0))
			c.Add(circuit.PragmaGetPauliProduct(map[int]int{0: 3}, "exp", nil))
			return c
		},
		Check: func(out *exec.Registers) error {
			rows := out.Float["exp"]
			if len(rows) != 1 {
				return fmt.Errorf("expected 1 row, got %d", len(rows))
			}
			if math.Abs(rows[0][0]+1) > 1e-9 {
				return fmt.Errorf("expected <Z> = -1, got %g", rows[0][0])
			}
			return nil
		},
	}
}

// 7. State Snapshot - full amplitude extraction
func stateSnapshot() Workload {
	return Workload{
		Name:        "state_snapshot",
		Description: "State vector of a 3-qubit GHZ state - exercises amplitude extraction",
		Build: func() *circuit.Circuit {
			c := circuit.New()
			c.Add(circuit.DefinitionComplex("psi", 8, true))
			c.Add(circuit.Hadamard(0))
			c.Add(circuit.CNOT(0, 1))
			c.Add(circuit.CNOT(1, 2))
			c.Add(circuit.PragmaGetStateVector("psi", nil))
			return c
		},
		Check: func(out *exec.Registers) error {
			rows := out.Complex["psi"]
			if len(rows) != 1 {
				return fmt.Errorf("expected 1 row, got %d", len(rows))
			}
			if len(rows[0]) != 8 {
				return fmt.Errorf("expected 8 amplitudes, got %d", len(rows[0]))
			}
			norm := 0.0
			for _, amp := range rows[0] {
				norm += real(amp)*real(amp) + imag(amp)*imag(amp)
			}
			if math.Abs(norm-1) > 1e-9 {
				return fmt.Errorf("state norm %g, expected 1", norm)
			}
			invSqrt2 := 1 / math.Sqrt2
			if math.Abs(cmplx.Abs(rows[0][0])-invSqrt2) > 1e-9 {
				return fmt.Errorf("|amp(000)| = %g, expected %g", cmplx.Abs(rows[0][0]), invSqrt2)
			}
			if math.Abs(cmplx.Abs(rows[0][7])-invSqrt2) > 1e-9 {
				return fmt.Errorf("|amp(111)| = %g, expected %g", cmplx.Abs(rows[0][7]), invSqrt2)
			}
			return nil
		},
	}
}
