package exec

import (
	"github.com/pkg/errors"

	"github.com/qrunlab/qrun/circuit"
)

// RepeatMode selects how repeated sampling is realised.
type RepeatMode int

const (
	// RepeatNone runs the circuit's measurements as written.
	RepeatNone RepeatMode = iota

	// RepeatSampledReplace runs the gate part of the circuit once per
	// shot and draws all measurement rows from the final distribution.
	RepeatSampledReplace

	// RepeatFullReplay re-executes the whole circuit for every row.
	RepeatFullReplay
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatSampledReplace:
		return "SampledReplace"
	case RepeatFullReplay:
		return "FullReplay"
	default:
		return "None"
	}
}

// Plan fixes every execution decision for one circuit before the first
// shot runs. Plans are consumed read-only by the aggregator, so one
// plan can serve any number of runs of the same circuit.
type Plan struct {
	// Layout is the preprocessed register layout the plan was built
	// for.
	Layout *Layout

	// Circuit is the executable form. Under SampledReplace built from
	// a set-number-of-measurements pragma, the matched measurements
	// collapse into one repeated-measurement pragma. Under FullReplay,
	// a repeated-measurement pragma expands into per-qubit
	// measurements. Otherwise it is the input circuit.
	Circuit *circuit.Circuit

	// Mode is the chosen sampling strategy.
	Mode RepeatMode

	// Shots is the number of dispatch passes over Circuit.
	Shots int

	// ReplaceQubit is the qubit whose measurement the sampled rewrite
	// replaced, or -1 when no rewrite happened.
	ReplaceQubit int

	// DensityMatrix selects the engine representation.
	DensityMatrix bool

	// BaseRepetitions is the stochastic averaging factor applied on
	// top of a repeat pragma's count.
	BaseRepetitions int
}

// BuildPlan runs the repeated-measurement analysis for one circuit.
// repetitions is the configured repetition count; it takes effect only
// when the circuit carries stochastic noise pragmas that need
// averaging over shots.
func BuildPlan(c *circuit.Circuit, layout *Layout, repetitions int) (*Plan, error) {
	if repetitions < 1 {
		repetitions = 1
	}
	base := 1
	if containsKind(c, circuit.OpKind.IsStochastic) {
		base = repetitions
	}

	plan := &Plan{
		Layout:          layout,
		Circuit:         c,
		Mode:            RepeatNone,
		Shots:           base,
		ReplaceQubit:    -1,
		DensityMatrix:   containsKind(c, circuit.OpKind.RequiresDensityMatrix),
		BaseRepetitions: base,
	}

	ops := c.Operations()
	pragmaIndex := -1
	for i := range ops {
		kind := ops[i].Kind
		if kind != circuit.OpPragmaRepeatedMeasurement && kind != circuit.OpPragmaSetNumberOfMeasurements {
			continue
		}
		if pragmaIndex >= 0 {
			return nil, errors.Wrapf(ErrDuplicateRepeatedMeasurement,
				"operations %d and %d", pragmaIndex, i)
		}
		pragmaIndex = i
	}
	if pragmaIndex < 0 {
		return plan, nil
	}
	if ops[pragmaIndex].Kind == circuit.OpPragmaRepeatedMeasurement {
		return planRepeatedMeasurement(plan, ops, pragmaIndex)
	}
	return planSetMeasurements(plan, ops, pragmaIndex)
}

// containsKind walks the circuit and the sub-circuits that execute on
// the run engine. Evaluation circuits of state-access pragmas run on
// clones and are not walked.
func containsKind(c *circuit.Circuit, match func(circuit.OpKind) bool) bool {
	ops := c.Operations()
	for i := range ops {
		op := &ops[i]
		if match(op.Kind) {
			return true
		}
		switch op.Kind {
		case circuit.OpPragmaConditional, circuit.OpPragmaLoop:
			if op.SubCircuit != nil && containsKind(op.SubCircuit, match) {
				return true
			}
		}
	}
	return false
}

// touchesGroup reports whether an operation acts on any qubit of the
// measured group. groupAll marks a group covering the whole register.
func touchesGroup(op *circuit.Operation, group map[int]bool, groupAll bool) bool {
	qubits, all := op.InvolvedQubits()
	if all {
		return groupAll || len(group) > 0
	}
	if groupAll {
		return len(qubits) > 0
	}
	for _, q := range qubits {
		if group[q] {
			return true
		}
	}
	return false
}

// planRepeatedMeasurement decides the mode for a circuit carrying a
// user-written repeated-measurement pragma at index p. Sampling from
// the final state is sound only while nothing after the pragma acts on
// a measured qubit and no single collapse coexists with it.
func planRepeatedMeasurement(plan *Plan, ops []circuit.Operation, p int) (*Plan, error) {
	pragma := &ops[p]

	group := map[int]bool{}
	groupAll := pragma.Mapping == nil
	for q := range pragma.Mapping {
		group[q] = true
	}

	sampled := true
	for i := range ops {
		if i == p {
			continue
		}
		op := &ops[i]
		if op.Kind == circuit.OpMeasureQubit {
			sampled = false
			break
		}
		if i < p {
			continue
		}
		if touchesGroup(op, group, groupAll) {
			sampled = false
			break
		}
	}

	if sampled {
		plan.Mode = RepeatSampledReplace
		return plan, nil
	}

	plan.Mode = RepeatFullReplay
	plan.Shots = pragma.Count * plan.BaseRepetitions
	plan.Circuit = expandRepeatedMeasurement(ops, p, plan.Layout.Qubits, plan.Layout.BitRegisters[pragma.Name])
	return plan, nil
}

// expandRepeatedMeasurement rewrites the pragma at index p into one
// MeasureQubit per engine qubit. Qubits whose target index falls
// outside the readout register are dropped.
func expandRepeatedMeasurement(ops []circuit.Operation, p, qubits, length int) *circuit.Circuit {
	rewritten := circuit.New()
	for i := range ops {
		if i != p {
			rewritten.Add(ops[i])
			continue
		}
		pragma := &ops[i]
		for q := 0; q < qubits; q++ {
			index := q
			if mapped, ok := pragma.Mapping[q]; ok {
				index = mapped
			}
			if index >= length {
				continue
			}
			rewritten.Add(circuit.MeasureQubit(q, pragma.Name, index))
		}
	}
	return rewritten
}

// planSetMeasurements decides the mode for a circuit carrying a
// set-number-of-measurements pragma at index p. Measurements naming
// the pragma's readout form the sampled group; each group qubit must
// stay untouched after its measurement for the shortcut to be sound.
func planSetMeasurements(plan *Plan, ops []circuit.Operation, p int) (*Plan, error) {
	pragma := &ops[p]

	group := map[int]bool{}
	var matched []int
	sampled := true

scan:
	for i := range ops {
		if i == p {
			continue
		}
		op := &ops[i]
		if op.Kind == circuit.OpMeasureQubit {
			if op.Name != pragma.Name || group[op.Qubit] {
				sampled = false
				break scan
			}
			group[op.Qubit] = true
			matched = append(matched, i)
			continue
		}
		if touchesGroup(op, group, false) {
			sampled = false
			break scan
		}
	}

	if !sampled {
		plan.Mode = RepeatFullReplay
		plan.Shots = pragma.Count * plan.BaseRepetitions
		return plan, nil
	}
	if len(matched) == 0 {
		return nil, errors.Wrapf(ErrUnmatchedSetMeasurements, "readout %q", pragma.Name)
	}

	mapping := map[int]int{}
	for _, i := range matched {
		mapping[ops[i].Qubit] = ops[i].Index
	}
	consumed := map[int]bool{p: true}
	for _, i := range matched {
		consumed[i] = true
	}

	rewritten := circuit.New()
	for i := range ops {
		if i == matched[0] {
			rewritten.Add(circuit.PragmaRepeatedMeasurement(pragma.Name, pragma.Count, mapping))
			continue
		}
		if consumed[i] {
			continue
		}
		rewritten.Add(ops[i])
	}

	plan.Mode = RepeatSampledReplace
	plan.Circuit = rewritten
	plan.ReplaceQubit = ops[matched[0]].Qubit
	return plan, nil
}
