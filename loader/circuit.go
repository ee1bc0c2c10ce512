// Package loader reads circuit files and run configurations for the
// command line tools.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/qrunlab/qrun/circuit"
)

// opSpec is the JSON shape of one operation. Which fields apply
// depends on the operation name; unused fields are ignored.
type opSpec struct {
	Op      string         `json:"op"`
	Name    string         `json:"name,omitempty"`
	Length  int            `json:"length,omitempty"`
	Output  bool           `json:"output,omitempty"`
	Qubit   *int           `json:"qubit,omitempty"`
	Qubits  []int          `json:"qubits,omitempty"`
	Theta   float64        `json:"theta,omitempty"`
	Index   int            `json:"index,omitempty"`
	Value   bool           `json:"value,omitempty"`
	Count   int            `json:"count,omitempty"`
	Mapping map[string]int `json:"mapping,omitempty"`

	GateTime         float64 `json:"gate_time,omitempty"`
	Rate             float64 `json:"rate,omitempty"`
	DampingRate      float64 `json:"damping_rate,omitempty"`
	DepolarisingRate float64 `json:"depolarising_rate,omitempty"`
	DephasingRate    float64 `json:"dephasing_rate,omitempty"`

	// Complex values as [real, imaginary] pairs.
	Values [][2]float64 `json:"values,omitempty"`

	Repetitions float64         `json:"repetitions,omitempty"`
	Circuit     []opSpec        `json:"circuit,omitempty"`
	Paulis      map[string]int  `json:"paulis,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

type circuitFile struct {
	Operations []opSpec `json:"operations"`
}

// kindByName indexes every operation kind by its canonical name.
var kindByName = func() map[string]circuit.OpKind {
	index := make(map[string]circuit.OpKind)
	for k := circuit.OpDefinitionBit; k <= circuit.OpPragmaOverrotation; k++ {
		index[k.String()] = k
	}
	return index
}()

// LoadCircuit reads a JSON circuit file.
func LoadCircuit(path string) (*circuit.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read circuit file: %w", err)
	}
	return ParseCircuit(data)
}

// ParseCircuit builds a circuit from JSON data.
func ParseCircuit(data []byte) (*circuit.Circuit, error) {
	var file circuitFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse circuit file: %w", err)
	}
	return buildCircuit(file.Operations)
}

func buildCircuit(specs []opSpec) (*circuit.Circuit, error) {
	c := circuit.New()
	for i, spec := range specs {
		op, err := spec.operation()
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		c.Add(op)
	}
	return c, nil
}

func (s opSpec) operation() (circuit.Operation, error) {
	kind, ok := kindByName[s.Op]
	if !ok {
		return circuit.Operation{}, fmt.Errorf("unknown operation %q", s.Op)
	}
	if requiresName(kind) && s.Name == "" {
		return circuit.Operation{}, fmt.Errorf("%s needs a register name", s.Op)
	}

	op := circuit.Operation{
		Kind:             kind,
		Theta:            s.Theta,
		Name:             s.Name,
		Length:           s.Length,
		IsOutput:         s.Output,
		Index:            s.Index,
		BitValue:         s.Value,
		Count:            s.Count,
		GateTime:         s.GateTime,
		Rate:             s.Rate,
		DampingRate:      s.DampingRate,
		DepolarisingRate: s.DepolarisingRate,
		DephasingRate:    s.DephasingRate,
		Repetitions:      s.Repetitions,
		Payload:          s.Payload,
	}

	qubits := s.Qubits
	if qubits == nil && s.Qubit != nil {
		qubits = []int{*s.Qubit}
	}

	if kind.IsGate() {
		if err := checkGateArity(kind, qubits); err != nil {
			return circuit.Operation{}, err
		}
		op.Qubits = qubits
	}

	switch kind {
	case circuit.OpMeasureQubit, circuit.OpPragmaActiveReset,
		circuit.OpPragmaDamping, circuit.OpPragmaDephasing,
		circuit.OpPragmaDepolarising, circuit.OpPragmaGeneralNoise,
		circuit.OpPragmaRandomNoise:
		if s.Qubit == nil {
			return circuit.Operation{}, fmt.Errorf("%s needs a qubit", s.Op)
		}
		op.Qubit = *s.Qubit
	case circuit.OpPragmaStopParallelBlock, circuit.OpPragmaOverrotation,
		circuit.OpPragmaStartDecompositionBlock, circuit.OpPragmaStopDecompositionBlock:
		op.Qubits = qubits
	}

	if len(s.Mapping) > 0 {
		mapping, err := intKeys(s.Mapping)
		if err != nil {
			return circuit.Operation{}, fmt.Errorf("bad mapping: %w", err)
		}
		op.Mapping = mapping
	}
	if len(s.Paulis) > 0 {
		paulis, err := intKeys(s.Paulis)
		if err != nil {
			return circuit.Operation{}, fmt.Errorf("bad pauli product: %w", err)
		}
		op.PauliProduct = paulis
	}
	if len(s.Values) > 0 {
		op.Values = make([]complex128, len(s.Values))
		for i, v := range s.Values {
			op.Values[i] = complex(v[0], v[1])
		}
	}
	if s.Circuit != nil {
		sub, err := buildCircuit(s.Circuit)
		if err != nil {
			return circuit.Operation{}, fmt.Errorf("sub-circuit of %s: %w", s.Op, err)
		}
		op.SubCircuit = sub
	}

	return op, nil
}

func checkGateArity(kind circuit.OpKind, qubits []int) error {
	switch {
	case kind >= circuit.OpHadamard && kind <= circuit.OpRotateZ:
		if len(qubits) != 1 {
			return fmt.Errorf("%s needs exactly one qubit, got %d", kind, len(qubits))
		}
	case kind >= circuit.OpCNOT && kind <= circuit.OpISwap:
		if len(qubits) != 2 {
			return fmt.Errorf("%s needs exactly two qubits, got %d", kind, len(qubits))
		}
	case kind == circuit.OpToffoli || kind == circuit.OpControlledControlledPauliZ:
		if len(qubits) != 3 {
			return fmt.Errorf("%s needs exactly three qubits, got %d", kind, len(qubits))
		}
	default:
		if len(qubits) == 0 {
			return fmt.Errorf("%s needs at least one qubit", kind)
		}
	}
	return nil
}

func requiresName(kind circuit.OpKind) bool {
	if kind.IsDefinition() {
		return true
	}
	switch kind {
	case circuit.OpInputBit, circuit.OpMeasureQubit,
		circuit.OpPragmaRepeatedMeasurement, circuit.OpPragmaSetNumberOfMeasurements,
		circuit.OpPragmaConditional, circuit.OpPragmaGetStateVector,
		circuit.OpPragmaGetDensityMatrix, circuit.OpPragmaGetPauliProduct,
		circuit.OpPragmaGetOccupationProbability, circuit.OpPragmaChangeDevice:
		return true
	}
	return false
}

func intKeys(in map[string]int) (map[int]int, error) {
	out := make(map[int]int, len(in))
	for key, value := range in {
		k, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("key %q is not a qubit index", key)
		}
		out[k] = value
	}
	return out, nil
}
