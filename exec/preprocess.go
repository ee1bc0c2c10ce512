package exec

import (
	"github.com/pkg/errors"

	"github.com/qrunlab/qrun/circuit"
)

// Layout captures what a circuit needs before simulation starts: the
// engine size and the declared length of every output register.
type Layout struct {
	// Qubits is the number of qubits the engine must hold, at least 1.
	Qubits int

	// Declared lengths of output registers, by kind and name.
	BitRegisters     map[string]int
	FloatRegisters   map[string]int
	ComplexRegisters map[string]int
}

// Preprocess scans a circuit and computes its Layout. Register
// references are validated here so dispatch never runs into an
// undeclared readout or an out-of-range index.
func Preprocess(c *circuit.Circuit) (*Layout, error) {
	layout := &Layout{
		BitRegisters:     map[string]int{},
		FloatRegisters:   map[string]int{},
		ComplexRegisters: map[string]int{},
	}

	ops := c.Operations()
	for i := range ops {
		op := &ops[i]
		if !op.IsOutput {
			continue
		}
		switch op.Kind {
		case circuit.OpDefinitionBit:
			layout.BitRegisters[op.Name] = op.Length
		case circuit.OpDefinitionFloat:
			layout.FloatRegisters[op.Name] = op.Length
		case circuit.OpDefinitionComplex:
			layout.ComplexRegisters[op.Name] = op.Length
		}
	}

	maxUsed := -1
	note := func(q int) {
		if q > maxUsed {
			maxUsed = q
		}
	}

	for i := range ops {
		op := &ops[i]
		qubits, _ := op.InvolvedQubits()
		for _, q := range qubits {
			note(q)
		}

		switch op.Kind {
		case circuit.OpMeasureQubit:
			length, ok := layout.BitRegisters[op.Name]
			if !ok {
				return nil, errors.Wrapf(ErrRegisterNotFound,
					"bit register %q written by a measurement of qubit %d", op.Name, op.Qubit)
			}
			if op.Index >= length {
				return nil, errors.Wrapf(ErrIndexOutOfRange,
					"readout index %d in bit register %q of length %d", op.Index, op.Name, length)
			}
		case circuit.OpPragmaRepeatedMeasurement:
			length, ok := layout.BitRegisters[op.Name]
			if !ok {
				return nil, errors.Wrapf(ErrRegisterNotFound,
					"bit register %q written by a repeated measurement", op.Name)
			}
			if op.Mapping == nil {
				// Without a mapping the pragma reads one qubit per
				// register slot.
				note(length - 1)
				break
			}
			for q, index := range op.Mapping {
				if index >= length {
					return nil, errors.Wrapf(ErrIndexOutOfRange,
						"readout index %d for qubit %d in bit register %q of length %d",
						index, q, op.Name, length)
				}
			}
		case circuit.OpPragmaGetStateVector:
			length, ok := layout.ComplexRegisters[op.Name]
			if !ok {
				return nil, errors.Wrapf(ErrRegisterNotFound,
					"complex register %q read by a state-vector extraction", op.Name)
			}
			note(log2Ceil(length) - 1)
		case circuit.OpPragmaGetDensityMatrix:
			length, ok := layout.ComplexRegisters[op.Name]
			if !ok {
				return nil, errors.Wrapf(ErrRegisterNotFound,
					"complex register %q read by a density-matrix extraction", op.Name)
			}
			note(log4Ceil(length) - 1)
		case circuit.OpPragmaGetPauliProduct:
			if _, ok := layout.FloatRegisters[op.Name]; !ok {
				return nil, errors.Wrapf(ErrRegisterNotFound,
					"float register %q written by a pauli product pragma", op.Name)
			}
			for q := range op.PauliProduct {
				note(q)
			}
		case circuit.OpPragmaGetOccupationProbability:
			if _, ok := layout.FloatRegisters[op.Name]; !ok {
				return nil, errors.Wrapf(ErrRegisterNotFound,
					"float register %q written by an occupation pragma", op.Name)
			}
		}
	}

	layout.Qubits = maxUsed + 1
	if layout.Qubits < 1 {
		layout.Qubits = 1
	}
	return layout, nil
}

// log2Ceil returns the smallest n with 2^n >= x.
func log2Ceil(x int) int {
	n := 0
	for 1<<n < x {
		n++
	}
	return n
}

// log4Ceil returns the smallest n with 4^n >= x.
func log4Ceil(x int) int {
	n := 0
	for 1<<(2*n) < x {
		n++
	}
	return n
}
