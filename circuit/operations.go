package circuit

// OpKind identifies an operation variant.
type OpKind uint16

// Operation kinds.
const (
	OpUnknown OpKind = iota

	// Classical register definitions
	OpDefinitionBit
	OpDefinitionFloat
	OpDefinitionComplex
	OpDefinitionUsize
	OpInputBit
	OpInputSymbolic

	// Single-qubit gates
	OpHadamard
	OpPauliX
	OpPauliY
	OpPauliZ
	OpSGate
	OpTGate
	OpSqrtPauliX
	OpInvSqrtPauliX
	OpPhaseShiftState0
	OpPhaseShiftState1
	OpRotateX
	OpRotateY
	OpRotateZ

	// Two-qubit gates
	OpCNOT
	OpControlledPauliZ
	OpControlledPhaseShift
	OpSWAP
	OpISwap

	// Three-qubit gates
	OpToffoli
	OpControlledControlledPauliZ

	// Multi-qubit gates
	OpMultiQubitZZ

	// Measurements
	OpMeasureQubit
	OpPragmaRepeatedMeasurement
	OpPragmaSetNumberOfMeasurements

	// Noise pragmas
	OpPragmaDamping
	OpPragmaDephasing
	OpPragmaDepolarising
	OpPragmaGeneralNoise
	OpPragmaRandomNoise

	// State initialization pragmas
	OpPragmaSetStateVector
	OpPragmaSetDensityMatrix

	// Control flow pragmas
	OpPragmaConditional
	OpPragmaLoop
	OpPragmaActiveReset

	// State access pragmas
	OpPragmaGetStateVector
	OpPragmaGetDensityMatrix
	OpPragmaGetPauliProduct
	OpPragmaGetOccupationProbability

	// Device pragma
	OpPragmaChangeDevice

	// Backend-agnostic bookkeeping pragmas (accepted no-ops)
	OpPragmaBoostNoise
	OpPragmaStopParallelBlock
	OpPragmaGlobalPhase
	OpPragmaRepeatGate
	OpPragmaStartDecompositionBlock
	OpPragmaStopDecompositionBlock
	OpPragmaOverrotation
)

var opKindNames = [...]string{
	OpUnknown:                        "Unknown",
	OpDefinitionBit:                  "DefinitionBit",
	OpDefinitionFloat:                "DefinitionFloat",
	OpDefinitionComplex:              "DefinitionComplex",
	OpDefinitionUsize:                "DefinitionUsize",
	OpInputBit:                       "InputBit",
	OpInputSymbolic:                  "InputSymbolic",
	OpHadamard:                       "Hadamard",
	OpPauliX:                         "PauliX",
	OpPauliY:                         "PauliY",
	OpPauliZ:                         "PauliZ",
	OpSGate:                          "SGate",
	OpTGate:                          "TGate",
	OpSqrtPauliX:                     "SqrtPauliX",
	OpInvSqrtPauliX:                  "InvSqrtPauliX",
	OpPhaseShiftState0:               "PhaseShiftState0",
	OpPhaseShiftState1:               "PhaseShiftState1",
	OpRotateX:                        "RotateX",
	OpRotateY:                        "RotateY",
	OpRotateZ:                        "RotateZ",
	OpCNOT:                           "CNOT",
	OpControlledPauliZ:               "ControlledPauliZ",
	OpControlledPhaseShift:           "ControlledPhaseShift",
	OpSWAP:                           "SWAP",
	OpISwap:                          "ISwap",
	OpToffoli:                        "Toffoli",
	OpControlledControlledPauliZ:     "ControlledControlledPauliZ",
	OpMultiQubitZZ:                   "MultiQubitZZ",
	OpMeasureQubit:                   "MeasureQubit",
	OpPragmaRepeatedMeasurement:      "PragmaRepeatedMeasurement",
	OpPragmaSetNumberOfMeasurements:  "PragmaSetNumberOfMeasurements",
	OpPragmaDamping:                  "PragmaDamping",
	OpPragmaDephasing:                "PragmaDephasing",
	OpPragmaDepolarising:             "PragmaDepolarising",
	OpPragmaGeneralNoise:             "PragmaGeneralNoise",
	OpPragmaRandomNoise:              "PragmaRandomNoise",
	OpPragmaSetStateVector:           "PragmaSetStateVector",
	OpPragmaSetDensityMatrix:         "PragmaSetDensityMatrix",
	OpPragmaConditional:              "PragmaConditional",
	OpPragmaLoop:                     "PragmaLoop",
	OpPragmaActiveReset:              "PragmaActiveReset",
	OpPragmaGetStateVector:           "PragmaGetStateVector",
	OpPragmaGetDensityMatrix:         "PragmaGetDensityMatrix",
	OpPragmaGetPauliProduct:          "PragmaGetPauliProduct",
	OpPragmaGetOccupationProbability: "PragmaGetOccupationProbability",
	OpPragmaChangeDevice:             "PragmaChangeDevice",
	OpPragmaBoostNoise:               "PragmaBoostNoise",
	OpPragmaStopParallelBlock:        "PragmaStopParallelBlock",
	OpPragmaGlobalPhase:              "PragmaGlobalPhase",
	OpPragmaRepeatGate:               "PragmaRepeatGate",
	OpPragmaStartDecompositionBlock:  "PragmaStartDecompositionBlock",
	OpPragmaStopDecompositionBlock:   "PragmaStopDecompositionBlock",
	OpPragmaOverrotation:             "PragmaOverrotation",
}

func (k OpKind) String() string {
	if int(k) < len(opKindNames) && opKindNames[k] != "" {
		return opKindNames[k]
	}
	return "Unknown"
}

// IsGate reports whether the kind is a unitary gate operation.
func (k OpKind) IsGate() bool {
	return k >= OpHadamard && k <= OpMultiQubitZZ
}

// IsDefinition reports whether the kind declares a classical register.
func (k OpKind) IsDefinition() bool {
	switch k {
	case OpDefinitionBit, OpDefinitionFloat, OpDefinitionComplex, OpDefinitionUsize:
		return true
	}
	return false
}

// IsNoise reports whether the kind is a noise pragma.
func (k OpKind) IsNoise() bool {
	switch k {
	case OpPragmaDamping, OpPragmaDephasing, OpPragmaDepolarising,
		OpPragmaGeneralNoise, OpPragmaRandomNoise:
		return true
	}
	return false
}

// RequiresDensityMatrix reports whether the kind can only act on a
// density-matrix engine, forcing density-matrix mode for the run.
func (k OpKind) RequiresDensityMatrix() bool {
	switch k {
	case OpPragmaDamping, OpPragmaDephasing, OpPragmaDepolarising,
		OpPragmaGeneralNoise, OpPragmaSetDensityMatrix:
		return true
	}
	return false
}

// IsStochastic reports whether the kind requests stochastic
// unravelling, multiplying the run's shot count by the configured
// repetitions.
func (k OpKind) IsStochastic() bool {
	return k == OpPragmaRandomNoise || k == OpPragmaOverrotation
}

// IsAcceptedNoOp reports whether the kind is in the backend-agnostic
// allow-list of operations that dispatch trivially.
func (k OpKind) IsAcceptedNoOp() bool {
	switch k {
	case OpPragmaSetNumberOfMeasurements, OpPragmaBoostNoise,
		OpPragmaStopParallelBlock, OpPragmaGlobalPhase, OpDefinitionUsize,
		OpInputSymbolic, OpPragmaRepeatGate, OpPragmaStartDecompositionBlock,
		OpPragmaStopDecompositionBlock, OpPragmaOverrotation:
		return true
	}
	return false
}

// Operation represents one step of a quantum circuit. Exactly which
// fields are meaningful depends on Kind; the constructors below set
// the right ones.
type Operation struct {
	Kind OpKind // Operation code

	// Gate operands, ordered. Qubits[0] is the least significant bit
	// of the unitary's row/column index. Conventions: [target],
	// [control, target], [control0, control1, target].
	Qubits []int

	// Target qubit for measurements, noise and reset pragmas
	Qubit int

	// Rotation angle or phase in radians
	Theta float64

	// Classical register operands
	Name     string      // Register or readout name
	Length   int         // Declared register length (definitions)
	IsOutput bool        // Definition output flag
	Index    int         // Bit index (MeasureQubit, InputBit, PragmaConditional)
	BitValue bool        // Value written by InputBit
	Count    int         // Number of measurements (repeated measurement pragmas)
	Mapping  map[int]int // Optional qubit to readout-index map

	// Noise parameters
	GateTime         float64
	Rate             float64
	DampingRate      float64
	DepolarisingRate float64
	DephasingRate    float64

	// State payload for the set pragmas
	Values []complex128

	// Control flow
	SubCircuit  *Circuit
	Repetitions float64 // Loop count, floored and clamped at zero

	// Pauli product mapping: qubit to 0..3 (I, X, Y, Z)
	PauliProduct map[int]int

	// Device change payload
	Payload []byte
}

// InvolvedQubits returns the qubit indices the operation touches. The
// second return value is true when the operation acts on every qubit
// of the register (the list is empty in that case).
func (op *Operation) InvolvedQubits() ([]int, bool) {
	switch {
	case op.Kind.IsGate():
		return op.Qubits, false
	}
	switch op.Kind {
	case OpMeasureQubit, OpPragmaActiveReset,
		OpPragmaDamping, OpPragmaDephasing, OpPragmaDepolarising,
		OpPragmaGeneralNoise, OpPragmaRandomNoise:
		return []int{op.Qubit}, false
	case OpPragmaRepeatedMeasurement:
		if op.Mapping == nil {
			return nil, true
		}
		qubits := make([]int, 0, len(op.Mapping))
		for q := range op.Mapping {
			qubits = append(qubits, q)
		}
		return qubits, false
	case OpPragmaSetStateVector, OpPragmaSetDensityMatrix:
		return nil, true
	case OpPragmaStopParallelBlock, OpPragmaStartDecompositionBlock,
		OpPragmaStopDecompositionBlock, OpPragmaOverrotation:
		return op.Qubits, false
	case OpPragmaConditional, OpPragmaLoop,
		OpPragmaGetStateVector, OpPragmaGetDensityMatrix,
		OpPragmaGetPauliProduct, OpPragmaGetOccupationProbability:
		return subCircuitQubits(op.SubCircuit)
	}
	return nil, false
}

func subCircuitQubits(c *Circuit) ([]int, bool) {
	if c == nil {
		return nil, false
	}
	seen := map[int]struct{}{}
	for i := range c.ops {
		qubits, all := c.ops[i].InvolvedQubits()
		if all {
			return nil, true
		}
		for _, q := range qubits {
			seen[q] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for q := range seen {
		out = append(out, q)
	}
	return out, false
}

// Definitions

// DefinitionBit declares a classical bit register.
func DefinitionBit(name string, length int, isOutput bool) Operation {
	return Operation{Kind: OpDefinitionBit, Name: name, Length: length, IsOutput: isOutput}
}

// DefinitionFloat declares a classical float register.
func DefinitionFloat(name string, length int, isOutput bool) Operation {
	return Operation{Kind: OpDefinitionFloat, Name: name, Length: length, IsOutput: isOutput}
}

// DefinitionComplex declares a classical complex register.
func DefinitionComplex(name string, length int, isOutput bool) Operation {
	return Operation{Kind: OpDefinitionComplex, Name: name, Length: length, IsOutput: isOutput}
}

// DefinitionUsize declares an integer register. Accepted and ignored.
func DefinitionUsize(name string, length int, isOutput bool) Operation {
	return Operation{Kind: OpDefinitionUsize, Name: name, Length: length, IsOutput: isOutput}
}

// InputBit writes a constant bit into an existing bit register.
func InputBit(name string, index int, value bool) Operation {
	return Operation{Kind: OpInputBit, Name: name, Index: index, BitValue: value}
}

// InputSymbolic declares a symbolic input. Accepted and ignored.
func InputSymbolic(name string, value float64) Operation {
	return Operation{Kind: OpInputSymbolic, Name: name, Theta: value}
}

// Single-qubit gates

// Hadamard applies the Hadamard gate.
func Hadamard(qubit int) Operation {
	return Operation{Kind: OpHadamard, Qubits: []int{qubit}}
}

// PauliX applies the Pauli X gate.
func PauliX(qubit int) Operation {
	return Operation{Kind: OpPauliX, Qubits: []int{qubit}}
}

// PauliY applies the Pauli Y gate.
func PauliY(qubit int) Operation {
	return Operation{Kind: OpPauliY, Qubits: []int{qubit}}
}

// PauliZ applies the Pauli Z gate.
func PauliZ(qubit int) Operation {
	return Operation{Kind: OpPauliZ, Qubits: []int{qubit}}
}

// SGate applies the phase gate S = diag(1, i).
func SGate(qubit int) Operation {
	return Operation{Kind: OpSGate, Qubits: []int{qubit}}
}

// TGate applies the T gate diag(1, exp(i pi/4)).
func TGate(qubit int) Operation {
	return Operation{Kind: OpTGate, Qubits: []int{qubit}}
}

// SqrtPauliX applies the square root of the Pauli X gate.
func SqrtPauliX(qubit int) Operation {
	return Operation{Kind: OpSqrtPauliX, Qubits: []int{qubit}}
}

// InvSqrtPauliX applies the inverse square root of the Pauli X gate.
func InvSqrtPauliX(qubit int) Operation {
	return Operation{Kind: OpInvSqrtPauliX, Qubits: []int{qubit}}
}

// PhaseShiftState0 shifts the phase of the |0> component.
func PhaseShiftState0(qubit int, theta float64) Operation {
	return Operation{Kind: OpPhaseShiftState0, Qubits: []int{qubit}, Theta: theta}
}

// PhaseShiftState1 shifts the phase of the |1> component.
func PhaseShiftState1(qubit int, theta float64) Operation {
	return Operation{Kind: OpPhaseShiftState1, Qubits: []int{qubit}, Theta: theta}
}

// RotateX rotates around the X axis by theta.
func RotateX(qubit int, theta float64) Operation {
	return Operation{Kind: OpRotateX, Qubits: []int{qubit}, Theta: theta}
}

// RotateY rotates around the Y axis by theta.
func RotateY(qubit int, theta float64) Operation {
	return Operation{Kind: OpRotateY, Qubits: []int{qubit}, Theta: theta}
}

// RotateZ rotates around the Z axis by theta.
func RotateZ(qubit int, theta float64) Operation {
	return Operation{Kind: OpRotateZ, Qubits: []int{qubit}, Theta: theta}
}

// Two-qubit gates

// CNOT applies the controlled NOT gate.
func CNOT(control, target int) Operation {
	return Operation{Kind: OpCNOT, Qubits: []int{control, target}}
}

// ControlledPauliZ applies the controlled Z gate.
func ControlledPauliZ(control, target int) Operation {
	return Operation{Kind: OpControlledPauliZ, Qubits: []int{control, target}}
}

// ControlledPhaseShift applies a controlled phase shift by theta.
func ControlledPhaseShift(control, target int, theta float64) Operation {
	return Operation{Kind: OpControlledPhaseShift, Qubits: []int{control, target}, Theta: theta}
}

// SWAP exchanges the states of two qubits.
func SWAP(a, b int) Operation {
	return Operation{Kind: OpSWAP, Qubits: []int{a, b}}
}

// ISwap applies the ISwap gate.
func ISwap(a, b int) Operation {
	return Operation{Kind: OpISwap, Qubits: []int{a, b}}
}

// Three-qubit gates

// Toffoli applies the doubly controlled NOT gate.
func Toffoli(control0, control1, target int) Operation {
	return Operation{Kind: OpToffoli, Qubits: []int{control0, control1, target}}
}

// ControlledControlledPauliZ applies the doubly controlled Z gate.
func ControlledControlledPauliZ(control0, control1, target int) Operation {
	return Operation{Kind: OpControlledControlledPauliZ, Qubits: []int{control0, control1, target}}
}

// Multi-qubit gates

// MultiQubitZZ applies exp(-i theta/2 Z⊗...⊗Z) on the given qubits.
func MultiQubitZZ(qubits []int, theta float64) Operation {
	return Operation{Kind: OpMultiQubitZZ, Qubits: qubits, Theta: theta}
}

// Measurements

// MeasureQubit collapses one qubit and writes the outcome to
// readout[readoutIndex].
func MeasureQubit(qubit int, readout string, readoutIndex int) Operation {
	return Operation{Kind: OpMeasureQubit, Qubit: qubit, Name: readout, Index: readoutIndex}
}

// PragmaRepeatedMeasurement samples count measurement rows from the
// final state. The optional mapping routes qubit k to readout index
// mapping[k]; absent entries default to k itself.
func PragmaRepeatedMeasurement(readout string, count int, mapping map[int]int) Operation {
	return Operation{Kind: OpPragmaRepeatedMeasurement, Name: readout, Count: count, Mapping: mapping}
}

// PragmaSetNumberOfMeasurements requests count repetitions of the
// circuit's measurements into the named readout.
func PragmaSetNumberOfMeasurements(readout string, count int) Operation {
	return Operation{Kind: OpPragmaSetNumberOfMeasurements, Name: readout, Count: count}
}

// Noise pragmas

// PragmaDamping applies amplitude damping with probability
// 1-exp(-gateTime*rate).
func PragmaDamping(qubit int, gateTime, rate float64) Operation {
	return Operation{Kind: OpPragmaDamping, Qubit: qubit, GateTime: gateTime, Rate: rate}
}

// PragmaDephasing applies phase damping with probability
// 1-exp(-gateTime*rate).
func PragmaDephasing(qubit int, gateTime, rate float64) Operation {
	return Operation{Kind: OpPragmaDephasing, Qubit: qubit, GateTime: gateTime, Rate: rate}
}

// PragmaDepolarising applies depolarising noise with probability
// 1-exp(-gateTime*rate).
func PragmaDepolarising(qubit int, gateTime, rate float64) Operation {
	return Operation{Kind: OpPragmaDepolarising, Qubit: qubit, GateTime: gateTime, Rate: rate}
}

// PragmaGeneralNoise applies a combined damping, depolarising and
// dephasing channel. Density-matrix engines only.
func PragmaGeneralNoise(qubit int, gateTime, damping, depolarising, dephasing float64) Operation {
	return Operation{
		Kind:             OpPragmaGeneralNoise,
		Qubit:            qubit,
		GateTime:         gateTime,
		DampingRate:      damping,
		DepolarisingRate: depolarising,
		DephasingRate:    dephasing,
	}
}

// PragmaRandomNoise stochastically unravels depolarising and dephasing
// noise by applying a randomly drawn Pauli each shot.
func PragmaRandomNoise(qubit int, gateTime, depolarising, dephasing float64) Operation {
	return Operation{
		Kind:             OpPragmaRandomNoise,
		Qubit:            qubit,
		GateTime:         gateTime,
		DepolarisingRate: depolarising,
		DephasingRate:    dephasing,
	}
}

// State initialization pragmas

// PragmaSetStateVector replaces the engine state with the given
// amplitudes. On a density-matrix engine the pure-state projector is
// installed.
func PragmaSetStateVector(values []complex128) Operation {
	return Operation{Kind: OpPragmaSetStateVector, Values: values}
}

// PragmaSetDensityMatrix replaces the engine state with the given
// row-major density matrix. Density-matrix engines only.
func PragmaSetDensityMatrix(values []complex128) Operation {
	return Operation{Kind: OpPragmaSetDensityMatrix, Values: values}
}

// Control flow pragmas

// PragmaConditional runs the sub-circuit when bit index of the named
// bit register is set.
func PragmaConditional(register string, index int, sub *Circuit) Operation {
	return Operation{Kind: OpPragmaConditional, Name: register, Index: index, SubCircuit: sub}
}

// PragmaLoop runs the sub-circuit floor(max(repetitions, 0)) times.
func PragmaLoop(repetitions float64, sub *Circuit) Operation {
	return Operation{Kind: OpPragmaLoop, Repetitions: repetitions, SubCircuit: sub}
}

// PragmaActiveReset measures a qubit and flips it back to |0> when the
// outcome is 1.
func PragmaActiveReset(qubit int) Operation {
	return Operation{Kind: OpPragmaActiveReset, Qubit: qubit}
}

// State access pragmas

// PragmaGetStateVector extracts the state vector into the named complex
// register, optionally after running an evaluation circuit on a clone.
func PragmaGetStateVector(readout string, sub *Circuit) Operation {
	return Operation{Kind: OpPragmaGetStateVector, Name: readout, SubCircuit: sub}
}

// PragmaGetDensityMatrix extracts the row-major density matrix into the
// named complex register, optionally after running an evaluation
// circuit on a clone.
func PragmaGetDensityMatrix(readout string, sub *Circuit) Operation {
	return Operation{Kind: OpPragmaGetDensityMatrix, Name: readout, SubCircuit: sub}
}

// PragmaGetPauliProduct writes the expectation value of a Pauli product
// into the named float register. Pauli codes: 0=I, 1=X, 2=Y, 3=Z.
func PragmaGetPauliProduct(paulis map[int]int, readout string, sub *Circuit) Operation {
	return Operation{Kind: OpPragmaGetPauliProduct, PauliProduct: paulis, Name: readout, SubCircuit: sub}
}

// PragmaGetOccupationProbability writes the basis-state occupation
// probabilities into the named float register.
func PragmaGetOccupationProbability(readout string, sub *Circuit) Operation {
	return Operation{Kind: OpPragmaGetOccupationProbability, Name: readout, SubCircuit: sub}
}

// Device pragma

// PragmaChangeDevice forwards a named reconfiguration request with an
// opaque payload to the device, when one is attached.
func PragmaChangeDevice(name string, payload []byte) Operation {
	return Operation{Kind: OpPragmaChangeDevice, Name: name, Payload: payload}
}

// Bookkeeping pragmas

// PragmaBoostNoise scales noise during simulation. Accepted and ignored.
func PragmaBoostNoise(factor float64) Operation {
	return Operation{Kind: OpPragmaBoostNoise, Theta: factor}
}

// PragmaStopParallelBlock ends a block of parallel operations. Accepted
// and ignored.
func PragmaStopParallelBlock(qubits []int, executionTime float64) Operation {
	return Operation{Kind: OpPragmaStopParallelBlock, Qubits: qubits, Theta: executionTime}
}

// PragmaGlobalPhase records a global phase. Accepted and ignored.
func PragmaGlobalPhase(phase float64) Operation {
	return Operation{Kind: OpPragmaGlobalPhase, Theta: phase}
}

// PragmaRepeatGate marks gate repetition for error mitigation. Accepted
// and ignored.
func PragmaRepeatGate(coefficient int) Operation {
	return Operation{Kind: OpPragmaRepeatGate, Count: coefficient}
}

// PragmaStartDecompositionBlock starts a decomposition block. Accepted
// and ignored.
func PragmaStartDecompositionBlock(qubits []int) Operation {
	return Operation{Kind: OpPragmaStartDecompositionBlock, Qubits: qubits}
}

// PragmaStopDecompositionBlock ends a decomposition block. Accepted and
// ignored.
func PragmaStopDecompositionBlock(qubits []int) Operation {
	return Operation{Kind: OpPragmaStopDecompositionBlock, Qubits: qubits}
}

// PragmaOverrotation requests stochastic gate overrotation. Accepted as
// a no-op at dispatch; its presence multiplies the shot count.
func PragmaOverrotation(gate string, qubits []int, amplitude, variance float64) Operation {
	return Operation{Kind: OpPragmaOverrotation, Name: gate, Qubits: qubits, Theta: amplitude, Rate: variance}
}
