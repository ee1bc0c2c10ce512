// Package circuit provides the quantum-circuit operation definitions.
//
// A circuit is an ordered sequence of typed operations: classical
// register definitions, unitary gates, measurements, noise pragmas,
// control-flow pragmas and state-access pragmas. Circuits are built
// with the operation constructors and consumed read-only by the
// execution layer. For example:
//
//	c := circuit.New()
//	c.Add(circuit.DefinitionBit("ro", 2, true))
//	c.Add(circuit.Hadamard(0))
//	c.Add(circuit.CNOT(0, 1))
//	c.Add(circuit.PragmaRepeatedMeasurement("ro", 100, nil))
package circuit

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"
)

// Circuit is an ordered sequence of operations. The zero value is an
// empty circuit ready for use.
type Circuit struct {
	ops []Operation
}

// New creates an empty circuit.
func New() *Circuit {
	return &Circuit{}
}

// Add appends an operation and returns the circuit for chaining.
func (c *Circuit) Add(op Operation) *Circuit {
	c.ops = append(c.ops, op)
	return c
}

// Extend appends all operations of another circuit.
func (c *Circuit) Extend(other *Circuit) *Circuit {
	if other != nil {
		c.ops = append(c.ops, other.ops...)
	}
	return c
}

// Operations returns the operation sequence. Callers must not modify
// the returned slice.
func (c *Circuit) Operations() []Operation {
	return c.ops
}

// Len returns the number of operations in the circuit.
func (c *Circuit) Len() int {
	return len(c.ops)
}

// Concat builds a fresh circuit holding the operations of a followed by
// the operations of b. Either argument may be nil.
func Concat(a, b *Circuit) *Circuit {
	out := New()
	out.Extend(a)
	out.Extend(b)
	return out
}

// Fingerprint returns a stable hash of the circuit contents. Two
// circuits with the same operation sequence produce the same value.
func (c *Circuit) Fingerprint() uint64 {
	h := fnv.New64a()
	c.hashInto(h)
	return h.Sum64()
}

type hashSink interface {
	Write(p []byte) (int, error)
}

func (c *Circuit) hashInto(h hashSink) {
	var buf [8]byte
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	writeInt := func(v int) { writeUint(uint64(int64(v))) }
	writeFloat := func(v float64) { writeUint(math.Float64bits(v)) }
	writeString := func(s string) {
		writeInt(len(s))
		h.Write([]byte(s))
	}

	writeInt(len(c.ops))
	for i := range c.ops {
		op := &c.ops[i]
		writeUint(uint64(op.Kind))
		writeInt(len(op.Qubits))
		for _, q := range op.Qubits {
			writeInt(q)
		}
		writeInt(op.Qubit)
		writeFloat(op.Theta)
		writeString(op.Name)
		writeInt(op.Length)
		if op.IsOutput {
			writeInt(1)
		} else {
			writeInt(0)
		}
		writeInt(op.Index)
		if op.BitValue {
			writeInt(1)
		} else {
			writeInt(0)
		}
		writeInt(op.Count)
		hashIntMap(op.Mapping, writeInt)
		writeFloat(op.GateTime)
		writeFloat(op.Rate)
		writeFloat(op.DampingRate)
		writeFloat(op.DepolarisingRate)
		writeFloat(op.DephasingRate)
		writeInt(len(op.Values))
		for _, v := range op.Values {
			writeFloat(real(v))
			writeFloat(imag(v))
		}
		writeFloat(op.Repetitions)
		hashIntMap(op.PauliProduct, writeInt)
		writeInt(len(op.Payload))
		h.Write(op.Payload)
		if op.SubCircuit != nil {
			writeInt(1)
			op.SubCircuit.hashInto(h)
		} else {
			writeInt(0)
		}
	}
}

func hashIntMap(m map[int]int, writeInt func(int)) {
	writeInt(len(m))
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		writeInt(k)
		writeInt(m[k])
	}
}
