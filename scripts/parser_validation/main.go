// Validate parser throughput - measures allocation behaviour of the circuit parser
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/qrunlab/qrun/loader"
)

func main() {
	// A representative circuit: definitions, gates, noise and sampling
	source := []byte(`{
		"operations": [
			{"op": "DefinitionBit", "name": "ro", "length": 2, "output": true},
			{"op": "Hadamard", "qubit": 0},
			{"op": "CNOT", "qubits": [0, 1]},
			{"op": "RotateZ", "qubit": 1, "theta": 0.25},
			{"op": "PragmaDamping", "qubit": 0, "gate_time": 1.0, "rate": 0.01},
			{"op": "PragmaRepeatedMeasurement", "name": "ro", "count": 1000}
		]
	}`)

	// Warm up
	for i := 0; i < 1000; i++ {
		if _, err := loader.ParseCircuit(source); err != nil {
			fmt.Printf("❌ Parse failed during warm-up: %v\n", err)
			return
		}
	}

	// Measure allocations
	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		if _, err := loader.ParseCircuit(source); err != nil {
			fmt.Printf("❌ Parse failed: %v\n", err)
			return
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Parser Validation Results:\n")
	fmt.Printf("========================================\n")
	fmt.Printf("Total parse operations: %d\n", iterations)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Parses per second: %.0f\n", float64(iterations)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per parse: %.3f\n", float64(allocations)/float64(iterations))
	fmt.Printf("Bytes per parse: %.1f\n", float64(allocatedBytes)/float64(iterations))

	perParse := float64(allocations) / float64(iterations)
	if perParse < 100 {
		fmt.Printf("\n✅ GOOD: Parser allocation rate acceptable (%.0f per parse)\n", perParse)
	} else {
		fmt.Printf("\n⚠️  WARNING: High allocation rate detected\n")
	}
}
