// Package main provides the entry point for qrun.
// qrun is a quantum circuit sampling engine with state-vector and
// density-matrix backends.
//
// For the full CLI, use: go run ./cmd/qrun
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("qrun - Quantum Circuit Sampling Engine")
	fmt.Println("State-vector and density-matrix simulation")
	fmt.Println("")
	fmt.Println("Usage: qrun [options] <circuit.json>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to run configuration YAML file")
	fmt.Println("  -device    Path to device configuration JSON file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/qrun' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/qrun' instead.")
	}
}
