// Command benchmark runs the circuit engine workload harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv          Output results in CSV format (default: human-readable)
//	-json         Output results in JSON format
//	-core         Run only the minimal core workload set
//	-seed         Seed for the random source (0 keeps OS seeding)
//	-repetitions  Stochastic averaging factor for noisy circuits
//
// Example:
//
//	# Run all workloads with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
// The workload results track the engine's sampling throughput across
// its execution paths: final-state sampling, full replay and the
// density-matrix representation.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/qrunlab/qrun/benchmarks"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	core := flag.Bool("core", false, "Run only the core workload set")
	seed := flag.Int64("seed", benchmarks.DefaultConfig().Seed, "Seed for the random source (0 keeps OS seeding)")
	repetitions := flag.Int("repetitions", 1, "Stochastic averaging factor for noisy circuits")
	flag.Parse()

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.Seed = *seed
	config.Repetitions = *repetitions
	config.Output = os.Stdout

	// Create harness and add workloads
	harness := benchmarks.NewHarness(config)
	if *core {
		harness.AddWorkloads(benchmarks.GetCoreWorkloads())
	} else {
		harness.AddWorkloads(benchmarks.GetWorkloads())
	}

	// Print configuration
	if !*csvOutput && !*jsonOutput {
		fmt.Println("Circuit Engine Workload Harness")
		fmt.Println("===============================")
		fmt.Printf("Seed: %d\n", config.Seed)
		fmt.Printf("Repetitions: %d\n", config.Repetitions)
		fmt.Println("")
	}

	// Run workloads
	results := harness.RunAll()

	// Output results
	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON report: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		// Print summary
		failed := 0
		for _, r := range results {
			if !r.Pass {
				failed++
			}
		}
		fmt.Println("=== Summary ===")
		fmt.Println("")
		fmt.Printf("Workloads: %d, failing: %d\n", len(results), failed)
		fmt.Println("")
		fmt.Println("Workload characteristics:")
		fmt.Println("- bell_sampling: one gate pass, rows drawn from the final distribution")
		fmt.Println("- ghz_chain: same shortcut over a 32-amplitude state")
		fmt.Println("- replayed_marginal: one full circuit execution per row")
		fmt.Println("- conditional_feedback: classical control flow inside the replay loop")
		fmt.Println("- damped_population: density-matrix evolution, quadratic state size")
		fmt.Println("- pauli_expectation / state_snapshot: state access on an engine clone")
	}

	for _, r := range results {
		if !r.Pass {
			os.Exit(1)
		}
	}
}
