// Package main provides a profiling wrapper for the circuit engine to
// identify sampling bottlenecks.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/qrunlab/qrun/backend"
	"github.com/qrunlab/qrun/exec"
	"github.com/qrunlab/qrun/loader"
)

var (
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	runs       = flag.Int("runs", 100, "number of circuit runs to profile")
	seed       = flag.Uint64("seed", 0, "backend seed (0 keeps OS seeding)")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <circuit.json>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	circuitPath := flag.Arg(0)

	c, err := loader.LoadCircuit(circuitPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading circuit: %v\n", err)
		os.Exit(1)
	}

	layout, err := exec.Preprocess(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preprocessing circuit: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", circuitPath)
	fmt.Printf("Operations: %d, qubits: %d\n", c.Len(), layout.Qubits)

	var opts []backend.Option
	if *seed != 0 {
		opts = append(opts, backend.WithSeed(*seed))
	}
	b, err := backend.New(layout.Qubits, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating backend: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()

	// Set timeout
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	rowCount := 0
	for i := 0; i < *runs; i++ {
		out, err := b.RunCircuit(c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error on run %d: %v\n", i, err)
			os.Exit(1)
		}
		for _, rows := range out.Bit {
			rowCount += len(rows)
		}
		for _, rows := range out.Float {
			rowCount += len(rows)
		}
		for _, rows := range out.Complex {
			rowCount += len(rows)
		}
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	stats := b.Stats()

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Circuit runs: %d\n", stats.CircuitsRun)
	fmt.Printf("Shots executed: %d\n", stats.ShotsExecuted)
	fmt.Printf("Plan cache: %d hits, %d misses\n", stats.PlanCacheHits, stats.PlanCacheMisses)
	fmt.Printf("Readout rows: %d\n", rowCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if rowCount > 0 && elapsed > 0 {
		fmt.Printf("Rows/second: %.0f\n", float64(rowCount)/elapsed.Seconds())
	}
}
