// Package benchmarks provides workload infrastructure for measuring the
// circuit engine's sampling throughput and statistical accuracy.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/qrunlab/qrun/circuit"
	"github.com/qrunlab/qrun/exec"
)

// WorkloadResult holds the measurements for a single workload run.
type WorkloadResult struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Description explains what the workload exercises
	Description string `json:"description"`

	// Qubits is the engine size the preprocessor derived
	Qubits int `json:"qubits"`

	// Operations is the number of operations in the circuit
	Operations int `json:"operations"`

	// Mode is the sampling strategy the planner chose
	Mode string `json:"mode"`

	// Shots is the number of dispatch passes over the circuit
	Shots int `json:"shots"`

	// Rows is the total number of readout rows produced
	Rows int `json:"rows"`

	// Pass reports whether the workload's check accepted the output
	Pass bool `json:"pass"`

	// Failure carries the run or check error when Pass is false
	Failure string `json:"failure,omitempty"`

	// WallTime is the actual time taken to run the workload
	WallTime time.Duration `json:"wall_time_ns"`

	// RowsPerSecond is the sampling throughput
	RowsPerSecond float64 `json:"rows_per_second"`
}

// Workload defines a single benchmark circuit.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload exercises
	Description string

	// Build constructs a fresh copy of the workload circuit
	Build func() *circuit.Circuit

	// Check validates the output registers (nil skips validation)
	Check func(out *exec.Registers) error
}

// HarnessConfig configures the workload harness.
type HarnessConfig struct {
	// Seed fixes the random source; 0 keeps OS seeding
	Seed int64

	// Repetitions is the stochastic averaging factor for noisy circuits
	Repetitions int

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Seed:        20848,
		Repetitions: 1,
		Output:      os.Stdout,
		Verbose:     false,
	}
}

// Harness runs circuit workloads and reports results.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a new workload harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Repetitions < 1 {
		config.Repetitions = 1
	}
	return &Harness{
		config:    config,
		workloads: []Workload{},
	}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll executes all workloads and returns results.
func (h *Harness) RunAll() []WorkloadResult {
	results := make([]WorkloadResult, 0, len(h.workloads))

	for _, w := range h.workloads {
		result := h.runWorkload(w)
		results = append(results, result)
	}

	return results
}

// runWorkload executes a single workload.
func (h *Harness) runWorkload(w Workload) WorkloadResult {
	result := WorkloadResult{
		Name:        w.Name,
		Description: w.Description,
	}

	c := w.Build()
	result.Operations = c.Len()

	layout, err := exec.Preprocess(c)
	if err != nil {
		result.Failure = err.Error()
		return result
	}
	result.Qubits = layout.Qubits

	plan, err := exec.BuildPlan(c, layout, h.config.Repetitions)
	if err != nil {
		result.Failure = err.Error()
		return result
	}
	result.Mode = plan.Mode.String()
	result.Shots = plan.Shots

	var opts []exec.RunOption
	if h.config.Seed != 0 {
		opts = append(opts, exec.WithRand(rand.New(rand.NewSource(h.config.Seed))))
	}

	start := time.Now()
	out, err := exec.Run(plan, opts...)
	result.WallTime = time.Since(start)
	if err != nil {
		result.Failure = err.Error()
		return result
	}

	result.Rows = countRows(out)
	if seconds := result.WallTime.Seconds(); seconds > 0 {
		result.RowsPerSecond = float64(result.Rows) / seconds
	}

	if w.Check != nil {
		if err := w.Check(out); err != nil {
			result.Failure = err.Error()
			return result
		}
	}

	result.Pass = true
	return result
}

// countRows sums the readout rows over all output registers.
func countRows(out *exec.Registers) int {
	rows := 0
	for _, r := range out.Bit {
		rows += len(r)
	}
	for _, r := range out.Float {
		rows += len(r)
	}
	for _, r := range out.Complex {
		rows += len(r)
	}
	return rows
}

// PrintResults outputs workload results in a human-readable format.
func (h *Harness) PrintResults(results []WorkloadResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Circuit Workload Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		status := "PASS"
		if !r.Pass {
			status = "FAIL"
		}
		_, _ = fmt.Fprintf(h.config.Output, "Workload: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Status: %s\n", status)
		if r.Failure != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Failure: %s\n", r.Failure)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Sampling ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Qubits:     %d\n", r.Qubits)
		_, _ = fmt.Fprintf(h.config.Output, "  Operations: %d\n", r.Operations)
		_, _ = fmt.Fprintf(h.config.Output, "  Mode:       %s\n", r.Mode)
		_, _ = fmt.Fprintf(h.config.Output, "  Shots:      %d\n", r.Shots)
		_, _ = fmt.Fprintf(h.config.Output, "  Rows:       %d\n", r.Rows)
		_, _ = fmt.Fprintf(h.config.Output, "  Rows/s:     %.0f\n", r.RowsPerSecond)
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs workload results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []WorkloadResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,qubits,operations,mode,shots,rows,rows_per_second,wall_time_ns,pass")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%s,%d,%d,%.0f,%d,%t\n",
			r.Name,
			r.Qubits,
			r.Operations,
			r.Mode,
			r.Shots,
			r.Rows,
			r.RowsPerSecond,
			r.WallTime.Nanoseconds(),
			r.Pass,
		)
	}
}

// WorkloadReport is the complete output format for workload results.
type WorkloadReport struct {
	// Metadata about the workload run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual workload results
	Results []WorkloadResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the workload run.
type ReportMetadata struct {
	// Timestamp when the workloads were run
	Timestamp string `json:"timestamp"`

	// Version of the engine
	Version string `json:"version"`

	// Config describes the harness configuration
	Config ReportConfig `json:"config"`
}

// ReportConfig describes the harness configuration used.
type ReportConfig struct {
	Seed        int64 `json:"seed"`
	Repetitions int   `json:"repetitions"`
}

// ReportSummary contains aggregate statistics across all workloads.
type ReportSummary struct {
	// TotalWorkloads is the number of workloads run
	TotalWorkloads int `json:"total_workloads"`

	// PassingWorkloads is the number of workloads whose check passed
	PassingWorkloads int `json:"passing_workloads"`

	// TotalRows is the sum of all readout rows produced
	TotalRows int `json:"total_rows"`

	// TotalWallTime is the total wall clock time for all workloads
	TotalWallTime time.Duration `json:"total_wall_time_ns"`

	// AverageRowsPerSecond is the aggregate sampling throughput
	AverageRowsPerSecond float64 `json:"average_rows_per_second"`
}

// PrintJSON outputs workload results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []WorkloadResult) error {
	var totalRows, passing int
	var totalWallTime time.Duration
	for _, r := range results {
		totalRows += r.Rows
		totalWallTime += r.WallTime
		if r.Pass {
			passing++
		}
	}

	average := float64(0)
	if seconds := totalWallTime.Seconds(); seconds > 0 {
		average = float64(totalRows) / seconds
	}

	report := WorkloadReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "0.1.0",
			Config: ReportConfig{
				Seed:        h.config.Seed,
				Repetitions: h.config.Repetitions,
			},
		},
		Results: results,
		Summary: ReportSummary{
			TotalWorkloads:       len(results),
			PassingWorkloads:     passing,
			TotalRows:            totalRows,
			TotalWallTime:        totalWallTime,
			AverageRowsPerSecond: average,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
