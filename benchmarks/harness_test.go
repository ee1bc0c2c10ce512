// Package benchmarks provides workload infrastructure for measuring the
// circuit engine's sampling throughput and statistical accuracy.
package benchmarks

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/qrunlab/qrun/circuit"
)

func TestHarnessRunsAllWorkloads(t *testing.T) {
	config := DefaultConfig()
	config.Output = &bytes.Buffer{}

	harness := NewHarness(config)
	harness.AddWorkloads(GetWorkloads())

	results := harness.RunAll()

	if len(results) != 7 {
		t.Errorf("expected 7 workload results, got %d", len(results))
	}

	for _, r := range results {
		if !r.Pass {
			t.Errorf("workload %s failed: %s", r.Name, r.Failure)
		}
		if r.Rows == 0 {
			t.Errorf("workload %s produced 0 rows", r.Name)
		}
		t.Logf("✓ %s: mode=%s, shots=%d, rows=%d, rows/s=%.0f",
			r.Name, r.Mode, r.Shots, r.Rows, r.RowsPerSecond)
	}
}

func TestCoreWorkloads(t *testing.T) {
	config := DefaultConfig()
	config.Output = &bytes.Buffer{}

	harness := NewHarness(config)
	harness.AddWorkloads(GetCoreWorkloads())

	results := harness.RunAll()

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Pass {
			t.Errorf("workload %s failed: %s", r.Name, r.Failure)
		}
	}
}

func TestBellSamplingWorkload(t *testing.T) {
	config := DefaultConfig()
	config.Output = &bytes.Buffer{}

	harness := NewHarness(config)
	harness.AddWorkload(bellSampling())

	results := harness.RunAll()

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if !r.Pass {
		t.Fatalf("workload failed: %s", r.Failure)
	}
	if r.Mode != "SampledReplace" {
		t.Errorf("expected SampledReplace mode, got %s", r.Mode)
	}
	if r.Shots != 1 {
		t.Errorf("sampled shortcut should run 1 shot, got %d", r.Shots)
	}
	if r.Rows != 1000 {
		t.Errorf("expected 1000 rows, got %d", r.Rows)
	}
	if r.Qubits != 2 {
		t.Errorf("expected 2 qubits, got %d", r.Qubits)
	}

	t.Logf("bell_sampling: shots=%d, rows=%d, rows/s=%.0f", r.Shots, r.Rows, r.RowsPerSecond)
}

func TestReplayedMarginalWorkload(t *testing.T) {
	config := DefaultConfig()
	config.Output = &bytes.Buffer{}

	harness := NewHarness(config)
	harness.AddWorkload(replayedMarginal())

	results := harness.RunAll()

	r := results[0]
	if !r.Pass {
		t.Fatalf("workload failed: %s", r.Failure)
	}
	if r.Mode != "FullReplay" {
		t.Errorf("expected FullReplay mode, got %s", r.Mode)
	}
	if r.Shots != 200 {
		t.Errorf("expected 200 shots, got %d", r.Shots)
	}
	// two registers, one row each per shot
	if r.Rows != 400 {
		t.Errorf("expected 400 rows, got %d", r.Rows)
	}

	t.Logf("replayed_marginal: shots=%d, rows=%d, rows/s=%.0f", r.Shots, r.Rows, r.RowsPerSecond)
}

func TestConditionalFeedbackWorkload(t *testing.T) {
	config := DefaultConfig()
	config.Output = &bytes.Buffer{}

	harness := NewHarness(config)
	harness.AddWorkload(conditionalFeedback())

	results := harness.RunAll()

	r := results[0]
	if !r.Pass {
		t.Fatalf("workload failed: %s", r.Failure)
	}
	if r.Mode != "FullReplay" {
		t.Errorf("expected FullReplay mode, got %s", r.Mode)
	}

	t.Logf("conditional_feedback: shots=%d, rows=%d", r.Shots, r.Rows)
}

func TestDampedPopulationWorkload(t *testing.T) {
	config := DefaultConfig()
	config.Output = &bytes.Buffer{}

	harness := NewHarness(config)
	harness.AddWorkload(dampedPopulation())

	results := harness.RunAll()

	r := results[0]
	if !r.Pass {
		t.Fatalf("workload failed: %s", r.Failure)
	}
	if r.Mode != "SampledReplace" {
		t.Errorf("expected SampledReplace mode, got %s", r.Mode)
	}
	if r.Rows != 500 {
		t.Errorf("expected 500 rows, got %d", r.Rows)
	}

	t.Logf("damped_population: shots=%d, rows=%d", r.Shots, r.Rows)
}

func TestUnseededHarness(t *testing.T) {
	config := DefaultConfig()
	config.Output = &bytes.Buffer{}
	config.Seed = 0

	harness := NewHarness(config)
	harness.AddWorkload(bellSampling())

	results := harness.RunAll()

	r := results[0]
	if !r.Pass {
		t.Errorf("workload failed without a fixed seed: %s", r.Failure)
	}
}

func TestPrintResults(t *testing.T) {
	buf := &bytes.Buffer{}
	config := DefaultConfig()
	config.Output = buf

	harness := NewHarness(config)
	harness.AddWorkload(bellSampling())

	results := harness.RunAll()
	harness.PrintResults(results)

	output := buf.String()
	if !strings.Contains(output, "bell_sampling") {
		t.Error("output should contain workload name")
	}
	if !strings.Contains(output, "Rows:") {
		t.Error("output should contain row count header")
	}
	if !strings.Contains(output, "Status: PASS") {
		t.Error("output should contain pass status")
	}
}

func TestPrintCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	config := DefaultConfig()
	config.Output = buf

	harness := NewHarness(config)
	harness.AddWorkload(bellSampling())

	results := harness.RunAll()
	harness.PrintCSV(results)

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")

	if len(lines) != 2 {
		t.Errorf("expected 2 lines (header + data), got %d", len(lines))
	}

	if !strings.Contains(lines[0], "name,qubits,operations") {
		t.Error("CSV header should contain expected columns")
	}

	if !strings.Contains(lines[1], "bell_sampling") {
		t.Error("CSV data should contain workload name")
	}
}

func TestPrintJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	config := DefaultConfig()
	config.Output = buf

	harness := NewHarness(config)
	harness.AddWorkloads(GetCoreWorkloads())

	results := harness.RunAll()
	if err := harness.PrintJSON(results); err != nil {
		t.Fatalf("PrintJSON failed: %v", err)
	}

	var report WorkloadReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if report.Summary.TotalWorkloads != 3 {
		t.Errorf("expected 3 workloads in summary, got %d", report.Summary.TotalWorkloads)
	}
	if report.Summary.PassingWorkloads != 3 {
		t.Errorf("expected 3 passing workloads, got %d", report.Summary.PassingWorkloads)
	}
	if report.Metadata.Config.Seed != DefaultConfig().Seed {
		t.Errorf("report should record the configured seed")
	}
}

func TestFailureIsReported(t *testing.T) {
	config := DefaultConfig()
	config.Output = &bytes.Buffer{}

	harness := NewHarness(config)
	harness.AddWorkload(Workload{
		Name:        "broken",
		Description: "measures into an undeclared register",
		Build: func() *circuit.Circuit {
			c := circuit.New()
			c.Add(circuit.MeasureQubit(0, "missing", 0))
			return c
		},
	})

	results := harness.RunAll()

	r := results[0]
	if r.Pass {
		t.Error("preprocessing failure should fail the workload")
	}
	if !strings.Contains(r.Failure, "missing") {
		t.Errorf("failure should name the register, got %q", r.Failure)
	}
}
