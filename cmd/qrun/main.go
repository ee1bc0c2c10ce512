// Package main provides the entry point for qrun.
// qrun executes quantum circuit files against a simulated backend.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/qrunlab/qrun/backend"
	"github.com/qrunlab/qrun/circuit"
	"github.com/qrunlab/qrun/device"
	"github.com/qrunlab/qrun/exec"
	"github.com/qrunlab/qrun/loader"
)

var (
	configPath  = flag.String("config", "", "Path to run configuration YAML file")
	qubits      = flag.Int("qubits", 0, "Override the backend qubit capacity")
	repetitions = flag.Int("repetitions", 0, "Override the repetitions for stochastic circuits")
	seed        = flag.Uint64("seed", 0, "Deterministic seed (0 keeps OS seeding)")
	devicePath  = flag.String("device", "", "Path to device configuration JSON file")
	jsonOut     = flag.Bool("json", false, "Print output registers as JSON")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: qrun [options] <circuit.json>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	circuitPath := flag.Arg(0)

	config := loader.DefaultRunConfig()
	if *configPath != "" {
		var err error
		config, err = loader.LoadRunConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading run config: %v\n", err)
			os.Exit(1)
		}
	}
	if *qubits > 0 {
		config.Qubits = *qubits
	}
	if *repetitions > 0 {
		config.Repetitions = *repetitions
	}
	if *seed != 0 {
		config.Seed = []uint64{*seed}
	}
	if *devicePath != "" {
		config.DeviceConfig = *devicePath
	}

	c, err := loader.LoadCircuit(circuitPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading circuit: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", circuitPath)
		fmt.Printf("Operations: %d\n", c.Len())
		fmt.Printf("Backend qubits: %d\n", config.Qubits)
	}

	out, stats, err := run(config, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running circuit: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		printJSON(out)
	} else {
		printRegisters(out)
	}

	if *verbose {
		fmt.Printf("\nShots executed: %d\n", stats.ShotsExecuted)
	}
}

// run builds a backend from the configuration and executes the circuit.
func run(config *loader.RunConfig, c *circuit.Circuit) (*exec.Registers, backend.Stats, error) {
	opts := []backend.Option{backend.WithRepetitions(config.Repetitions)}
	if len(config.Seed) > 0 {
		opts = append(opts, backend.WithSeed(config.Seed...))
	}
	if config.DeviceConfig != "" {
		deviceConfig, err := device.LoadConfig(config.DeviceConfig)
		if err != nil {
			return nil, backend.Stats{}, err
		}
		d, err := device.NewGateTimeDevice(deviceConfig)
		if err != nil {
			return nil, backend.Stats{}, err
		}
		opts = append(opts, backend.WithDevice(d))
	}
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, backend.Stats{}, err
		}
		defer func() { _ = logger.Sync() }()
		opts = append(opts, backend.WithLogger(logger))
	}

	b, err := backend.New(config.Qubits, opts...)
	if err != nil {
		return nil, backend.Stats{}, err
	}
	if model := config.ReadoutModel(); model != nil {
		b.SetImperfectReadoutModel(model)
	}

	out, err := b.RunCircuit(c)
	if err != nil {
		return nil, backend.Stats{}, err
	}
	return out, b.Stats(), nil
}

func printRegisters(out *exec.Registers) {
	for _, name := range sortedKeys(out.Bit) {
		rows := out.Bit[name]
		fmt.Printf("%s (bit, %d rows):\n", name, len(rows))
		for _, row := range rows {
			fmt.Printf("  %s\n", formatBits(row))
		}
	}
	for _, name := range sortedKeys(out.Float) {
		rows := out.Float[name]
		fmt.Printf("%s (float, %d rows):\n", name, len(rows))
		for _, row := range rows {
			fmt.Printf("  %v\n", []float64(row))
		}
	}
	for _, name := range sortedKeys(out.Complex) {
		rows := out.Complex[name]
		fmt.Printf("%s (complex, %d rows):\n", name, len(rows))
		for _, row := range rows {
			fmt.Printf("  %v\n", []complex128(row))
		}
	}
}

func printJSON(out *exec.Registers) {
	payload := struct {
		Bit     map[string][]exec.BitRegister   `json:"bit,omitempty"`
		Float   map[string][]exec.FloatRegister `json:"float,omitempty"`
		Complex map[string][][][2]float64       `json:"complex,omitempty"`
	}{
		Bit:     out.Bit,
		Float:   out.Float,
		Complex: make(map[string][][][2]float64, len(out.Complex)),
	}
	for name, rows := range out.Complex {
		converted := make([][][2]float64, len(rows))
		for i, row := range rows {
			pairs := make([][2]float64, len(row))
			for j, v := range row {
				pairs[j] = [2]float64{real(v), imag(v)}
			}
			converted[i] = pairs
		}
		payload.Complex[name] = converted
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func formatBits(row exec.BitRegister) string {
	buf := make([]byte, len(row))
	for i, bit := range row {
		if bit {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
