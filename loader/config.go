package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/qrunlab/qrun/backend"
)

// RunConfig configures a backend run driven from the command line.
type RunConfig struct {
	// Qubits is the backend's qubit capacity. Default: 8.
	Qubits int `yaml:"qubits"`

	// Repetitions is the shot count for stochastic circuits. Default: 1.
	Repetitions int `yaml:"repetitions"`

	// Seed makes the run deterministic when non-empty.
	Seed []uint64 `yaml:"seed,omitempty"`

	// DeviceConfig is an optional path to a device config file.
	DeviceConfig string `yaml:"device_config,omitempty"`

	// ReadoutErrors installs an imperfect readout model when set.
	ReadoutErrors *ReadoutErrors `yaml:"readout_errors,omitempty"`
}

// ReadoutErrors holds per-qubit measurement error rates.
type ReadoutErrors struct {
	ZeroAsOne map[int]float64 `yaml:"zero_as_one,omitempty"`
	OneAsZero map[int]float64 `yaml:"one_as_zero,omitempty"`
}

// DefaultRunConfig returns a RunConfig with default values.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Qubits:      8,
		Repetitions: 1,
	}
}

// LoadRunConfig loads a RunConfig from a YAML file. Missing fields keep
// their default values.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run config file: %w", err)
	}

	config := DefaultRunConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse run config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the configured sizes make sense.
func (c *RunConfig) Validate() error {
	if c.Qubits < 1 {
		return fmt.Errorf("qubits must be >= 1")
	}
	if c.Repetitions < 1 {
		return fmt.Errorf("repetitions must be >= 1")
	}
	return nil
}

// ReadoutModel converts the configured error rates into a backend
// model, or nil when none are configured.
func (c *RunConfig) ReadoutModel() *backend.ImperfectReadoutModel {
	if c.ReadoutErrors == nil {
		return nil
	}
	model := backend.NewImperfectReadoutModel()
	for q, p := range c.ReadoutErrors.ZeroAsOne {
		model.ZeroAsOne[q] = p
	}
	for q, p := range c.ReadoutErrors.OneAsZero {
		model.OneAsZero[q] = p
	}
	return model
}
