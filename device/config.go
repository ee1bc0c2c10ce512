package device

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config describes a gate-time device: how many qubits it exposes,
// which gates it implements and how long each gate class takes.
// Gate times use the same arbitrary unit as the noise pragmas.
type Config struct {
	// Qubits is the number of qubits the device exposes. Default: 32.
	Qubits int `json:"qubits"`

	// SingleQubitGateTime is the execution time for single-qubit gates.
	// Default: 1.0.
	SingleQubitGateTime float64 `json:"single_qubit_gate_time"`

	// TwoQubitGateTime is the execution time for two-qubit gates.
	// Default: 2.0.
	TwoQubitGateTime float64 `json:"two_qubit_gate_time"`

	// ThreeQubitGateTime is the execution time for three-qubit gates.
	// Default: 4.0.
	ThreeQubitGateTime float64 `json:"three_qubit_gate_time"`

	// MultiQubitGateTime is the execution time for gates beyond three
	// qubits. Default: 8.0.
	MultiQubitGateTime float64 `json:"multi_qubit_gate_time"`

	// SingleQubitGates lists the implemented single-qubit gate names.
	SingleQubitGates []string `json:"single_qubit_gates"`

	// TwoQubitGates lists the implemented two-qubit gate names.
	TwoQubitGates []string `json:"two_qubit_gates"`

	// ThreeQubitGates lists the implemented three-qubit gate names.
	ThreeQubitGates []string `json:"three_qubit_gates"`

	// MultiQubitGates lists the implemented multi-qubit gate names.
	MultiQubitGates []string `json:"multi_qubit_gates"`
}

// DefaultConfig returns a Config covering the full gate set.
func DefaultConfig() *Config {
	return &Config{
		Qubits:              32,
		SingleQubitGateTime: 1.0,
		TwoQubitGateTime:    2.0,
		ThreeQubitGateTime:  4.0,
		MultiQubitGateTime:  8.0,
		SingleQubitGates: []string{
			"Hadamard", "PauliX", "PauliY", "PauliZ", "SGate", "TGate",
			"SqrtPauliX", "InvSqrtPauliX", "PhaseShiftState0",
			"PhaseShiftState1", "RotateX", "RotateY", "RotateZ",
		},
		TwoQubitGates: []string{
			"CNOT", "ControlledPauliZ", "ControlledPhaseShift", "SWAP", "ISwap",
		},
		ThreeQubitGates: []string{
			"Toffoli", "ControlledControlledPauliZ",
		},
		MultiQubitGates: []string{
			"MultiQubitZZ",
		},
	}
}

// LoadConfig loads a Config from a JSON file. Missing fields keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse device config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize device config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write device config file: %w", err)
	}

	return nil
}

// Validate checks that the qubit count and gate times are positive.
func (c *Config) Validate() error {
	if c.Qubits < 1 {
		return fmt.Errorf("qubits must be >= 1")
	}
	if c.SingleQubitGateTime <= 0 {
		return fmt.Errorf("single_qubit_gate_time must be > 0")
	}
	if c.TwoQubitGateTime <= 0 {
		return fmt.Errorf("two_qubit_gate_time must be > 0")
	}
	if c.ThreeQubitGateTime <= 0 {
		return fmt.Errorf("three_qubit_gate_time must be > 0")
	}
	if c.MultiQubitGateTime <= 0 {
		return fmt.Errorf("multi_qubit_gate_time must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.SingleQubitGates = append([]string(nil), c.SingleQubitGates...)
	clone.TwoQubitGates = append([]string(nil), c.TwoQubitGates...)
	clone.ThreeQubitGates = append([]string(nil), c.ThreeQubitGates...)
	clone.MultiQubitGates = append([]string(nil), c.MultiQubitGates...)
	return &clone
}
