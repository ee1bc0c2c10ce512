// Package device models the hardware a circuit is checked against:
// which gates exist, on how many qubits, and how long they take.
package device

import (
	"encoding/json"
	"fmt"

	"github.com/qrunlab/qrun/exec"
)

// GateTimeDevice is an all-to-all connected device with uniform
// per-arity gate times and an explicit set of implemented gates.
type GateTimeDevice struct {
	config *Config
	single map[string]bool
	two    map[string]bool
	three  map[string]bool
	multi  map[string]bool
}

var _ exec.Device = (*GateTimeDevice)(nil)

// NewGateTimeDevice builds a device from the given configuration. A
// nil config selects the defaults.
func NewGateTimeDevice(config *Config) (*GateTimeDevice, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device config: %w", err)
	}

	d := &GateTimeDevice{}
	d.apply(config.Clone())
	return d, nil
}

func (d *GateTimeDevice) apply(config *Config) {
	d.config = config
	d.single = gateSet(config.SingleQubitGates)
	d.two = gateSet(config.TwoQubitGates)
	d.three = gateSet(config.ThreeQubitGates)
	d.multi = gateSet(config.MultiQubitGates)
}

func gateSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// Qubits returns the number of qubits the device exposes.
func (d *GateTimeDevice) Qubits() int {
	return d.config.Qubits
}

// Config returns a copy of the active configuration.
func (d *GateTimeDevice) Config() *Config {
	return d.config.Clone()
}

// SingleQubitGateTime reports the gate time for a single-qubit gate,
// or false if the device does not offer it on that qubit.
func (d *GateTimeDevice) SingleQubitGateTime(name string, qubit int) (float64, bool) {
	if !d.inRange(qubit) || !d.single[name] {
		return 0, false
	}
	return d.config.SingleQubitGateTime, true
}

// TwoQubitGateTime reports the gate time for a two-qubit gate, or
// false if the device does not offer it on that qubit pair.
func (d *GateTimeDevice) TwoQubitGateTime(name string, control, target int) (float64, bool) {
	if !d.inRange(control) || !d.inRange(target) || control == target || !d.two[name] {
		return 0, false
	}
	return d.config.TwoQubitGateTime, true
}

// ThreeQubitGateTime reports the gate time for a three-qubit gate, or
// false if the device does not offer it on those qubits.
func (d *GateTimeDevice) ThreeQubitGateTime(name string, control0, control1, target int) (float64, bool) {
	if !d.inRange(control0) || !d.inRange(control1) || !d.inRange(target) || !d.three[name] {
		return 0, false
	}
	return d.config.ThreeQubitGateTime, true
}

// MultiQubitGateTime reports the gate time for a multi-qubit gate, or
// false if the device does not offer it on those qubits.
func (d *GateTimeDevice) MultiQubitGateTime(name string, qubits []int) (float64, bool) {
	if len(qubits) == 0 || !d.multi[name] {
		return 0, false
	}
	for _, q := range qubits {
		if !d.inRange(q) {
			return 0, false
		}
	}
	return d.config.MultiQubitGateTime, true
}

// ChangeDevice applies a runtime device change. The only supported
// change is "reconfigure", whose payload is a JSON patch over the
// current configuration.
func (d *GateTimeDevice) ChangeDevice(name string, payload []byte) error {
	if name != "reconfigure" {
		return fmt.Errorf("unsupported device change %q", name)
	}

	config := d.config.Clone()
	if err := json.Unmarshal(payload, config); err != nil {
		return fmt.Errorf("failed to parse device change payload: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid device change: %w", err)
	}

	d.apply(config)
	return nil
}

func (d *GateTimeDevice) inRange(qubit int) bool {
	return qubit >= 0 && qubit < d.config.Qubits
}
