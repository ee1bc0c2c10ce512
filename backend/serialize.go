package backend

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/qrunlab/qrun/exec"
)

// backendState is the serializable part of a Backend. Devices and
// loggers are wiring, not configuration, and are reattached by the
// caller after decoding.
type backendState struct {
	QubitCount  int                    `json:"qubit_count"`
	Repetitions int                    `json:"repetitions"`
	SeedWords   []uint64               `json:"seed_words,omitempty"`
	Readout     *ImperfectReadoutModel `json:"readout_model,omitempty"`
}

func (b *Backend) state() backendState {
	return backendState{
		QubitCount:  b.qubitCount,
		Repetitions: b.repetitions,
		SeedWords:   b.seedWords,
		Readout:     b.readout,
	}
}

func (b *Backend) restore(st backendState) error {
	if st.QubitCount < 1 {
		return errors.Errorf("backend needs at least one qubit, got %d", st.QubitCount)
	}

	b.qubitCount = st.QubitCount
	b.repetitions = st.Repetitions
	if b.repetitions < 1 {
		b.repetitions = 1
	}
	b.seedWords = st.SeedWords
	b.readout = st.Readout

	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.planCacheSize < 1 {
		b.planCacheSize = defaultPlanCacheSize
	}
	if b.plans == nil {
		plans, err := lru.New[planKey, *exec.Plan](b.planCacheSize)
		if err != nil {
			return errors.Wrap(err, "failed to create plan cache")
		}
		b.plans = plans
	}
	return nil
}

// MarshalBinary encodes the backend configuration with gob.
func (b *Backend) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b.state()); err != nil {
		return nil, errors.Wrap(err, "failed to encode backend")
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a gob-encoded backend configuration into b.
// A zero Backend becomes usable after a successful decode.
func (b *Backend) UnmarshalBinary(data []byte) error {
	var st backendState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return errors.Wrap(err, "failed to decode backend")
	}
	return b.restore(st)
}

// MarshalJSON encodes the backend configuration as JSON.
func (b *Backend) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.state())
}

// UnmarshalJSON decodes a JSON backend configuration into b.
func (b *Backend) UnmarshalJSON(data []byte) error {
	var st backendState
	if err := json.Unmarshal(data, &st); err != nil {
		return errors.Wrap(err, "failed to decode backend")
	}
	return b.restore(st)
}
