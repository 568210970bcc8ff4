package engine

import (
	"encoding/json"
	"fmt"
)

// SnapshotVersion is the only envelope version this build reads or writes.
// There is deliberately no migration logic; a version bump is a breaking
// change.
const SnapshotVersion = 1

type snapshotEnvelope struct {
	V       int       `json:"v"`
	Payload GameState `json:"payload"`
}

// EncodeSnapshot wraps state in a versioned envelope and marshals it to
// JSON, suitable for transport or storage.
func EncodeSnapshot(state GameState) ([]byte, error) {
	data, err := json.Marshal(snapshotEnvelope{V: SnapshotVersion, Payload: state})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot envelope back into a GameState. Any
// envelope whose version differs from SnapshotVersion is rejected outright.
func DecodeSnapshot(data []byte) (GameState, error) {
	var probe struct {
		V       int             `json:"v"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return GameState{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if probe.V != SnapshotVersion {
		return GameState{}, fmt.Errorf("unsupported snapshot version: %d", probe.V)
	}
	var state GameState
	if err := json.Unmarshal(probe.Payload, &state); err != nil {
		return GameState{}, fmt.Errorf("decode snapshot payload: %w", err)
	}
	return state, nil
}
