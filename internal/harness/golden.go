package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/lnnemml/pulse/internal/event"
)

// StreamSnapshot renders the emitted stream as canonical JSON, one
// envelope per line, for deterministic golden comparison.
func StreamSnapshot(stream []event.Envelope) ([]byte, error) {
	var buf bytes.Buffer
	for _, env := range stream {
		line, err := event.MarshalEnvelope(env)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// AssertGolden runs the scenario and compares its stream snapshot against
// the golden file named after the scenario.
func AssertGolden(t *testing.T, s *Scenario) *Result {
	t.Helper()

	result, err := Run(s)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	snapshot, err := StreamSnapshot(result.Stream)
	if err != nil {
		t.Fatalf("snapshot stream: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, s.Name, snapshot)
	return result
}
