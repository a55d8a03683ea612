package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/agentstation/pinflow"
)

// EventTypes returns the type of each event, in order.
func EventTypes(events []pinflow.Event) []pinflow.EventType {
	out := make([]pinflow.EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

// EventNodes returns "type:nodeID" for each event, in order.
func EventNodes(events []pinflow.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = string(e.Type) + ":" + e.NodeID
	}
	return out
}

// AssertEventTypes fails the test when the recorded event types differ from
// want.
func AssertEventTypes(t testing.TB, rec *pinflow.Recorder, want ...pinflow.EventType) {
	t.Helper()
	if diff := cmp.Diff(want, EventTypes(rec.Events())); diff != "" {
		t.Errorf("event types mismatch (-want +got):\n%s", diff)
	}
}

// AssertEventNodes fails the test when the recorded "type:nodeID" sequence
// differs from want.
func AssertEventNodes(t testing.TB, rec *pinflow.Recorder, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, EventNodes(rec.Events())); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

// AssertValues fails the test when a sink recorded values other than want.
func AssertValues(t testing.TB, sink *Sink, want ...any) {
	t.Helper()
	if diff := cmp.Diff(want, sink.Values()); diff != "" {
		t.Errorf("sink values mismatch (-want +got):\n%s", diff)
	}
}
