package pinflow

import (
	"context"
	"sync"
	"time"
)

// EventType represents the type of execution event.
type EventType string

const (
	// Graph events.
	EventGraphStart    EventType = "graph.start"
	EventGraphComplete EventType = "graph.complete"
	EventGraphError    EventType = "graph.error"

	// EventFlowEnter is emitted when an input flow pin fires.
	EventFlowEnter EventType = "flow.enter"

	// EventNodeEvaluate is emitted each time a function node body runs,
	// including every pull of a pure node.
	EventNodeEvaluate EventType = "node.evaluate"
)

// Event represents an execution event.
type Event struct {
	Type      EventType `json:"type" yaml:"type"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	NodeID    string    `json:"nodeId,omitempty" yaml:"nodeId,omitempty"`
	TypeID    string    `json:"typeId,omitempty" yaml:"typeId,omitempty"`
	PinID     string    `json:"pinId,omitempty" yaml:"pinId,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Observer receives execution events synchronously, on the executing
// goroutine.
type Observer interface {
	Handle(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event)

// Handle calls f.
func (f ObserverFunc) Handle(ctx context.Context, event Event) {
	f(ctx, event)
}

// EventFilter selects events.
type EventFilter func(Event) bool

// Recorder is an Observer keeping the events it receives in order.
type Recorder struct {
	mu      sync.Mutex
	events  []Event
	filters []EventFilter
}

// NewRecorder creates a recorder keeping only events accepted by every filter.
func NewRecorder(filters ...EventFilter) *Recorder {
	return &Recorder{filters: filters}
}

// Handle records the event.
func (r *Recorder) Handle(_ context.Context, event Event) {
	for _, f := range r.filters {
		if !f(event) {
			return
		}
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// OfType is an EventFilter accepting the given event types.
func OfType(types ...EventType) EventFilter {
	return func(e Event) bool {
		for _, t := range types {
			if e.Type == t {
				return true
			}
		}
		return false
	}
}
