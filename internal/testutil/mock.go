// Package testutil provides testing utilities for pinflow.
package testutil

import (
	"context"
	"log/slog"
	"sync"

	"github.com/agentstation/pinflow"
)

// Probe type ids.
const (
	TypeEntry    = "testutil.Entry"
	TypeConstant = "testutil.Constant"
	TypeSink     = "testutil.Sink"
	TypeFail     = "testutil.Fail"
)

// Counter counts evaluations of a fixture node.
type Counter struct {
	mu    sync.Mutex
	count int
}

// Count returns the number of evaluations so far.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *Counter) inc() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

// NewEntry creates an entry node with a single exec_out pin.
func NewEntry(uniqueID string) *pinflow.EntryNode {
	n, err := pinflow.NewEntryNode(TypeEntry, "Entry")
	if err != nil {
		panic(err)
	}
	n.SetUniqueID(uniqueID)
	return n
}

// NewConstant creates a pure node whose "value" output publishes value,
// counting every evaluation.
func NewConstant(uniqueID string, value any) (*pinflow.FunctionNode, *Counter) {
	counter := &Counter{}
	n, err := pinflow.NewFunctionNode(TypeConstant, "Constant",
		func(_ context.Context, n *pinflow.FunctionNode) error {
			counter.inc()
			return n.SetResult("value", value)
		},
		pinflow.Pure(),
		pinflow.WithOutputs(pinflow.NewOutputArgumentPin("value", "Value", pinflow.TypeAny)),
	)
	if err != nil {
		panic(err)
	}
	n.SetUniqueID(uniqueID)
	return n, counter
}

// Sink records the values an impure sink node read on each execution.
type Sink struct {
	mu     sync.Mutex
	values []any
}

// Values returns the recorded values in execution order.
func (s *Sink) Values() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.values...)
}

// NewSink creates an impure node reading its "value" input (of type t) on
// every execution.
func NewSink(uniqueID string, t pinflow.Type) (*pinflow.FunctionNode, *Sink) {
	sink := &Sink{}
	n, err := pinflow.NewFunctionNode(TypeSink, "Sink",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			v, err := n.Arg(ctx, "value")
			if err != nil {
				return err
			}
			sink.mu.Lock()
			sink.values = append(sink.values, v)
			sink.mu.Unlock()
			return nil
		},
		pinflow.WithInputs(pinflow.NewInputArgumentPin("value", "Value", t)),
	)
	if err != nil {
		panic(err)
	}
	n.SetUniqueID(uniqueID)
	return n, sink
}

// NewFail creates an impure node that always returns err.
func NewFail(uniqueID string, err error) *pinflow.FunctionNode {
	n, nerr := pinflow.NewFunctionNode(TypeFail, "Fail",
		func(context.Context, *pinflow.FunctionNode) error { return err },
	)
	if nerr != nil {
		panic(nerr)
	}
	n.SetUniqueID(uniqueID)
	return n
}

// LogEntry is one captured log record.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is a slog.Handler that keeps every record.
type LogCapture struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	attrs   []slog.Attr
}

// NewLogCapture creates a capture and a logger writing to it at every level.
func NewLogCapture() (*LogCapture, *slog.Logger) {
	c := &LogCapture{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
	return c, slog.New(c)
}

// Enabled reports true for every level.
func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

// Handle stores r.
func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	e := LogEntry{Level: r.Level, Message: r.Message, Attrs: make(map[string]any)}
	for _, a := range c.attrs {
		e.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs[a.Key] = a.Value.Any()
		return true
	})

	c.mu.Lock()
	*c.entries = append(*c.entries, e)
	c.mu.Unlock()
	return nil
}

// WithAttrs returns a handler sharing the capture with extra attributes.
func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogCapture{mu: c.mu, entries: c.entries, attrs: append(append([]slog.Attr(nil), c.attrs...), attrs...)}
}

// WithGroup ignores grouping.
func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Entries returns the captured records.
func (c *LogCapture) Entries() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LogEntry(nil), *c.entries...)
}

// HasEntry reports whether a record with level and message was captured.
func (c *LogCapture) HasEntry(level slog.Level, msg string) bool {
	for _, e := range c.Entries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
