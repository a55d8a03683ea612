package pinflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/pinflow/internal/ctxlog"
)

// Graph is a set of wired node instances, named variables and the entry node
// that starts execution. A Graph is built once and must not be executed from
// more than one goroutine at a time.
type Graph struct {
	entry     *EntryNode
	nodes     map[string]Node
	order     []string
	variables map[string]*GraphVariable
	varOrder  []string
	opts      graphOptions
}

// graphOptions holds configuration for a Graph.
type graphOptions struct {
	logger    *slog.Logger
	observers []Observer
}

// GraphOption configures a Graph.
type GraphOption func(*graphOptions)

// WithLogger sets the logger placed in the execution context. Without it the
// logger already carried by the context passed to Execute is used.
func WithLogger(logger *slog.Logger) GraphOption {
	return func(o *graphOptions) {
		o.logger = logger
	}
}

// WithObserver adds an observer receiving execution events.
func WithObserver(observer Observer) GraphOption {
	return func(o *graphOptions) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// NewUniqueID returns a fresh node unique id.
func NewUniqueID() string {
	return uuid.NewString()
}

// NewGraph builds a graph from entry, nodes and variables and binds every
// node's graph back-reference. entry is added to the node set when nodes does
// not already contain it; nodes without a unique id get a generated one.
func NewGraph(entry *EntryNode, nodes []Node, variables []*GraphVariable, opts ...GraphOption) (*Graph, error) {
	if entry == nil {
		return nil, ErrNoEntryNode
	}

	g := &Graph{
		entry:     entry,
		nodes:     make(map[string]Node, len(nodes)+1),
		variables: make(map[string]*GraphVariable, len(variables)),
	}
	for _, opt := range opts {
		opt(&g.opts)
	}

	hasEntry := false
	for _, n := range nodes {
		if n == Node(entry) {
			hasEntry = true
			break
		}
	}
	if !hasEntry {
		nodes = append([]Node{entry}, nodes...)
	}

	// Validate everything before generating ids so a rejected graph leaves
	// the caller's nodes untouched.
	seen := make(map[Node]bool, len(nodes))
	var unnamed []Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		id := n.UniqueID()
		if seen[n] {
			return nil, fmt.Errorf("%w: %q listed twice", ErrDuplicateNode, id)
		}
		seen[n] = true
		if id == "" {
			unnamed = append(unnamed, n)
			continue
		}
		if _, exists := g.nodes[id]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, id)
		}
		g.nodes[id] = n
	}

	for _, v := range variables {
		if _, exists := g.variables[v.Name()]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateVariable, v.Name())
		}
		g.variables[v.Name()] = v
		g.varOrder = append(g.varOrder, v.Name())
	}

	for _, n := range unnamed {
		id := NewUniqueID()
		n.SetUniqueID(id)
		g.nodes[id] = n
	}
	for _, n := range nodes {
		if n != nil {
			g.order = append(g.order, n.UniqueID())
		}
	}

	for _, n := range g.nodes {
		n.base().graph = g
	}
	return g, nil
}

// Entry returns the entry node.
func (g *Graph) Entry() *EntryNode {
	return g.entry
}

// Node returns the node with the given unique id.
func (g *Graph) Node(uniqueID string) (Node, error) {
	n, ok := g.nodes[uniqueID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, uniqueID)
	}
	return n, nil
}

// Nodes returns the nodes in insertion order, entry node first unless the
// caller listed it elsewhere.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Variable returns the variable with the given name.
func (g *Graph) Variable(name string) (*GraphVariable, error) {
	v, ok := g.variables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVariableNotFound, name)
	}
	return v, nil
}

// Variables returns the variables in declaration order.
func (g *Graph) Variables() []*GraphVariable {
	out := make([]*GraphVariable, 0, len(g.varOrder))
	for _, name := range g.varOrder {
		out = append(out, g.variables[name])
	}
	return out
}

// NodeIDs returns the sorted unique ids of the graph's nodes.
func (g *Graph) NodeIDs() []string {
	ids := append([]string(nil), g.order...)
	sort.Strings(ids)
	return ids
}

// Execute runs the graph from its entry node. The call returns once the
// whole flow chain reachable from the entry node has run, or on the first
// error.
func (g *Graph) Execute(ctx context.Context) error {
	if g.opts.logger != nil {
		ctx = ctxlog.WithLogger(ctx, g.opts.logger)
	}
	logger := ctxlog.FromContext(ctx)

	start := time.Now()
	logger.DebugContext(ctx, "graph execution started", "entry", g.entry.UniqueID(), "nodes", len(g.nodes))
	g.emit(ctx, Event{Type: EventGraphStart, NodeID: g.entry.UniqueID(), TypeID: g.entry.TypeID()})

	if err := g.entry.Execute(ctx); err != nil {
		logger.DebugContext(ctx, "graph execution failed", "error", err, "duration", time.Since(start))
		g.emit(ctx, Event{Type: EventGraphError, NodeID: g.entry.UniqueID(), TypeID: g.entry.TypeID(), Error: err.Error()})
		return err
	}

	logger.DebugContext(ctx, "graph execution completed", "duration", time.Since(start))
	g.emit(ctx, Event{Type: EventGraphComplete, NodeID: g.entry.UniqueID(), TypeID: g.entry.TypeID()})
	return nil
}

func (g *Graph) emit(ctx context.Context, e Event) {
	if len(g.opts.observers) == 0 {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	for _, o := range g.opts.observers {
		o.Handle(ctx, e)
	}
}
