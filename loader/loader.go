// Package loader turns graph description documents into wired, runnable
// graphs.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/definition"
	"github.com/agentstation/pinflow/internal/ctxlog"
)

// Loader builds graphs from description documents, resolving node types
// through a registry.
type Loader struct {
	registry       *pinflow.Registry
	logger         *slog.Logger
	graphOpts      []pinflow.GraphOption
	validateSchema bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics. Without it the
// logger carried by the context passed to Load is used.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithGraphOptions sets options applied to every graph built.
func WithGraphOptions(opts ...pinflow.GraphOption) Option {
	return func(l *Loader) {
		l.graphOpts = append(l.graphOpts, opts...)
	}
}

// WithSchemaValidation validates documents against definition.Schema and
// their structural rules before building anything.
func WithSchemaValidation(enabled bool) Option {
	return func(l *Loader) {
		l.validateSchema = enabled
	}
}

// New creates a loader resolving node types through registry.
func New(registry *pinflow.Registry, opts ...Option) *Loader {
	l := &Loader{registry: registry}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds one graph per description in doc, in order. Loading is
// all-or-nothing: on any failure no graph is returned.
func (l *Loader) Load(ctx context.Context, doc *definition.Document) ([]*pinflow.Graph, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", definition.ErrInvalidDocument)
	}
	if len(doc.Graphs) == 0 {
		return nil, fmt.Errorf("%w: at least one graph is required", definition.ErrInvalidDocument)
	}
	if l.validateSchema {
		if err := definition.ValidateSchema(doc); err != nil {
			return nil, err
		}
		if err := doc.Validate(); err != nil {
			return nil, err
		}
	}

	logger := l.loggerFor(ctx)
	graphs := make([]*pinflow.Graph, 0, len(doc.Graphs))
	for i := range doc.Graphs {
		g, err := l.loadGraph(ctx, &doc.Graphs[i])
		if err != nil {
			logger.DebugContext(ctx, "graph load failed", "graph", i, "error", err)
			return nil, fmt.Errorf("graph %d: %w", i, err)
		}

		for _, cycle := range pinflow.PullCycles(g) {
			logger.WarnContext(ctx, "pull cycle among pure nodes; reading its values will not terminate",
				"graph", i, "nodes", cycle)
		}
		logger.DebugContext(ctx, "graph loaded", "graph", i,
			"nodes", len(doc.Graphs[i].Nodes), "connections", len(doc.Graphs[i].Connections))
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// LoadBytes parses a JSON or YAML document and loads it.
func (l *Loader) LoadBytes(ctx context.Context, data []byte) ([]*pinflow.Graph, error) {
	doc, err := l.parser().ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, doc)
}

// LoadReader reads a document from r and loads it.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader) ([]*pinflow.Graph, error) {
	doc, err := l.parser().Parse(r)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, doc)
}

// LoadFile reads a document from a file and loads it.
func (l *Loader) LoadFile(ctx context.Context, filename string) ([]*pinflow.Graph, error) {
	doc, err := l.parser().ParseFile(filename)
	if err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}
	return l.Load(ctx, doc)
}

func (l *Loader) parser() *definition.Parser {
	return definition.NewParser(definition.WithSchema(l.validateSchema))
}

func (l *Loader) loggerFor(ctx context.Context) *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return ctxlog.FromContext(ctx)
}

func (l *Loader) loadGraph(ctx context.Context, gd *definition.GraphDefinition) (*pinflow.Graph, error) {
	nodes := make([]pinflow.Node, 0, len(gd.Nodes))
	for i, nd := range gd.Nodes {
		n, err := l.createNode(nd)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, nd.UniqueID, err)
		}
		nodes = append(nodes, n)
	}

	entry, err := l.findEntry(nodes)
	if err != nil {
		return nil, err
	}

	vars := make([]*pinflow.GraphVariable, 0, len(gd.Variables))
	for _, vd := range gd.Variables {
		t, ok := pinflow.LookupType(vd.Type)
		if !ok {
			return nil, fmt.Errorf("variable %q: %w: %q", vd.Name, pinflow.ErrUnknownVariableType, vd.Type)
		}
		v, err := pinflow.NewGraphVariable(vd.Name, t, vd.Value)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}

	g, err := pinflow.NewGraph(entry, nodes, vars, l.graphOpts...)
	if err != nil {
		return nil, err
	}

	for i, c := range gd.Connections {
		if err := connect(g, c); err != nil {
			return nil, fmt.Errorf("connection %d (%s): %w", i, c, err)
		}
	}

	ctxlog.FromContext(ctx).DebugContext(ctx, "graph wired", "entry", entry.UniqueID())
	return g, nil
}

func (l *Loader) createNode(nd definition.NodeDefinition) (pinflow.Node, error) {
	if nd.UniqueID == "" {
		return nil, fmt.Errorf("%w: uniqueId is required", definition.ErrInvalidDocument)
	}

	n, err := l.registry.Create(nd.NodeID)
	if err != nil {
		return nil, err
	}
	n.SetUniqueID(nd.UniqueID)

	keys := make([]string, 0, len(nd.Arguments))
	for k := range nd.Arguments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, pinID := range keys {
		p, err := n.Input(pinID)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", pinID, err)
		}
		in, ok := p.(*pinflow.InputArgumentPin)
		if !ok {
			return nil, fmt.Errorf("argument %q: %w: pin is %s", pinID, pinflow.ErrPinLookup, p.Kind())
		}
		if err := in.Set(nd.Arguments[pinID]); err != nil {
			return nil, fmt.Errorf("argument %q: %w", pinID, err)
		}
	}
	return n, nil
}

func (l *Loader) findEntry(nodes []pinflow.Node) (*pinflow.EntryNode, error) {
	entryType := l.registry.EntryType()
	if entryType == "" {
		return nil, fmt.Errorf("%w: registry has no entry type", pinflow.ErrMissingEntryNode)
	}

	var found []pinflow.Node
	for _, n := range nodes {
		if n.TypeID() == entryType {
			found = append(found, n)
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: no node of type %q", pinflow.ErrMissingEntryNode, entryType)
	case 1:
	default:
		ids := make([]string, 0, len(found))
		for _, n := range found {
			ids = append(ids, n.UniqueID())
		}
		return nil, fmt.Errorf("%w: %v", pinflow.ErrAmbiguousEntryNode, ids)
	}

	entry, ok := found[0].(*pinflow.EntryNode)
	if !ok {
		return nil, fmt.Errorf("%w: type %q does not build an entry node", pinflow.ErrMissingEntryNode, entryType)
	}
	return entry, nil
}

// connect resolves both endpoints regardless of which one the description
// labels as the source.
func connect(g *pinflow.Graph, c definition.Connection) error {
	from, err := g.Node(c.FromNode)
	if err != nil {
		return fmt.Errorf("%w: %w", pinflow.ErrPinLookup, err)
	}
	to, err := g.Node(c.ToNode)
	if err != nil {
		return fmt.Errorf("%w: %w", pinflow.ErrPinLookup, err)
	}

	fromPin, err := pinflow.FindPin(from, c.FromPin, true)
	if err != nil {
		return err
	}
	toPin, err := pinflow.FindPin(to, c.ToPin, false)
	if err != nil {
		return err
	}
	return pinflow.Connect(fromPin, toPin)
}
