package loader_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/builtin"
	"github.com/agentstation/pinflow/definition"
	"github.com/agentstation/pinflow/internal/ctxlog"
	"github.com/agentstation/pinflow/internal/testutil"
	"github.com/agentstation/pinflow/loader"
)

func newLoader(t *testing.T, opts ...loader.Option) *loader.Loader {
	t.Helper()

	reg, err := builtin.NewRegistry()
	require.NoError(t, err)
	return loader.New(reg, append([]loader.Option{loader.WithSchemaValidation(true)}, opts...)...)
}

// run executes g and returns what its Console Log nodes printed.
func run(t *testing.T, g *pinflow.Graph) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, g.Execute(builtin.WithConsoleWriter(context.Background(), &buf)))
	return buf.String()
}

func TestLoadHelloWorld(t *testing.T) {
	graphs, err := newLoader(t).LoadBytes(context.Background(), []byte(testutil.HelloWorldJSON))
	require.NoError(t, err)
	require.Len(t, graphs, 1)

	g := graphs[0]
	assert.Equal(t, "begin", g.Entry().UniqueID())
	assert.Equal(t, []string{"begin", "log"}, g.NodeIDs())
	assert.Equal(t, "Hello World!\n", run(t, g))
}

func TestLoadCountToTen(t *testing.T) {
	graphs, err := newLoader(t).LoadBytes(context.Background(), []byte(testutil.CountToTenYAML))
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n3\n4\n5\n6\n7\n8\n9\n", run(t, graphs[0]))
}

func TestLoadVariables(t *testing.T) {
	graphs, err := newLoader(t).LoadBytes(context.Background(), []byte(testutil.CounterVariableYAML))
	require.NoError(t, err)

	g := graphs[0]
	assert.Equal(t, "3\n", run(t, g))

	v, err := g.Variable("counter")
	require.NoError(t, err)
	assert.Equal(t, pinflow.TypeInt, v.Type())
	assert.Equal(t, 3, v.Value())
	assert.Equal(t, 0, v.Default())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.json")
	require.NoError(t, os.WriteFile(path, []byte(testutil.HelloWorldJSON), 0o600))

	graphs, err := newLoader(t).LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Hello World!\n", run(t, graphs[0]))

	_, err = newLoader(t).LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadReversedConnection(t *testing.T) {
	doc := `
graphs:
  - nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: begin}
      - {nodeId: pinflow.builtin.ConsoleLogNode, uniqueId: log, arguments: {message: reversed}}
    connections:
      - {fromNode: log, fromPin: exec_in, toNode: begin, toPin: exec_out}
`
	graphs, err := newLoader(t).LoadBytes(context.Background(), []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "reversed\n", run(t, graphs[0]))
}

func TestLoadWriteVariableOutput(t *testing.T) {
	doc := `
graphs:
  - variables:
      - {name: name, type: str, value: ""}
    nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: begin}
      - {nodeId: pinflow.builtin.WriteVariableNode, uniqueId: write, arguments: {variable: name, value: pinflow}}
      - {nodeId: pinflow.builtin.ConsoleLogNode, uniqueId: log}
    connections:
      - {fromNode: begin, fromPin: exec_out, toNode: write, toPin: exec_in}
      - {fromNode: write, fromPin: exec_out, toNode: log, toPin: exec_in}
      - {fromNode: write, fromPin: value, toNode: log, toPin: message}
`
	graphs, err := newLoader(t).LoadBytes(context.Background(), []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "pinflow\n", run(t, graphs[0]))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name: "missing entry",
			doc: `graphs:
  - nodes: [{nodeId: pinflow.builtin.ConsoleLogNode, uniqueId: log}]`,
			wantErr: pinflow.ErrMissingEntryNode,
		},
		{
			name: "ambiguous entry",
			doc: `graphs:
  - nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: a}
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: b}`,
			wantErr: pinflow.ErrAmbiguousEntryNode,
		},
		{
			name: "unknown node type",
			doc: `graphs:
  - nodes: [{nodeId: pinflow.builtin.BeginNode, uniqueId: begin}, {nodeId: nope, uniqueId: x}]`,
			wantErr: pinflow.ErrUnknownNodeType,
		},
		{
			name: "unknown variable type",
			doc: `graphs:
  - variables: [{name: v, type: complex, value: 1}]
    nodes: [{nodeId: pinflow.builtin.BeginNode, uniqueId: begin}]`,
			wantErr: pinflow.ErrUnknownVariableType,
		},
		{
			name: "variable value mismatch",
			doc: `graphs:
  - variables: [{name: v, type: int, value: many}]
    nodes: [{nodeId: pinflow.builtin.BeginNode, uniqueId: begin}]`,
			wantErr: pinflow.ErrTypeMismatch,
		},
		{
			name: "unknown pin",
			doc: `graphs:
  - nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: begin}
      - {nodeId: pinflow.builtin.ConsoleLogNode, uniqueId: log}
    connections: [{fromNode: begin, fromPin: exec_out, toNode: log, toPin: nowhere}]`,
			wantErr: pinflow.ErrPinLookup,
		},
		{
			name: "unknown node",
			doc: `graphs:
  - nodes: [{nodeId: pinflow.builtin.BeginNode, uniqueId: begin}]
    connections: [{fromNode: begin, fromPin: exec_out, toNode: ghost, toPin: exec_in}]`,
			wantErr: pinflow.ErrPinLookup,
		},
		{
			name: "flow to argument",
			doc: `graphs:
  - nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: begin}
      - {nodeId: pinflow.builtin.ConsoleLogNode, uniqueId: log}
    connections: [{fromNode: begin, fromPin: exec_out, toNode: log, toPin: message}]`,
			wantErr: pinflow.ErrPinRoleMismatch,
		},
		{
			name: "argument on a flow pin",
			doc: `graphs:
  - nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: begin}
      - {nodeId: pinflow.builtin.ConsoleLogNode, uniqueId: log, arguments: {exec_in: 1}}`,
			wantErr: pinflow.ErrPinLookup,
		},
		{
			name: "argument type mismatch",
			doc: `graphs:
  - nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: begin}
      - {nodeId: pinflow.builtin.ForLoopNode, uniqueId: loop, arguments: {end: ten}}`,
			wantErr: pinflow.ErrTypeMismatch,
		},
		{
			name: "schema violation",
			doc: `graphs:
  - nodes: [{nodeId: pinflow.builtin.BeginNode}]`,
			wantErr: definition.ErrInvalidDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graphs, err := newLoader(t).LoadBytes(context.Background(), []byte(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, graphs)
		})
	}
}

func TestLoadIsAllOrNothing(t *testing.T) {
	doc := `
graphs:
  - nodes: [{nodeId: pinflow.builtin.BeginNode, uniqueId: begin}]
  - nodes: [{nodeId: pinflow.builtin.BeginNode, uniqueId: begin}, {nodeId: nope, uniqueId: x}]
`
	graphs, err := newLoader(t).LoadBytes(context.Background(), []byte(doc))
	require.ErrorIs(t, err, pinflow.ErrUnknownNodeType)
	assert.ErrorContains(t, err, "graph 1")
	assert.Nil(t, graphs)
}

func TestLoadStructuralValidationWithoutSchema(t *testing.T) {
	reg, err := builtin.NewRegistry()
	require.NoError(t, err)
	l := loader.New(reg)

	doc := &definition.Document{Graphs: []definition.GraphDefinition{{
		Nodes: []definition.NodeDefinition{{NodeID: builtin.TypeBegin}},
	}}}
	_, err = l.Load(context.Background(), doc)
	assert.ErrorIs(t, err, definition.ErrInvalidDocument)

	_, err = l.Load(context.Background(), nil)
	assert.ErrorIs(t, err, definition.ErrInvalidDocument)

	graphs, err := l.Load(context.Background(), &definition.Document{})
	assert.ErrorIs(t, err, definition.ErrInvalidDocument)
	assert.Nil(t, graphs)

	_, err = l.LoadBytes(context.Background(), []byte(`{"graphs": []}`))
	assert.ErrorIs(t, err, definition.ErrInvalidDocument)
}

func TestLoadWarnsOnPullCycle(t *testing.T) {
	doc := `
graphs:
  - nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: begin}
      - {nodeId: pinflow.builtin.RerouteNode, uniqueId: a}
      - {nodeId: pinflow.builtin.RerouteNode, uniqueId: b}
    connections:
      - {fromNode: a, fromPin: out, toNode: b, toPin: in}
      - {fromNode: b, fromPin: out, toNode: a, toPin: in}
`
	capture, logger := testutil.NewLogCapture()
	graphs, err := newLoader(t, loader.WithLogger(logger)).LoadBytes(context.Background(), []byte(doc))
	require.NoError(t, err, "cycles are reported, not rejected")
	require.Len(t, graphs, 1)

	const msg = "pull cycle among pure nodes; reading its values will not terminate"
	require.True(t, capture.HasEntry(slog.LevelWarn, msg))
	for _, e := range capture.Entries() {
		if e.Message == msg {
			assert.Equal(t, []string{"a", "b"}, e.Attrs["nodes"])
		}
	}
}

func TestLoadUsesContextLogger(t *testing.T) {
	capture, logger := testutil.NewLogCapture()
	ctx := ctxlog.WithLogger(context.Background(), logger)

	_, err := newLoader(t).LoadBytes(ctx, []byte(testutil.HelloWorldJSON))
	require.NoError(t, err)
	assert.True(t, capture.HasEntry(slog.LevelDebug, "graph loaded"))
}

func TestLoadGraphOptions(t *testing.T) {
	rec := pinflow.NewRecorder(pinflow.OfType(pinflow.EventGraphStart, pinflow.EventGraphComplete))
	graphs, err := newLoader(t, loader.WithGraphOptions(pinflow.WithObserver(rec))).
		LoadBytes(context.Background(), []byte(testutil.HelloWorldJSON))
	require.NoError(t, err)

	run(t, graphs[0])
	testutil.AssertEventTypes(t, rec, pinflow.EventGraphStart, pinflow.EventGraphComplete)
}

func TestLoadRoundTrip(t *testing.T) {
	reg, err := builtin.NewRegistry()
	require.NoError(t, err)

	create := func(typeID, uniqueID string) pinflow.Node {
		n, err := reg.Create(typeID)
		require.NoError(t, err)
		n.SetUniqueID(uniqueID)
		return n
	}
	setArg := func(n pinflow.Node, id string, v any) {
		p, err := pinflow.FindPin(n, id, false)
		require.NoError(t, err)
		require.NoError(t, p.(*pinflow.InputArgumentPin).Set(v))
	}

	begin, ok := create(builtin.TypeBegin, "begin").(*pinflow.EntryNode)
	require.True(t, ok)
	loop := create(builtin.TypeForLoop, "loop")
	text := create(builtin.TypeIntToString, "text")
	body := create(builtin.TypeConsoleLog, "body")
	done := create(builtin.TypeConsoleLog, "done")
	setArg(loop, "end", 3)
	setArg(done, "message", "done")

	testutil.MustConnect(t, begin, pinflow.ExecOut, loop, pinflow.ExecIn)
	testutil.MustConnect(t, loop, "exec_body", body, pinflow.ExecIn)
	testutil.MustConnect(t, loop, "index", text, "value")
	testutil.MustConnect(t, text, "result", body, "message")
	testutil.MustConnect(t, loop, pinflow.ExecOut, done, pinflow.ExecIn)

	rec := pinflow.NewRecorder(pinflow.OfType(pinflow.EventFlowEnter, pinflow.EventNodeEvaluate))
	g := testutil.MustGraph(t, begin, []pinflow.Node{loop, text, body, done}, nil, pinflow.WithObserver(rec))
	assert.Equal(t, "0\n1\n2\ndone\n", run(t, g))
	want := testutil.EventNodes(rec.Events())

	data, err := definition.NewParser().MarshalJSON(definition.FromGraphs(g))
	require.NoError(t, err)

	rec.Reset()
	graphs, err := newLoader(t, loader.WithGraphOptions(pinflow.WithObserver(rec))).LoadBytes(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, graphs, 1)

	assert.Equal(t, "0\n1\n2\ndone\n", run(t, graphs[0]))
	assert.Equal(t, want, testutil.EventNodes(rec.Events()))
}
