package builtin_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/builtin"
	"github.com/agentstation/pinflow/loader"
)

func newRegistry(t *testing.T) *pinflow.Registry {
	t.Helper()

	reg, err := builtin.NewRegistry()
	require.NoError(t, err)
	return reg
}

func create(t *testing.T, typeID string) pinflow.Node {
	t.Helper()

	n, err := newRegistry(t).Create(typeID)
	require.NoError(t, err)
	return n
}

func setArgs(t *testing.T, n pinflow.Node, args map[string]any) {
	t.Helper()

	for id, v := range args {
		p, err := n.Input(id)
		require.NoError(t, err)
		in, ok := p.(*pinflow.InputArgumentPin)
		require.True(t, ok, "pin %q is not an input argument", id)
		require.NoError(t, in.Set(v))
	}
}

func read(t *testing.T, n pinflow.Node, id string) (any, error) {
	t.Helper()

	p, err := n.Output(id)
	require.NoError(t, err)
	out, ok := p.(*pinflow.OutputArgumentPin)
	require.True(t, ok, "pin %q is not an output argument", id)
	return out.Value(context.Background())
}

// eval creates a pure node, presets its arguments and reads its result pin.
func eval(t *testing.T, typeID string, args map[string]any) (any, error) {
	t.Helper()

	n := create(t, typeID)
	setArgs(t, n, args)
	return read(t, n, "result")
}

// runDocument loads a single-graph document and returns what it printed.
func runDocument(t *testing.T, ctx context.Context, doc string) (string, error) {
	t.Helper()

	graphs, err := loader.New(newRegistry(t), loader.WithSchemaValidation(true)).LoadBytes(ctx, []byte(doc))
	require.NoError(t, err)
	require.Len(t, graphs, 1)

	var buf bytes.Buffer
	err = graphs[0].Execute(builtin.WithConsoleWriter(ctx, &buf))
	return buf.String(), err
}
