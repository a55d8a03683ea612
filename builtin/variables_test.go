package builtin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/builtin"
	"github.com/agentstation/pinflow/internal/testutil"
)

func TestCounterVariable(t *testing.T) {
	out, err := runDocument(t, context.Background(), testutil.CounterVariableYAML)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestWriteVariableTypeMismatch(t *testing.T) {
	const doc = `
graphs:
  - variables: [{name: n, type: int, value: 0}]
    nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: begin}
      - {nodeId: pinflow.builtin.WriteVariableNode, uniqueId: write, arguments: {variable: n, value: lots}}
    connections:
      - {fromNode: begin, fromPin: exec_out, toNode: write, toPin: exec_in}
`
	_, err := runDocument(t, context.Background(), doc)
	require.ErrorIs(t, err, pinflow.ErrTypeMismatch)

	var ne *pinflow.NodeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "write", ne.NodeID)
}

func TestReadUnknownVariable(t *testing.T) {
	const doc = `
graphs:
  - nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: begin}
      - {nodeId: pinflow.builtin.ReadVariableNode, uniqueId: read, arguments: {variable: ghost}}
      - {nodeId: pinflow.builtin.ConsoleLogNode, uniqueId: log}
    connections:
      - {fromNode: begin, fromPin: exec_out, toNode: log, toPin: exec_in}
      - {fromNode: read, fromPin: value, toNode: log, toPin: message}
`
	_, err := runDocument(t, context.Background(), doc)
	assert.ErrorIs(t, err, pinflow.ErrVariableNotFound)
}

func TestReadVariableOutsideGraph(t *testing.T) {
	_, err := eval(t, builtin.TypeReadVariable, map[string]any{"variable": "x"})
	require.ErrorIs(t, err, pinflow.ErrVariableNotFound)
}

func TestReroute(t *testing.T) {
	got, err := eval(t, builtin.TypeReroute, map[string]any{"in": "through"})
	require.NoError(t, err)
	assert.Equal(t, "through", got)

	reg := newRegistry(t)
	src, err := reg.Create(builtin.TypeConstantInt)
	require.NoError(t, err)
	reroute, err := reg.Create(builtin.TypeReroute)
	require.NoError(t, err)

	srcPin, err := src.Output("result")
	require.NoError(t, err)
	in, err := reroute.Input("in")
	require.NoError(t, err)
	require.NoError(t, pinflow.Connect(srcPin, in))

	outPin, err := reroute.Output("out")
	require.NoError(t, err)
	assert.Equal(t, pinflow.TypeInt, outPin.(*pinflow.OutputArgumentPin).ResolvedType())
}
