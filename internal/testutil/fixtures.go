package testutil

import (
	"testing"

	"github.com/agentstation/pinflow"
)

// HelloWorldJSON is the canonical single-graph document: Begin fires a
// Console Log node printing "Hello World!".
const HelloWorldJSON = `{
  "graphs": [
    {
      "nodes": [
        {"nodeId": "pinflow.builtin.BeginNode", "uniqueId": "begin"},
        {"nodeId": "pinflow.builtin.ConsoleLogNode", "uniqueId": "log", "arguments": {"message": "Hello World!"}}
      ],
      "connections": [
        {"fromNode": "begin", "fromPin": "exec_out", "toNode": "log", "toPin": "exec_in"}
      ]
    }
  ]
}`

// CountToTenYAML logs the loop index from 0 to 9.
const CountToTenYAML = `
graphs:
  - nodes:
      - nodeId: pinflow.builtin.BeginNode
        uniqueId: begin
      - nodeId: pinflow.builtin.ForLoopNode
        uniqueId: loop
        arguments: {start: 0, end: 10, step: 1}
      - nodeId: pinflow.builtin.IntToStringNode
        uniqueId: str
      - nodeId: pinflow.builtin.ConsoleLogNode
        uniqueId: log
    connections:
      - {fromNode: begin, fromPin: exec_out, toNode: loop, toPin: exec_in}
      - {fromNode: loop, fromPin: exec_body, toNode: log, toPin: exec_in}
      - {fromNode: loop, fromPin: index, toNode: str, toPin: value}
      - {fromNode: str, fromPin: result, toNode: log, toPin: message}
`

// CounterVariableYAML adds 1 to an int variable three times and logs it
// after the loop.
const CounterVariableYAML = `
graphs:
  - variables:
      - {name: counter, type: int, value: 0}
    nodes:
      - {nodeId: pinflow.builtin.BeginNode, uniqueId: begin}
      - {nodeId: pinflow.builtin.ForLoopNode, uniqueId: loop, arguments: {start: 0, end: 3, step: 1}}
      - {nodeId: pinflow.builtin.ReadVariableNode, uniqueId: read, arguments: {variable: counter}}
      - {nodeId: pinflow.builtin.AddNode, uniqueId: add, arguments: {b: 1}}
      - {nodeId: pinflow.builtin.WriteVariableNode, uniqueId: write, arguments: {variable: counter}}
      - {nodeId: pinflow.builtin.ReadVariableNode, uniqueId: final, arguments: {variable: counter}}
      - {nodeId: pinflow.builtin.IntToStringNode, uniqueId: str}
      - {nodeId: pinflow.builtin.ConsoleLogNode, uniqueId: log}
    connections:
      - {fromNode: begin, fromPin: exec_out, toNode: loop, toPin: exec_in}
      - {fromNode: loop, fromPin: exec_body, toNode: write, toPin: exec_in}
      - {fromNode: read, fromPin: value, toNode: add, toPin: a}
      - {fromNode: add, fromPin: result, toNode: write, toPin: value}
      - {fromNode: loop, fromPin: exec_out, toNode: log, toPin: exec_in}
      - {fromNode: final, fromPin: value, toNode: str, toPin: value}
      - {fromNode: str, fromPin: result, toNode: log, toPin: message}
`

// MustConnect wires fromPin of from to toPin of to, failing the test on
// error.
func MustConnect(t testing.TB, from pinflow.Node, fromPin string, to pinflow.Node, toPin string) {
	t.Helper()

	src, err := pinflow.FindPin(from, fromPin, true)
	if err != nil {
		t.Fatalf("source pin: %v", err)
	}
	dst, err := pinflow.FindPin(to, toPin, false)
	if err != nil {
		t.Fatalf("destination pin: %v", err)
	}
	if err := pinflow.Connect(src, dst); err != nil {
		t.Fatalf("connect %s.%s -> %s.%s: %v", from.UniqueID(), fromPin, to.UniqueID(), toPin, err)
	}
}

// MustGraph builds a graph, failing the test on error.
func MustGraph(t testing.TB, entry *pinflow.EntryNode, nodes []pinflow.Node, variables []*pinflow.GraphVariable, opts ...pinflow.GraphOption) *pinflow.Graph {
	t.Helper()

	g, err := pinflow.NewGraph(entry, nodes, variables, opts...)
	if err != nil {
		t.Fatalf("new graph: %v", err)
	}
	return g
}
