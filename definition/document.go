// Package definition provides the graph description document consumed by the
// loader, its parser, and schema validation.
package definition

import (
	"errors"
	"fmt"
)

// ErrInvalidDocument is returned when a description is structurally invalid.
var ErrInvalidDocument = errors.New("definition: invalid document")

// Document is a batch of graph descriptions.
type Document struct {
	Graphs []GraphDefinition `json:"graphs" yaml:"graphs"`
}

// GraphDefinition describes one graph.
type GraphDefinition struct {
	Nodes       []NodeDefinition     `json:"nodes" yaml:"nodes"`
	Variables   []VariableDefinition `json:"variables,omitempty" yaml:"variables,omitempty"`
	Connections []Connection         `json:"connections" yaml:"connections"`
}

// NodeDefinition is one node instance.
type NodeDefinition struct {
	// NodeID is the registry type id.
	NodeID string `json:"nodeId" yaml:"nodeId"`

	// UniqueID identifies the instance within its graph.
	UniqueID string `json:"uniqueId" yaml:"uniqueId"`

	// Arguments preset input argument pins by pin id.
	Arguments map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// VariableDefinition declares a graph variable.
type VariableDefinition struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// Connection wires two pins. Either endpoint may name the output side.
type Connection struct {
	FromNode string `json:"fromNode" yaml:"fromNode"`
	FromPin  string `json:"fromPin" yaml:"fromPin"`
	ToNode   string `json:"toNode" yaml:"toNode"`
	ToPin    string `json:"toPin" yaml:"toPin"`
}

// String renders the connection as from.pin -> to.pin.
func (c Connection) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", c.FromNode, c.FromPin, c.ToNode, c.ToPin)
}

// Validate checks the document's required fields.
func (d *Document) Validate() error {
	if d == nil || len(d.Graphs) == 0 {
		return fmt.Errorf("%w: at least one graph is required", ErrInvalidDocument)
	}
	for i := range d.Graphs {
		if err := d.Graphs[i].Validate(); err != nil {
			return fmt.Errorf("graph %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks the graph's required fields and id uniqueness. References
// between nodes and pins are resolved by the loader.
func (gd *GraphDefinition) Validate() error {
	if len(gd.Nodes) == 0 {
		return fmt.Errorf("%w: at least one node is required", ErrInvalidDocument)
	}

	ids := make(map[string]bool, len(gd.Nodes))
	for i, n := range gd.Nodes {
		if n.NodeID == "" {
			return fmt.Errorf("%w: node %d: nodeId is required", ErrInvalidDocument, i)
		}
		if n.UniqueID == "" {
			return fmt.Errorf("%w: node %d: uniqueId is required", ErrInvalidDocument, i)
		}
		if ids[n.UniqueID] {
			return fmt.Errorf("%w: node %d: duplicate uniqueId %q", ErrInvalidDocument, i, n.UniqueID)
		}
		ids[n.UniqueID] = true
	}

	names := make(map[string]bool, len(gd.Variables))
	for i, v := range gd.Variables {
		if v.Name == "" {
			return fmt.Errorf("%w: variable %d: name is required", ErrInvalidDocument, i)
		}
		if v.Type == "" {
			return fmt.Errorf("%w: variable %q: type is required", ErrInvalidDocument, v.Name)
		}
		if names[v.Name] {
			return fmt.Errorf("%w: variable %d: duplicate name %q", ErrInvalidDocument, i, v.Name)
		}
		names[v.Name] = true
	}

	for i, c := range gd.Connections {
		if c.FromNode == "" || c.FromPin == "" || c.ToNode == "" || c.ToPin == "" {
			return fmt.Errorf("%w: connection %d: fromNode, fromPin, toNode and toPin are required", ErrInvalidDocument, i)
		}
	}
	return nil
}
