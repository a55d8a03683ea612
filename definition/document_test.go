package definition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentValidate(t *testing.T) {
	node := func(typeID, id string) NodeDefinition {
		return NodeDefinition{NodeID: typeID, UniqueID: id}
	}

	tests := []struct {
		name    string
		doc     *Document
		wantErr string
	}{
		{name: "nil", doc: nil, wantErr: "at least one graph"},
		{name: "no graphs", doc: &Document{}, wantErr: "at least one graph"},
		{name: "no nodes", doc: &Document{Graphs: []GraphDefinition{{}}}, wantErr: "at least one node"},
		{
			name:    "missing type",
			doc:     &Document{Graphs: []GraphDefinition{{Nodes: []NodeDefinition{node("", "a")}}}},
			wantErr: "nodeId is required",
		},
		{
			name:    "duplicate unique id",
			doc:     &Document{Graphs: []GraphDefinition{{Nodes: []NodeDefinition{node("x", "a"), node("y", "a")}}}},
			wantErr: `duplicate uniqueId "a"`,
		},
		{
			name: "duplicate variable",
			doc: &Document{Graphs: []GraphDefinition{{
				Nodes:     []NodeDefinition{node("x", "a")},
				Variables: []VariableDefinition{{Name: "v", Type: "int"}, {Name: "v", Type: "str"}},
			}}},
			wantErr: `duplicate name "v"`,
		},
		{
			name: "untyped variable",
			doc: &Document{Graphs: []GraphDefinition{{
				Nodes:     []NodeDefinition{node("x", "a")},
				Variables: []VariableDefinition{{Name: "v"}},
			}}},
			wantErr: "type is required",
		},
		{
			name: "partial connection",
			doc: &Document{Graphs: []GraphDefinition{{
				Nodes:       []NodeDefinition{node("x", "a")},
				Connections: []Connection{{FromNode: "a", FromPin: "exec_out"}},
			}}},
			wantErr: "connection 0",
		},
		{
			name: "valid",
			doc: &Document{Graphs: []GraphDefinition{{
				Nodes:       []NodeDefinition{node("x", "a"), node("y", "b")},
				Variables:   []VariableDefinition{{Name: "v", Type: "int", Value: 1}},
				Connections: []Connection{{FromNode: "a", FromPin: "exec_out", ToNode: "b", ToPin: "exec_in"}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidDocument)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConnectionString(t *testing.T) {
	c := Connection{FromNode: "a", FromPin: "exec_out", ToNode: "b", ToPin: "exec_in"}
	assert.Equal(t, "a.exec_out -> b.exec_in", c.String())
}
