package definition

import (
	"github.com/agentstation/pinflow"
)

// FromGraph describes a live graph: node instances with the local values of
// their unconnected input argument pins, variables with their initial
// values, and every flow and argument connection.
func FromGraph(g *pinflow.Graph) GraphDefinition {
	var gd GraphDefinition

	for _, n := range g.Nodes() {
		nd := NodeDefinition{NodeID: n.TypeID(), UniqueID: n.UniqueID()}
		for _, p := range n.Inputs() {
			in, ok := p.(*pinflow.InputArgumentPin)
			if !ok || in.Source() != nil || in.Local() == nil {
				continue
			}
			if nd.Arguments == nil {
				nd.Arguments = make(map[string]any)
			}
			nd.Arguments[in.ID()] = in.Local()
		}
		gd.Nodes = append(gd.Nodes, nd)
	}

	for _, v := range g.Variables() {
		gd.Variables = append(gd.Variables, VariableDefinition{
			Name:  v.Name(),
			Type:  v.Type().String(),
			Value: v.Default(),
		})
	}

	for _, n := range g.Nodes() {
		for _, p := range n.Outputs() {
			out, ok := p.(*pinflow.OutputFlowPin)
			if !ok || out.Destination() == nil || out.Destination().Node() == nil {
				continue
			}
			dst := out.Destination()
			gd.Connections = append(gd.Connections, Connection{
				FromNode: n.UniqueID(),
				FromPin:  out.ID(),
				ToNode:   dst.Node().UniqueID(),
				ToPin:    dst.ID(),
			})
		}
		for _, p := range n.Inputs() {
			in, ok := p.(*pinflow.InputArgumentPin)
			if !ok || in.Source() == nil || in.Source().Node() == nil {
				continue
			}
			src := in.Source()
			gd.Connections = append(gd.Connections, Connection{
				FromNode: src.Node().UniqueID(),
				FromPin:  src.ID(),
				ToNode:   n.UniqueID(),
				ToPin:    in.ID(),
			})
		}
	}
	return gd
}

// FromGraphs describes a batch of live graphs as one document.
func FromGraphs(graphs ...*pinflow.Graph) *Document {
	doc := &Document{}
	for _, g := range graphs {
		doc.Graphs = append(doc.Graphs, FromGraph(g))
	}
	return doc
}
