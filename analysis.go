package pinflow

import (
	"sort"
	"strings"
)

// PullCycles returns the cycles among pure function nodes connected through
// argument pins. Reading any output on such a cycle recurses without end.
// Each cycle lists unique ids in pull order, starting from its smallest id.
func PullCycles(g *Graph) [][]string {
	edges := make(map[string][]string)
	for _, id := range g.NodeIDs() {
		n := g.nodes[id]
		if !isPureFunction(n) {
			continue
		}
		seen := map[string]bool{}
		for _, p := range n.Inputs() {
			in, ok := p.(*InputArgumentPin)
			if !ok || in.Source() == nil {
				continue
			}
			src := in.Source().Node()
			if src == nil || !isPureFunction(src) || seen[src.UniqueID()] {
				continue
			}
			seen[src.UniqueID()] = true
			edges[id] = append(edges[id], src.UniqueID())
		}
		sort.Strings(edges[id])
	}

	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int)
	var stack []string
	var cycles [][]string
	found := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		state[id] = onStack
		stack = append(stack, id)
		for _, next := range edges[id] {
			switch state[next] {
			case unvisited:
				visit(next)
			case onStack:
				start := len(stack) - 1
				for stack[start] != next {
					start--
				}
				cycle := rotate(append([]string(nil), stack[start:]...))
				key := strings.Join(cycle, "\x00")
				if !found[key] {
					found[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
	}

	for _, id := range g.NodeIDs() {
		if state[id] == unvisited && len(edges[id]) > 0 {
			visit(id)
		}
	}
	return cycles
}

func isPureFunction(n Node) bool {
	fn, ok := n.(*FunctionNode)
	return ok && fn.Pure()
}

// rotate moves the smallest id to the front, keeping the order.
func rotate(ids []string) []string {
	first := 0
	for i, id := range ids {
		if id < ids[first] {
			first = i
		}
	}
	return append(ids[first:], ids[:first]...)
}
