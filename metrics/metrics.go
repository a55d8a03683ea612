// Package metrics aggregates execution events into per-node counters and
// graph run timings.
package metrics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agentstation/pinflow"
)

// NodeStats counts the activity of one node instance.
type NodeStats struct {
	NodeID string `json:"nodeId" yaml:"nodeId"`
	TypeID string `json:"typeId" yaml:"typeId"`

	// Flows counts how many times an input flow pin of the node fired.
	Flows int `json:"flows" yaml:"flows"`

	// Evaluations counts function body runs, including every pull of a
	// pure node.
	Evaluations int `json:"evaluations" yaml:"evaluations"`
}

// Snapshot is a point-in-time copy of a Collector.
type Snapshot struct {
	Runs          int           `json:"runs" yaml:"runs"`
	Failures      int           `json:"failures" yaml:"failures"`
	TotalDuration time.Duration `json:"totalDuration" yaml:"totalDuration"`
	LastDuration  time.Duration `json:"lastDuration" yaml:"lastDuration"`
	Nodes         []NodeStats   `json:"nodes" yaml:"nodes"`
}

// AvgDuration returns the mean duration of finished runs.
func (s Snapshot) AvgDuration() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Runs)
}

// Node returns the counters of nodeID.
func (s Snapshot) Node(nodeID string) (NodeStats, bool) {
	for _, n := range s.Nodes {
		if n.NodeID == nodeID {
			return n, true
		}
	}
	return NodeStats{}, false
}

// Collector is a pinflow.Observer. One collector may observe several graphs
// as long as their runs do not overlap.
type Collector struct {
	mu       sync.Mutex
	nodes    map[string]*NodeStats
	runs     int
	failures int
	started  time.Time
	total    time.Duration
	last     time.Duration
}

// New creates an empty collector.
func New() *Collector {
	return &Collector{nodes: make(map[string]*NodeStats)}
}

// Handle updates the counters from e.
func (c *Collector) Handle(_ context.Context, e pinflow.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e.Type {
	case pinflow.EventGraphStart:
		c.started = e.Timestamp
	case pinflow.EventFlowEnter:
		c.node(e).Flows++
	case pinflow.EventNodeEvaluate:
		c.node(e).Evaluations++
	case pinflow.EventGraphComplete, pinflow.EventGraphError:
		c.runs++
		if e.Type == pinflow.EventGraphError {
			c.failures++
		}
		if !c.started.IsZero() {
			c.last = e.Timestamp.Sub(c.started)
			c.total += c.last
			c.started = time.Time{}
		}
	}
}

func (c *Collector) node(e pinflow.Event) *NodeStats {
	n, ok := c.nodes[e.NodeID]
	if !ok {
		n = &NodeStats{NodeID: e.NodeID, TypeID: e.TypeID}
		c.nodes[e.NodeID] = n
	}
	return n
}

// Snapshot copies the counters, nodes sorted by unique id.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Runs:          c.runs,
		Failures:      c.failures,
		TotalDuration: c.total,
		LastDuration:  c.last,
		Nodes:         make([]NodeStats, 0, len(c.nodes)),
	}
	for _, n := range c.nodes {
		s.Nodes = append(s.Nodes, *n)
	}
	sort.Slice(s.Nodes, func(i, j int) bool { return s.Nodes[i].NodeID < s.Nodes[j].NodeID })
	return s
}

// Reset drops every counter.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nodes = make(map[string]*NodeStats)
	c.runs, c.failures = 0, 0
	c.started = time.Time{}
	c.total, c.last = 0, 0
}
