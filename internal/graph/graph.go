package graph

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind records how a node entered the graph.
type Kind int

const (
	// KindValue nodes stand for tensors/values referenced by operations.
	KindValue Kind = iota
	// KindOperation nodes stand for model operations.
	KindOperation
)

func (k Kind) String() string {
	if k == KindOperation {
		return "operation"
	}
	return "value"
}

// Node is a graph vertex.
type Node struct {
	ID       string
	RawLabel string
	Category string
	Kind     Kind
}

// Edge is a directed edge between two node ids.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is an insertion-ordered node set plus an edge list. Parallel edges
// are kept.
type Graph struct {
	nodes *orderedmap.OrderedMap[string, Node]
	edges []Edge
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{nodes: orderedmap.New[string, Node]()}
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return g.nodes.Len()
}

// EdgeCount returns the number of edges, counting parallel edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// IsEmpty reports whether the graph has neither nodes nor edges. Callers use
// it to render a "nothing to show" state rather than an error.
func (g *Graph) IsEmpty() bool {
	return g.NodeCount() == 0 && g.EdgeCount() == 0
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	return g.nodes.Get(id)
}

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes.Get(id)
	return ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, g.nodes.Len())
	for pair := g.nodes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// setNode inserts n, or replaces the node with the same id in place.
func (g *Graph) setNode(n Node) {
	g.nodes.Set(n.ID, n)
}

// addEdge appends an edge. Both endpoints must already be nodes.
func (g *Graph) addEdge(source, target string) {
	if !g.HasNode(source) || !g.HasNode(target) {
		panic(fmt.Sprintf("graph: dangling edge %q -> %q", source, target))
	}
	g.edges = append(g.edges, Edge{Source: source, Target: target})
}

// mapNodes returns a new Graph with f applied to every node and the same
// edges. f must not change node ids.
func (g *Graph) mapNodes(f func(Node) Node) *Graph {
	out := New()
	for pair := g.nodes.Oldest(); pair != nil; pair = pair.Next() {
		n := f(pair.Value)
		if n.ID != pair.Key {
			panic(fmt.Sprintf("graph: node id changed from %q to %q", pair.Key, n.ID))
		}
		out.setNode(n)
	}
	out.edges = g.Edges()
	return out
}
