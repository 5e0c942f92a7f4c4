// Package graph turns an ordered list of model operations into a categorized
// directed graph, simulates an operator-fusion pass over it for before/after
// visualization, and summarizes it into per-category counts.
//
// # Graph shape
//
// A Graph has two kinds of node, told apart only by how they were created:
//   - operation nodes, one per non-trivial OperationRecord
//   - value nodes, created lazily the first time an input or output
//     identifier is referenced
//
// Edges run value -> operation for inputs and operation -> value for
// outputs. Every edge endpoint exists as a node at all times; value nodes
// are created before the edge that references them.
//
// # Fusion
//
// Simulate is a label-only pass: matching operation categories become
// FusedOp, while node ids, node count and the edge list stay identical. It
// never merges, removes or reconnects nodes. A structural fusion rewrite is a
// different algorithm and does not belong here.
//
// All functions are pure: Graphs are built once and never mutated afterwards,
// so they can be shared across goroutines without locking.
package graph
