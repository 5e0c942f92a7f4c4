package graph

import (
	"github.com/samber/lo"

	"github.com/roach88/xplain/internal/canon"
)

// DefaultFusedCategories are the categories Simulate relabels when called
// without an explicit set.
var DefaultFusedCategories = []string{canon.CategoryConv, canon.CategoryMatMul}

// Simulate returns a copy of g in which every node whose category is in
// fused is relabeled to canon.CategoryFused. With no categories given,
// DefaultFusedCategories is used.
//
// Node ids, raw labels, node count and the edge list are unchanged, and g is
// left untouched so it stays usable as the "before" side of a comparison.
func Simulate(g *Graph, fused ...string) *Graph {
	if len(fused) == 0 {
		fused = DefaultFusedCategories
	}
	set := lo.SliceToMap(fused, func(c string) (string, bool) { return c, true })

	return g.mapNodes(func(n Node) Node {
		if set[n.Category] {
			n.Category = canon.CategoryFused
		}
		return n
	})
}
