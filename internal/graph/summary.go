package graph

import (
	"slices"

	"github.com/samber/lo"

	"github.com/roach88/xplain/internal/canon"
)

// CategoryCounts maps a category to its number of nodes. Missing categories
// count as zero.
type CategoryCounts map[string]int

// Get returns the count for category, 0 if absent.
func (c CategoryCounts) Get(category string) int {
	return c[category]
}

// Total returns the sum of all counts.
func (c CategoryCounts) Total() int {
	return lo.Sum(lo.Values(c))
}

// Categories returns the categories present, sorted.
func (c CategoryCounts) Categories() []string {
	keys := lo.Keys(c)
	slices.Sort(keys)
	return keys
}

// Counts tallies node categories. The result is freshly allocated on every
// call.
func Counts(g *Graph) CategoryCounts {
	counts := make(CategoryCounts)
	for pair := g.nodes.Oldest(); pair != nil; pair = pair.Next() {
		counts[pair.Value.Category]++
	}
	return counts
}

// HeavyOps returns the number of Conv and MatMul/Gemm nodes in counts.
func HeavyOps(counts CategoryCounts) int {
	return counts.Get(canon.CategoryConv) + counts.Get(canon.CategoryMatMul)
}

// FusionReduction returns the percentage of heavy operations (Conv and
// MatMul/Gemm before fusion) that did not end up as FusedOp after it:
//
//	(1 - fused_after / heavy_before) * 100
//
// ok is false when there were no heavy operations before, in which case the
// metric is undefined.
func FusionReduction(before, after CategoryCounts) (reduction float64, ok bool) {
	heavy := HeavyOps(before)
	if heavy == 0 {
		return 0, false
	}
	fused := after.Get(canon.CategoryFused)
	// Same value as (1 - fused/heavy) * 100, computed with a single rounding.
	return float64(heavy-fused) * 100 / float64(heavy), true
}

// CompareRow is one category's before/after count.
type CompareRow struct {
	Category string `json:"category"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
}

// Comparison summarizes a fusion simulation.
type Comparison struct {
	HeavyBefore int            `json:"heavy_before"`
	FusedAfter  int            `json:"fused_after"`
	Reduction   *float64       `json:"reduction,omitempty"`
	Before      CategoryCounts `json:"before"`
	After       CategoryCounts `json:"after"`
	Rows        []CompareRow   `json:"rows"`
}

// Compare builds the before/after comparison of two count tables. Rows cover
// the union of categories, sorted, with missing counts as zero.
func Compare(before, after CategoryCounts) Comparison {
	cmp := Comparison{
		HeavyBefore: HeavyOps(before),
		FusedAfter:  after.Get(canon.CategoryFused),
		Before:      before,
		After:       after,
	}
	if r, ok := FusionReduction(before, after); ok {
		cmp.Reduction = &r
	}

	categories := lo.Union(before.Categories(), after.Categories())
	slices.Sort(categories)
	for _, cat := range categories {
		cmp.Rows = append(cmp.Rows, CompareRow{
			Category: cat,
			Before:   before.Get(cat),
			After:    after.Get(cat),
		})
	}
	return cmp
}
