// Package canon maps raw operator identifiers to a small, closed set of
// semantic categories.
//
// A Canonicalizer is immutable once constructed and safe for concurrent use.
// Category assignment follows three rules, in order:
//  1. exact match in the category table
//  2. framework-qualified convolution prefixes (e.g. "onnx::Conv") map to Conv
//  3. anything else is its own category
package canon

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Well-known categories.
const (
	CategoryConv       = "Conv"
	CategoryMatMul     = "MatMul/Gemm"
	CategoryActivation = "Activation"
	CategoryAdd        = "Add"
	CategoryMul        = "Mul"
	CategoryOther      = "Other"
	CategoryFused      = "FusedOp"
)

// DefaultConvPrefixes are the framework-qualified convolution prefixes.
var DefaultConvPrefixes = []string{"onnx::Conv"}

// Table maps an operator identifier to its category.
type Table map[string]string

// DefaultTable returns a fresh copy of the built-in category table.
func DefaultTable() Table {
	return Table{
		"MatMul":            CategoryMatMul,
		"Gemm":              CategoryMatMul,
		"Conv":              CategoryConv,
		"Relu":              CategoryActivation,
		"Sigmoid":           CategoryActivation,
		"Tanh":              CategoryActivation,
		"Clip":              CategoryActivation,
		"Add":               CategoryAdd,
		"Mul":               CategoryMul,
		"Identity":          CategoryOther,
		"Constant":          CategoryOther,
		"Flatten":           CategoryOther,
		"GlobalAveragePool": CategoryOther,
		"FusedOp":           CategoryFused,
	}
}

// Clone returns an independent copy of t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Canonicalizer assigns categories to operator identifiers.
type Canonicalizer struct {
	table        Table
	convPrefixes []string
}

// New creates a Canonicalizer. The table and prefixes are copied, so later
// changes by the caller do not leak into the Canonicalizer.
func New(table Table, convPrefixes []string) *Canonicalizer {
	prefixes := make([]string, 0, len(convPrefixes))
	for _, p := range convPrefixes {
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &Canonicalizer{
		table:        table.Clone(),
		convPrefixes: prefixes,
	}
}

// Default returns a Canonicalizer over DefaultTable and DefaultConvPrefixes.
func Default() *Canonicalizer {
	return New(DefaultTable(), DefaultConvPrefixes)
}

// CategoryOf returns the category of raw. It never fails: unknown
// identifiers are returned unchanged.
func (c *Canonicalizer) CategoryOf(raw string) string {
	if cat, ok := c.table[raw]; ok {
		return cat
	}
	for _, p := range c.convPrefixes {
		if strings.HasPrefix(raw, p) {
			return CategoryConv
		}
	}
	return raw
}

// Table returns a copy of the category table.
func (c *Canonicalizer) Table() Table {
	return c.table.Clone()
}

// ConvPrefixes returns a copy of the convolution prefixes.
func (c *Canonicalizer) ConvPrefixes() []string {
	return append([]string(nil), c.convPrefixes...)
}

// Categories returns the distinct categories reachable through the table
// and the prefix rule, sorted.
func (c *Canonicalizer) Categories() []string {
	out := lo.Uniq(lo.Values(c.table))
	if len(c.convPrefixes) > 0 && !slices.Contains(out, CategoryConv) {
		out = append(out, CategoryConv)
	}
	slices.Sort(out)
	return out
}

// Idempotent reports whether CategoryOf(CategoryOf(x)) == CategoryOf(x)
// holds for every category the Canonicalizer can produce. It returns the
// first offending category when it does not.
func (c *Canonicalizer) Idempotent() (string, bool) {
	for _, cat := range c.Categories() {
		if got := c.CategoryOf(cat); got != cat {
			return cat, false
		}
	}
	return "", true
}
