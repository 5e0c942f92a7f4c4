package graph

import (
	"fmt"
	"regexp"

	"github.com/roach88/xplain/internal/canon"
	"github.com/roach88/xplain/internal/digest"
)

// DefaultColor is used for categories without a palette entry.
const DefaultColor = "#95A5A6"

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether s is a #RRGGBB color.
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// Palette assigns display colors to categories.
type Palette struct {
	Colors  map[string]string
	Default string
}

// DefaultPalette returns the built-in category colors.
func DefaultPalette() Palette {
	return Palette{
		Colors: map[string]string{
			canon.CategoryConv:       "#4B9CD3",
			canon.CategoryMatMul:     "#E74C3C",
			canon.CategoryActivation: "#2ECC71",
			canon.CategoryAdd:        "#9B59B6",
			canon.CategoryMul:        "#9B59B6",
			canon.CategoryFused:      "#F1C40F",
		},
		Default: DefaultColor,
	}
}

// ColorOf returns the color for category, falling back to the default.
func (p Palette) ColorOf(category string) string {
	if c, ok := p.Colors[category]; ok {
		return c
	}
	if p.Default != "" {
		return p.Default
	}
	return DefaultColor
}

// ExportNode is a node as handed to a visualization frontend.
type ExportNode struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Color    string `json:"color"`
}

// Export is the serializable form of a graph.
type Export struct {
	Nodes  []ExportNode   `json:"nodes"`
	Edges  []Edge         `json:"edges"`
	Counts CategoryCounts `json:"counts"`
}

// NewExport renders g for a visualization frontend. Nodes and edges keep
// graph order; slices are never nil so empty graphs serialize as [].
func NewExport(g *Graph, p Palette) Export {
	exp := Export{
		Nodes:  make([]ExportNode, 0, g.NodeCount()),
		Edges:  g.Edges(),
		Counts: Counts(g),
	}
	if exp.Edges == nil {
		exp.Edges = []Edge{}
	}
	for _, n := range g.Nodes() {
		exp.Nodes = append(exp.Nodes, ExportNode{
			ID:       n.ID,
			Label:    n.RawLabel,
			Category: n.Category,
			Color:    p.ColorOf(n.Category),
		})
	}
	return exp
}

// Digest returns a content hash of g covering node ids, labels, categories
// and the ordered edge list.
func Digest(g *Graph) (string, error) {
	nodes := make([]any, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		nodes = append(nodes, map[string]any{
			"id":       n.ID,
			"label":    n.RawLabel,
			"category": n.Category,
		})
	}
	edges := make([]any, 0, g.EdgeCount())
	for _, e := range g.edges {
		edges = append(edges, []string{e.Source, e.Target})
	}

	id, err := digest.Hash(digest.DomainGraph, map[string]any{"nodes": nodes, "edges": edges})
	if err != nil {
		return "", fmt.Errorf("graph digest: %w", err)
	}
	return id, nil
}
