package irdiff

import (
	"fmt"
	"strings"
)

// Default file-header labels.
const (
	DefaultFromLabel = "Raw Relay IR"
	DefaultToLabel   = "Optimized Relay IR"
)

// LineKind tags a line of a hunk.
type LineKind string

const (
	Context LineKind = "context"
	Removed LineKind = "removed"
	Added   LineKind = "added"
)

// Prefix returns the unified-diff prefix for k.
func (k LineKind) Prefix() string {
	switch k {
	case Removed:
		return "-"
	case Added:
		return "+"
	default:
		return " "
	}
}

// Line is one tagged line of a hunk.
type Line struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

// Range is a 0-based half-open line range [Start, Start+Count).
type Range struct {
	Start int `json:"start"`
	Count int `json:"count"`
}

// header renders r the way unified diff headers number lines: 1-based, and
// for an empty range the line before it.
func (r Range) header() string {
	start := r.Start + 1
	if r.Count == 0 {
		start = r.Start
	}
	return fmt.Sprintf("%d,%d", start, r.Count)
}

// Hunk is a changed region plus its context.
type Hunk struct {
	Src   Range  `json:"src"`
	Dst   Range  `json:"dst"`
	Lines []Line `json:"lines"`
}

// Header returns the "@@ -a,b +c,d @@" line of h.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", h.Src.header(), h.Dst.header())
}

// Report is the result of diffing two line sequences.
type Report struct {
	FromLabel string `json:"from_label"`
	ToLabel   string `json:"to_label"`
	Hunks     []Hunk `json:"hunks"`
}

// Empty reports whether the inputs were identical.
func (r *Report) Empty() bool {
	return len(r.Hunks) == 0
}

// Stats returns the number of removed and added lines.
func (r *Report) Stats() (removed, added int) {
	for _, h := range r.Hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case Removed:
				removed++
			case Added:
				added++
			}
		}
	}
	return removed, added
}

// String renders r as unified diff text: a two-line file header followed by
// every hunk, joined by newlines with no trailing newline. An empty report
// renders as "".
func (r *Report) String() string {
	if r.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("--- " + r.FromLabel)
	b.WriteString("\n+++ " + r.ToLabel)
	for _, h := range r.Hunks {
		b.WriteString("\n" + h.Header())
		for _, l := range h.Lines {
			b.WriteString("\n" + l.Kind.Prefix() + l.Text)
		}
	}
	return b.String()
}

// Apply replays r against raw and returns the destination lines. It fails
// if a context or removed line does not match raw.
func (r *Report) Apply(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	pos := 0

	for hi, h := range r.Hunks {
		if h.Src.Start < pos || h.Src.Start > len(raw) {
			return nil, fmt.Errorf("hunk %d: source start %d out of order or range", hi, h.Src.Start)
		}
		out = append(out, raw[pos:h.Src.Start]...)
		pos = h.Src.Start

		for li, l := range h.Lines {
			switch l.Kind {
			case Context, Removed:
				if pos >= len(raw) || raw[pos] != l.Text {
					return nil, fmt.Errorf("hunk %d line %d: expected %q at source line %d", hi, li, l.Text, pos+1)
				}
				if l.Kind == Context {
					out = append(out, l.Text)
				}
				pos++
			case Added:
				out = append(out, l.Text)
			default:
				return nil, fmt.Errorf("hunk %d line %d: unknown line kind %q", hi, li, l.Kind)
			}
		}
	}

	return append(out, raw[pos:]...), nil
}
