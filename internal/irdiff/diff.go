package irdiff

import "strings"

// Diff compares raw with opt and groups the changes into hunks carrying up
// to context unchanged lines on each side. Negative context is treated as 0.
// The report uses DefaultFromLabel and DefaultToLabel.
func Diff(raw, opt []string, context int) *Report {
	return DiffLabeled(DefaultFromLabel, DefaultToLabel, raw, opt, context)
}

// DiffLabeled is Diff with explicit file-header labels.
func DiffLabeled(fromLabel, toLabel string, raw, opt []string, context int) *Report {
	if context < 0 {
		context = 0
	}
	return &Report{
		FromLabel: fromLabel,
		ToLabel:   toLabel,
		Hunks:     buildHunks(raw, opt, group(spans(editScript(raw, opt)), context)),
	}
}

// Unified diffs two IR text blobs and returns unified diff text, "" when
// they are identical.
func Unified(rawText, optText string, context int) string {
	return Diff(SplitLines(rawText), SplitLines(optText), context).String()
}

// SplitLines splits text on \n, \r\n or \r. A trailing line terminator does
// not produce an empty final line, and "" has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// span is a maximal run of equal lines or of changed lines, as half-open
// ranges [I1, I2) in the source and [J1, J2) in the destination.
type span struct {
	Equal  bool
	I1, I2 int
	J1, J2 int
}

// spans collapses an edit script into alternating equal and changed runs.
func spans(script []edit) []span {
	var out []span
	for _, e := range script {
		equal := e.Kind == OpEqual
		if len(out) == 0 || out[len(out)-1].Equal != equal {
			out = append(out, span{Equal: equal, I1: e.Src, I2: e.Src, J1: e.Dst, J2: e.Dst})
		}
		s := &out[len(out)-1]
		switch e.Kind {
		case OpEqual:
			s.I2++
			s.J2++
		case OpDelete:
			s.I2++
		case OpInsert:
			s.J2++
		}
	}
	return out
}

// group splits spans into hunk groups. Leading and trailing equal runs are
// trimmed to context lines; an interior equal run longer than 2*context ends
// one group and starts the next.
func group(in []span, context int) [][]span {
	hasChange := false
	for _, s := range in {
		if !s.Equal {
			hasChange = true
			break
		}
	}
	if !hasChange {
		return nil
	}

	codes := append([]span(nil), in...)
	if first := &codes[0]; first.Equal {
		first.I1 = max(first.I1, first.I2-context)
		first.J1 = max(first.J1, first.J2-context)
	}
	if last := &codes[len(codes)-1]; last.Equal {
		last.I2 = min(last.I2, last.I1+context)
		last.J2 = min(last.J2, last.J1+context)
	}

	var groups [][]span
	var cur []span
	for _, s := range codes {
		if s.Equal && s.I2-s.I1 > 2*context {
			cur = append(cur, span{
				Equal: true,
				I1:    s.I1, I2: min(s.I2, s.I1+context),
				J1: s.J1, J2: min(s.J2, s.J1+context),
			})
			groups = append(groups, cur)
			cur = nil
			s.I1 = max(s.I1, s.I2-context)
			s.J1 = max(s.J1, s.J2-context)
		}
		cur = append(cur, s)
	}
	if len(cur) > 0 && !(len(cur) == 1 && cur[0].Equal) {
		groups = append(groups, cur)
	}
	return groups
}

// buildHunks materializes groups into hunks. Within a changed run, removed
// lines are listed before added lines.
func buildHunks(raw, opt []string, groups [][]span) []Hunk {
	hunks := make([]Hunk, 0, len(groups))
	for _, g := range groups {
		first, last := g[0], g[len(g)-1]
		h := Hunk{
			Src: Range{Start: first.I1, Count: last.I2 - first.I1},
			Dst: Range{Start: first.J1, Count: last.J2 - first.J1},
		}
		for _, s := range g {
			if s.Equal {
				for _, text := range raw[s.I1:s.I2] {
					h.Lines = append(h.Lines, Line{Kind: Context, Text: text})
				}
				continue
			}
			for _, text := range raw[s.I1:s.I2] {
				h.Lines = append(h.Lines, Line{Kind: Removed, Text: text})
			}
			for _, text := range opt[s.J1:s.J2] {
				h.Lines = append(h.Lines, Line{Kind: Added, Text: text})
			}
		}
		hunks = append(hunks, h)
	}
	return hunks
}
