package irdiff

import (
	"fmt"
	"sort"
)

// RawLevel is the optimization level of the unoptimized IR.
const RawLevel = 0

// Snapshot is the IR text captured at one optimization level, as lines.
type Snapshot struct {
	Level int
	Lines []string
}

// Label names the snapshot in a diff header.
func (s Snapshot) Label() string {
	if s.Level == RawLevel {
		return DefaultFromLabel
	}
	return fmt.Sprintf("%s (opt_level=%d)", DefaultToLabel, s.Level)
}

// Step is the diff between two consecutive snapshots of a timeline.
type Step struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Report *Report `json:"report"`
}

// Timeline orders snaps by level and diffs each consecutive pair. Snapshots
// sharing a level keep their input order. Fewer than two snapshots yield no
// steps.
func Timeline(snaps []Snapshot, context int) []Step {
	ordered := append([]Snapshot(nil), snaps...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Level < ordered[j].Level })

	var steps []Step
	for i := 1; i < len(ordered); i++ {
		from, to := ordered[i-1], ordered[i]
		steps = append(steps, Step{
			From:   from.Level,
			To:     to.Level,
			Report: DiffLabeled(from.Label(), to.Label(), from.Lines, to.Lines, context),
		})
	}
	return steps
}
