// Package irdiff computes line-based unified diffs between compiler IR
// snapshots captured at different optimization levels.
//
// The edit script is a minimal one (Myers' O(ND) algorithm). Changed regions
// are grouped into hunks padded with up to N context lines on each side;
// hunks whose context windows overlap or touch are merged. Diffing is purely
// textual: IR is never parsed or validated.
//
// Identical inputs produce a Report with no hunks, which renders as the empty
// string. That is a success state ("no differences"), not an error.
package irdiff
