package irdiff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func chars(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}

// replay rebuilds the destination from a and the script, checking that
// equal and delete edits agree with a.
func replay(t *testing.T, a, b []string, script []edit) []string {
	t.Helper()
	var out []string
	for _, e := range script {
		switch e.Kind {
		case OpEqual:
			assert.Equal(t, a[e.Src], b[e.Dst])
			out = append(out, a[e.Src])
		case OpInsert:
			out = append(out, b[e.Dst])
		}
	}
	return out
}

func TestEditScript(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		edits int
	}{
		{"both empty", "", "", 0},
		{"insert only", "", "ab", 2},
		{"delete only", "ab", "", 2},
		{"identical", "abc", "abc", 0},
		{"substitution", "abc", "axc", 2},
		{"classic", "abcabba", "cbabac", 5},
		{"prefix", "abc", "xabc", 1},
		{"suffix", "abc", "abcx", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := chars(tt.a), chars(tt.b)
			script := editScript(a, b)

			changes := 0
			for _, e := range script {
				if e.Kind != OpEqual {
					changes++
				}
			}
			assert.Equal(t, tt.edits, changes)
			assert.Equal(t, strings.Join(b, ""), strings.Join(replay(t, a, b, script), ""))
		})
	}
}

func TestEditScript_DeletesBeforeInserts(t *testing.T) {
	script := editScript(chars("abc"), chars("axc"))

	kinds := make([]OpKind, len(script))
	for i, e := range script {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []OpKind{OpEqual, OpDelete, OpInsert, OpEqual}, kinds)
}
