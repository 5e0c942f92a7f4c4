// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/xplain/internal/digest"
)

// Golden returns a goldie instance reading fixtures from
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run the package tests with -update:
//
//	go test ./internal/irdiff -update
func Golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// AssertGolden compares got against testdata/golden/{name}.golden.
func AssertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	Golden(t).Assert(t, name, got)
}

// AssertGoldenCanonical compares the canonical JSON encoding of v against
// a golden file, so map ordering never causes spurious diffs.
func AssertGoldenCanonical(t *testing.T, name string, v any) {
	t.Helper()
	data, err := digest.MarshalCanonical(v)
	if err != nil {
		t.Fatalf("canonical marshal %s: %v", name, err)
	}
	Golden(t).Assert(t, name, data)
}

// WriteFile writes content to name under dir and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
