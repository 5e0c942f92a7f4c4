package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xplain/internal/digest"
)

func addSnapshot(t *testing.T, db, model, level, path string) SnapshotAddResult {
	t.Helper()
	out, err := execute(t, NewSnapshotCommand(&RootOptions{Format: "json", Database: db}), "add", model, level, path)
	require.NoError(t, err)
	var result SnapshotAddResult
	decodeData(t, out, &result)
	return result
}

func TestSnapshotAdd(t *testing.T) {
	db := tempDB(t)

	first := addSnapshot(t, db, "tiny", "0", rawIR)
	assert.True(t, first.Created)
	assert.Equal(t, 6, first.LineCount)

	content, err := os.ReadFile(rawIR)
	require.NoError(t, err)
	assert.Equal(t, digest.SnapshotID("tiny", 0, string(content)), first.ID)

	again := addSnapshot(t, db, "tiny", "0", rawIR)
	assert.False(t, again.Created)
	assert.Equal(t, first.ID, again.ID)
}

func TestSnapshotAddText(t *testing.T) {
	db := tempDB(t)
	opts := func() *RootOptions { return &RootOptions{Format: "text", Database: db} }

	out, err := execute(t, NewSnapshotCommand(opts()), "add", "tiny", "3", optIR)
	require.NoError(t, err)
	assert.Contains(t, out, "Stored tiny@3 (8 lines): ")

	out, err = execute(t, NewSnapshotCommand(opts()), "add", "tiny", "3", optIR)
	require.NoError(t, err)
	assert.Contains(t, out, "Already stored tiny@3")
}

func TestSnapshotListAndShow(t *testing.T) {
	db := tempDB(t)
	addSnapshot(t, db, "tiny", "3", optIR)
	addSnapshot(t, db, "tiny", "0", rawIR)

	out, err := execute(t, NewSnapshotCommand(&RootOptions{Format: "json", Database: db}), "list", "tiny")
	require.NoError(t, err)
	var list SnapshotListResult
	decodeData(t, out, &list)
	require.Len(t, list.Snapshots, 2)
	assert.Equal(t, 0, list.Snapshots[0].Level)
	assert.Equal(t, 3, list.Snapshots[1].Level)

	out, err = execute(t, NewSnapshotCommand(&RootOptions{Format: "text", Database: db}), "show", "tiny", "0")
	require.NoError(t, err)
	raw, err := os.ReadFile(rawIR)
	require.NoError(t, err)
	assert.Equal(t, string(raw), out)

	out, err = execute(t, NewSnapshotCommand(&RootOptions{Format: "text", Database: db}), "list", "other")
	require.NoError(t, err)
	assert.Equal(t, "No snapshots for other.\n", out)
}

func TestSnapshotShowMissing(t *testing.T) {
	_, err := execute(t, NewSnapshotCommand(&RootOptions{Format: "text", Database: tempDB(t)}), "show", "tiny", "1")
	requireFailure(t, err, ExitFailure, ErrCodeNotFound)
}

func TestSnapshotDiffDefaults(t *testing.T) {
	db := tempDB(t)
	addSnapshot(t, db, "tiny", "0", rawIR)
	addSnapshot(t, db, "tiny", "3", optIR)

	out, err := execute(t, NewSnapshotCommand(&RootOptions{Format: "json", Database: db}), "diff", "tiny")
	require.NoError(t, err)

	var result DiffResult
	decodeData(t, out, &result)
	assert.Equal(t, "Raw Relay IR", result.From)
	assert.Equal(t, "Optimized Relay IR (opt_level=3)", result.To)
	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, 4, result.Added)
}

func TestSnapshotDiffSameLevel(t *testing.T) {
	db := tempDB(t)
	addSnapshot(t, db, "tiny", "0", rawIR)

	out, err := execute(t, NewSnapshotCommand(&RootOptions{Format: "text", Database: db}), "diff", "tiny", "0", "0")
	require.NoError(t, err)
	assert.Equal(t, "No differences detected.\n", out)
}

func TestSnapshotRequiresDatabase(t *testing.T) {
	_, err := execute(t, NewSnapshotCommand(&RootOptions{Format: "text"}), "list", "tiny")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), EnvDatabase)
}

func TestTimelineFromStore(t *testing.T) {
	db := tempDB(t)
	addSnapshot(t, db, "tiny", "3", optIR)
	addSnapshot(t, db, "tiny", "1", rawIR)
	addSnapshot(t, db, "tiny", "0", rawIR)

	out, err := execute(t, NewTimelineCommand(&RootOptions{Format: "json", Database: db}), "tiny")
	require.NoError(t, err)

	var result TimelineResult
	decodeData(t, out, &result)
	assert.Equal(t, "tiny", result.Model)
	assert.Equal(t, []int{0, 1, 3}, result.Levels)
	require.Len(t, result.Steps, 2)
	assert.True(t, result.Steps[0].Empty)
	assert.False(t, result.Steps[1].Empty)
}

func TestTimelineFromStoreNoSnapshots(t *testing.T) {
	_, err := execute(t, NewTimelineCommand(&RootOptions{Format: "text", Database: tempDB(t)}), "tiny")
	requireFailure(t, err, ExitFailure, ErrCodeNotFound)
}
