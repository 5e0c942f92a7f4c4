package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryEmpty(t *testing.T) {
	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text", Database: tempDB(t)}))
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestHistoryAllModels(t *testing.T) {
	db := tempDB(t)
	_, err := execute(t, NewFuseCommand(&RootOptions{Format: "text", Database: db}), tinyModel)
	require.NoError(t, err)
	_, err = execute(t, NewFuseCommand(&RootOptions{Format: "text", Database: db}), activationsModel)
	require.NoError(t, err)

	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text", Database: db}))
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ  MODEL")
	assert.Contains(t, out, "tiny")
	assert.Contains(t, out, "activations")
	assert.Contains(t, out, "0.0%")
	assert.Contains(t, out, " -  ")

	out, err = execute(t, NewHistoryCommand(&RootOptions{Format: "json", Database: db}), "activations")
	require.NoError(t, err)
	var history HistoryResult
	decodeData(t, out, &history)
	require.Len(t, history.Runs, 1)
	assert.Equal(t, "activations", history.Runs[0].Model)
}

func TestFormatReduction(t *testing.T) {
	r := 37.5
	assert.Equal(t, "37.5%", formatReduction(&r))
	assert.Equal(t, "-", formatReduction(nil))
}

func TestHistoryByDigest(t *testing.T) {
	db := tempDB(t)

	var digest string
	for _, name := range []string{"tiny-a", "tiny-b"} {
		out, err := execute(t, NewGraphCommand(&RootOptions{Format: "json", Database: db}), tinyModel, "--model", name)
		require.NoError(t, err)
		var result GraphResult
		decodeData(t, out, &result)
		digest = result.Digest
	}
	_, err := execute(t, NewGraphCommand(&RootOptions{Format: "json", Database: db}), activationsModel)
	require.NoError(t, err)

	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "json", Database: db}), "--digest", digest)
	require.NoError(t, err)

	var history HistoryResult
	decodeData(t, out, &history)
	assert.Equal(t, digest, history.Digest)
	require.Len(t, history.Runs, 2)
	assert.Equal(t, "tiny-a", history.Runs[0].Model)
	assert.Equal(t, "tiny-b", history.Runs[1].Model)

	_, err = execute(t, NewHistoryCommand(&RootOptions{Format: "json", Database: db}), "tiny-a", "--digest", digest)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
