package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xplain/internal/testutil"
)

func runMain(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Main(append(args, "--log-level", "error"), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestMainSuccess(t *testing.T) {
	code, stdout, _ := runMain("diff", rawIR, optIR)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "@@ -1,6 +1,8 @@")
}

func TestMainNoDifferencesIsSuccess(t *testing.T) {
	code, stdout, _ := runMain("diff", rawIR, rawIR)
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "No differences detected.\n", stdout)
}

func TestMainEmptyGraphIsSuccess(t *testing.T) {
	code, stdout, _ := runMain("graph", "testdata/models/missing.yaml")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Graph is empty")
}

func TestMainUnknownCommand(t *testing.T) {
	code, _, stderr := runMain("explode")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Error [E001]")
}

func TestMainInvalidFormat(t *testing.T) {
	code, _, stderr := runMain("graph", tinyModel, "--format", "yaml")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid format")
}

func TestMainMissingInputJSON(t *testing.T) {
	code, stdout, _ := runMain("diff", rawIR, "testdata/ir/missing.relay", "--format", "json")
	assert.Equal(t, ExitFailure, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestMainInvalidConfigJSON(t *testing.T) {
	cfgPath := testutil.WriteFile(t, t.TempDir(), "xplain.cue", "levels: [0, 4]\n")

	code, stdout, _ := runMain("fuse", tinyModel, "--config", cfgPath, "--format", "json")
	assert.Equal(t, ExitFailure, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E206", resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)
}

func TestMainDatabaseFromEnv(t *testing.T) {
	t.Setenv(EnvDatabase, tempDB(t))

	code, stdout, stderr := runMain("history")
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "No runs recorded.\n", stdout)
}

func TestMainWritesMetrics(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "xplain.prom")

	code, _, stderr := runMain("fuse", tinyModel, "--metrics-file", metricsFile)
	require.Equal(t, ExitSuccess, code, stderr)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `xplain_graph_nodes{model="tiny",stage="before"} 7`)
	assert.Contains(t, text, `xplain_fusion_reduction_percent{model="tiny"} 0`)
	assert.Contains(t, text, `xplain_commands_total{command="xplain fuse",status="ok"} 1`)
}

func TestMainWritesMetricsOnFailure(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "xplain.prom")

	code, _, _ := runMain("diff", rawIR, "testdata/ir/missing.relay", "--metrics-file", metricsFile)
	require.Equal(t, ExitFailure, code)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `xplain_commands_total{command="xplain diff",status="error"} 1`)
}
