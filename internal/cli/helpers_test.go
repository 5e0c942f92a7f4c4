package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	tinyModel        = "testdata/models/tiny.yaml"
	activationsModel = "testdata/models/activations.yaml"
	badFieldModel    = "testdata/models/bad_field.yaml"
	rawIR            = "testdata/ir/raw.relay"
	optIR            = "testdata/ir/opt.relay"
	resultsFile      = "testdata/results.json"
)

// execute runs cmd with args and returns everything it wrote.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeData unmarshals the data of a successful JSON response into v.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "xplain.db")
}

// requireFailure asserts err carries the exit code and error code.
func requireFailure(t *testing.T, err error, exit int, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, exit, GetExitCode(err), err.Error())
	got, _ := errorCode(err)
	require.Equal(t, code, got, err.Error())
}
