package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

var (
	lightCircuit  = filepath.Join("..", "..", "testdata", "circuits", "light.cue")
	markCircuit   = filepath.Join("..", "..", "testdata", "circuits", "mark.cue")
	cyclicCircuit = filepath.Join("..", "..", "testdata", "circuits", "cyclic.cue")
	scenariosDir  = filepath.Join("..", "..", "testdata", "scenarios")
)

// execute runs cmd with args and returns stdout and the command error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeData decodes the data payload of a JSON CLIResponse into v and
// returns the response status.
func decodeData(t *testing.T, output string, v any) string {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &raw), "output: %s", output)
	if v != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return raw.Status
}

func writeCircuit(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// copyTestdata copies the circuits and scenarios directories into a temp
// dir so golden files can be written next to the scenarios.
func copyTestdata(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, sub := range []string{"circuits", "scenarios"} {
		src := filepath.Join("..", "..", "testdata", sub)
		dst := filepath.Join(root, sub)
		require.NoError(t, os.MkdirAll(dst, 0755))
		entries, err := os.ReadDir(src)
		require.NoError(t, err)
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(src, e.Name()))
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(dst, e.Name()), data, 0644))
		}
	}
	return root
}
