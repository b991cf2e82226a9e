package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fluxkeys/internal/config"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, cfg config.Config, args ...string) (string, string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand(cfg)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

var textConfig = config.Config{Format: "text"}

// decodeResponse decodes a CLIResponse whose Data is decoded into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()

	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.CLIResponse
}
