package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, _, err := execute(t, textConfig, "validate", "testdata/manifests/valid.yaml")
	require.NoError(t, err)
	assert.Equal(t, "✓ Manifest valid (4 keys)\n", out)
}

func TestValidate_ValidJSON(t *testing.T) {
	out, _, err := execute(t, textConfig, "--format", "json", "validate", "testdata/manifests/store.cue")
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, 3, result.Keys)
}

func TestValidate_ReportsAllFindings(t *testing.T) {
	out, _, err := execute(t, textConfig, "validate", "testdata/manifests/invalid.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "validation failed with 3 error(s)", err.Error())

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, `duplicate mutation name "addItem" in module cart`)
	assert.Contains(t, out, `name "bulk/add" must not contain /`)
	assert.Contains(t, out, `mutation key "cart/addItem" already registered by module cart`)
}

func TestValidate_FindingsJSON(t *testing.T) {
	out, _, err := execute(t, textConfig, "--format", "json", "validate", "testdata/manifests/invalid.yaml")
	require.Error(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, "modules[0].mutations[1]", result.Errors[0].Field)
}

func TestValidate_LoadErrorIsCommandError(t *testing.T) {
	_, _, err := execute(t, textConfig, "validate", "testdata/manifests/broken.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load manifest")
}
