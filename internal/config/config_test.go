package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"FLUXKEYS_FORMAT", "FLUXKEYS_LOG_LEVEL", "FLUXKEYS_JOURNAL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{Format: "text", LogLevel: slog.LevelWarn}, cfg)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("FLUXKEYS_FORMAT", "json")
	t.Setenv("FLUXKEYS_LOG_LEVEL", "debug")
	t.Setenv("FLUXKEYS_JOURNAL", "/tmp/calls.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/tmp/calls.db", cfg.Journal)
}

func TestLoad_BadLevel(t *testing.T) {
	t.Setenv("FLUXKEYS_LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoad_BadFormat(t *testing.T) {
	t.Setenv("FLUXKEYS_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported format "xml"`)
}
