package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestJournal opens a fresh journal in a temp directory.
func createTestJournal(t *testing.T, opts ...Option) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}
