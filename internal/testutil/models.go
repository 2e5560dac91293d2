package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewModelDir creates a directory under a fresh temp dir containing the named
// files, each holding a few placeholder bytes. Names may include
// subdirectories.
func NewModelDir(t *testing.T, name string, files ...string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	WriteFiles(t, dir, files...)

	return dir
}

// WriteFiles creates each named file under dir.
func WriteFiles(t *testing.T, dir string, files ...string) {
	t.Helper()

	for _, f := range files {
		path := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("test"), 0o644))
	}
}
