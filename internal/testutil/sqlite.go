package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // register the sqlite driver
)

// NewSQLiteDB creates a SQLite database file in a temp directory, runs the
// given statements against it and returns its path. The handle is closed
// before returning so callers can reopen it read-only.
func NewSQLiteDB(t *testing.T, statements ...string) string {
	t.Helper()

	return NewSQLiteDBAt(t, filepath.Join(t.TempDir(), "cache.db"), statements...)
}

// NewSQLiteDBAt is NewSQLiteDB with a caller-chosen path. Missing parent
// directories are created.
func NewSQLiteDBAt(t *testing.T, path string, statements ...string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "statement: %s", stmt)
	}

	require.NoError(t, db.Close())

	return path
}
