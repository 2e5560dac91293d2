// Package testutil provides test utilities for previewdiag, including:
//   - Model directory fixtures with model, preview and cache files (models.go)
//   - Throwaway SQLite metadata cache databases (sqlite.go)
//
// Neither helper needs external services; both clean up through t.TempDir.
package testutil
