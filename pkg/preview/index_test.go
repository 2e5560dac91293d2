package preview

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestBuildDirectoryIndex_Empty(t *testing.T) {
	dir := t.TempDir()

	idx, err := BuildDirectoryIndex(dir)
	require.NoError(t, err)

	assert.Empty(t, idx.Cased)
	assert.Empty(t, idx.Folded)
	assert.Empty(t, idx.Unavailable)
	assert.Empty(t, idx.Collisions)
	assert.Equal(t, 0, idx.Len())
}

func TestBuildDirectoryIndex_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")

	idx, err := BuildDirectoryIndex(dir)
	require.Error(t, err)
	assert.Nil(t, idx)

	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var dirErr *DirectoryUnavailableError
	require.True(t, errors.As(err, &dirErr))
	assert.Equal(t, dir, dirErr.Dir)
}

func TestBuildDirectoryIndex_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "file.txt")

	_, err := BuildDirectoryIndex(filepath.Join(dir, "file.txt"))
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestBuildDirectoryIndex_Entries(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model.safetensors", "Model.Preview.PNG")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	idx, err := BuildDirectoryIndex(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, idx.Len())
	assert.Contains(t, idx.Cased, "Model.Preview.PNG")
	assert.Contains(t, idx.Folded, "model.preview.png")
	assert.True(t, idx.Cased["sub"].IsDir)

	entry := idx.Cased["model.safetensors"]
	assert.Equal(t, int64(1), entry.Size)
	assert.False(t, entry.ModTime.IsZero())
	assert.False(t, entry.ChangeTime.IsZero())
	assert.True(t, idx.Covers(dir))
}

// failingInfoEntry is a directory entry whose metadata read fails, as when a
// file vanishes between the listing and the stat.
type failingInfoEntry struct {
	fs.DirEntry
	err error
}

func (e failingInfoEntry) Info() (fs.FileInfo, error) {
	return nil, e.err
}

func TestBuildDirectoryIndex_EntryMetadataUnavailable(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.safetensors", "a.png", "b.png")

	readDir := func(name string) ([]fs.DirEntry, error) {
		entries, err := os.ReadDir(name)
		if err != nil {
			return nil, err
		}

		for i, e := range entries {
			if e.Name() == "a.png" {
				entries[i] = failingInfoEntry{DirEntry: e, err: fs.ErrPermission}
			}
		}

		return entries, nil
	}

	idx, err := buildDirectoryIndex(dir, readDir)
	require.NoError(t, err)

	require.Len(t, idx.Unavailable, 1)
	gap := idx.Unavailable[0]
	assert.Equal(t, "a.png", gap.Name)
	assert.ErrorIs(t, gap, ErrEntryMetadataUnavailable)
	assert.ErrorIs(t, gap, fs.ErrPermission)

	// The scan continues past the failing entry
	assert.Equal(t, 2, idx.Len())
	assert.Contains(t, idx.Cased, "a.safetensors")
	assert.Contains(t, idx.Cased, "b.png")
	assert.NotContains(t, idx.Cased, "a.png")

	found, match, _ := idx.Lookup("a.png")
	assert.False(t, found)
	assert.Equal(t, MatchNone, match)
}

func TestDirectoryIndex_Lookup(t *testing.T) {
	idx := NewDirectoryIndex("/models", []Entry{
		{Name: "Model.PNG"},
		{Name: "exact.preview.png"},
	}, nil)

	tests := []struct {
		name        string
		lookup      string
		found       bool
		match       MatchKind
		indexedName string
	}{
		{
			name:        "exact match",
			lookup:      "exact.preview.png",
			found:       true,
			match:       MatchExact,
			indexedName: "exact.preview.png",
		},
		{
			name:        "case folded match",
			lookup:      "model.png",
			found:       true,
			match:       MatchCaseFolded,
			indexedName: "Model.PNG",
		},
		{
			name:   "missing",
			lookup: "other.png",
			found:  false,
			match:  MatchNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, match, indexedName := idx.Lookup(tt.lookup)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.match, match)
			assert.Equal(t, tt.indexedName, indexedName)
		})
	}
}

func TestNewDirectoryIndex_Collisions(t *testing.T) {
	// Supplied out of order on purpose; lexical order is A.png < a.PNG < a.png
	idx := NewDirectoryIndex("/models", []Entry{
		{Name: "a.png"},
		{Name: "A.png"},
		{Name: "a.PNG"},
		{Name: "b.png"},
	}, nil)

	assert.Len(t, idx.Cased, 4)
	assert.Len(t, idx.Folded, 2)
	assert.Equal(t, "a.png", idx.Folded["a.png"].Name)
	assert.Equal(t, map[string][]string{"a.png": {"A.png", "a.PNG", "a.png"}}, idx.Collisions)

	found, match, indexedName := idx.Lookup("A.PNG")
	assert.True(t, found)
	assert.Equal(t, MatchCaseFolded, match)
	assert.Equal(t, "a.png", indexedName)
}

func TestNewDirectoryIndex_DoesNotAliasInput(t *testing.T) {
	entries := []Entry{{Name: "b.png"}, {Name: "a.png", ModTime: time.Unix(10, 0)}}
	gaps := []EntryError{{Name: "broken", Err: os.ErrPermission}}

	idx := NewDirectoryIndex("/models/", entries, gaps)

	entries[1].Name = "mutated.png"
	gaps[0].Name = "mutated"

	assert.Contains(t, idx.Cased, "a.png")
	assert.Equal(t, "broken", idx.Unavailable[0].Name)
	assert.Equal(t, "/models", idx.Dir)
	assert.ErrorIs(t, idx.Unavailable[0], ErrEntryMetadataUnavailable)
	assert.ErrorIs(t, idx.Unavailable[0], os.ErrPermission)
}

func TestDirectoryIndex_Covers(t *testing.T) {
	idx := NewDirectoryIndex("/models/Lora", nil, nil)

	assert.True(t, idx.Covers("/models/Lora"))
	assert.True(t, idx.Covers("/models/Lora/"))
	assert.True(t, idx.Covers("/models/./Lora"))
	assert.False(t, idx.Covers("/models/Stable-diffusion"))
}
