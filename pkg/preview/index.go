package preview

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MatchKind describes how a cached lookup matched a candidate name.
type MatchKind string

// Match kinds reported by DirectoryIndex.Lookup
const (
	MatchNone       MatchKind = "none"
	MatchExact      MatchKind = "exact"
	MatchCaseFolded MatchKind = "case_folded"
)

// Entry is the metadata captured for one directory entry.
type Entry struct {
	Name       string    `json:"name"`
	ModTime    time.Time `json:"mod_time"`
	ChangeTime time.Time `json:"change_time"`
	Size       int64     `json:"size"`
	IsDir      bool      `json:"is_dir"`
}

// DirectoryIndex is a read-only snapshot of one directory's entries, keyed
// both by exact name and by lower-cased name.
//
// When several names fold to the same key, the last one in lexical order
// owns the folded slot. Every name involved is listed in Collisions.
type DirectoryIndex struct {
	Dir         string
	Cased       map[string]Entry
	Folded      map[string]Entry
	Unavailable []EntryError
	Collisions  map[string][]string
	BuiltAt     time.Time
}

// BuildDirectoryIndex lists dir once and indexes every entry whose metadata
// can be read. Entries that fail are recorded in Unavailable; only a failure
// to list dir itself is returned as an error.
func BuildDirectoryIndex(dir string) (*DirectoryIndex, error) {
	return buildDirectoryIndex(dir, os.ReadDir)
}

func buildDirectoryIndex(dir string, readDir func(string) ([]fs.DirEntry, error)) (*DirectoryIndex, error) {
	dirEntries, err := readDir(dir)
	if err != nil {
		return nil, &DirectoryUnavailableError{Dir: dir, Err: err}
	}

	entries := make([]Entry, 0, len(dirEntries))
	var gaps []EntryError

	for _, de := range dirEntries {
		// DirEntry.Info does not follow symlinks
		info, infoErr := de.Info()
		if infoErr != nil {
			gaps = append(gaps, EntryError{Name: de.Name(), Err: infoErr})
			continue
		}

		entries = append(entries, entryFromInfo(info))
	}

	return NewDirectoryIndex(dir, entries, gaps), nil
}

// NewDirectoryIndex builds an index from a listing captured elsewhere.
func NewDirectoryIndex(dir string, entries []Entry, gaps []EntryError) *DirectoryIndex {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	idx := &DirectoryIndex{
		Dir:         filepath.Clean(dir),
		Cased:       make(map[string]Entry, len(sorted)),
		Folded:      make(map[string]Entry, len(sorted)),
		Unavailable: append([]EntryError(nil), gaps...),
		Collisions:  make(map[string][]string),
		BuiltAt:     time.Now(),
	}

	names := make(map[string][]string, len(sorted))
	for _, e := range sorted {
		key := strings.ToLower(e.Name)
		idx.Cased[e.Name] = e
		idx.Folded[key] = e
		names[key] = append(names[key], e.Name)
	}

	for key, group := range names {
		if len(group) > 1 {
			idx.Collisions[key] = group
		}
	}

	return idx
}

// Lookup checks name against the exact-case map, then the folded map. It
// returns the name as it appears in the directory.
func (idx *DirectoryIndex) Lookup(name string) (bool, MatchKind, string) {
	if e, ok := idx.Cased[name]; ok {
		return true, MatchExact, e.Name
	}

	if e, ok := idx.Folded[strings.ToLower(name)]; ok {
		return true, MatchCaseFolded, e.Name
	}

	return false, MatchNone, ""
}

// Len returns the number of indexed entries.
func (idx *DirectoryIndex) Len() int {
	return len(idx.Cased)
}

// Covers reports whether the index was built for dir.
func (idx *DirectoryIndex) Covers(dir string) bool {
	return sameDir(idx.Dir, dir)
}

func sameDir(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if a == b {
		return true
	}

	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)

	return errA == nil && errB == nil && absA == absB
}

func entryFromInfo(info fs.FileInfo) Entry {
	return Entry{
		Name:       info.Name(),
		ModTime:    info.ModTime(),
		ChangeTime: changeTime(info),
		Size:       info.Size(),
		IsDir:      info.IsDir(),
	}
}
