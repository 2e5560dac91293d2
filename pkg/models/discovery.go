// Package models handles discovery of model files and their neighbouring
// preview and hash-cache files on disk
package models

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethpandaops/previewdiag/pkg/preview"
)

// DirectoryListing summarises the model directory contents
type DirectoryListing struct {
	Dir      string   `json:"dir"`
	Models   []string `json:"models"`
	Previews int      `json:"previews"`
	Entries  int      `json:"entries"`
}

// ModelDiscovery handles discovering model files from the filesystem
type ModelDiscovery struct {
	pathConfig *PathConfig
}

// NewModelDiscovery creates a new model discovery instance
func NewModelDiscovery(pathConfig *PathConfig) *ModelDiscovery {
	// Ensure defaults are set
	if pathConfig == nil {
		pathConfig = &PathConfig{}
	}
	pathConfig.SetDefaults()
	return &ModelDiscovery{pathConfig: pathConfig}
}

// Dirs returns the configured model directories
func (d *ModelDiscovery) Dirs() []string {
	return d.pathConfig.Dirs
}

// IsModel reports whether name carries one of the configured model extensions
func (d *ModelDiscovery) IsModel(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range d.pathConfig.Extensions {
		if ext == want {
			return true
		}
	}

	return false
}

// ScanDirectory lists dir (non-recursively), returning model file names in
// lexical order and the number of ".preview." files alongside them.
func (d *ModelDiscovery) ScanDirectory(dir string) (*DirectoryListing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelDirUnavailable, dir, err)
	}

	listing := &DirectoryListing{Dir: dir, Entries: len(entries)}

	for _, entry := range entries {
		name := entry.Name()

		if preview.IsPreviewName(name) {
			listing.Previews++
		}

		if entry.IsDir() || !d.IsModel(name) {
			continue
		}

		listing.Models = append(listing.Models, name)
	}

	sort.Strings(listing.Models)

	return listing, nil
}

// HashCacheCount is the number of files found under one hash cache directory
type HashCacheCount struct {
	Dir    string `json:"dir"`
	Exists bool   `json:"exists"`
	Files  int    `json:"files"`
}

// CountHashCaches counts files under every configured hash cache directory
func (d *ModelDiscovery) CountHashCaches() ([]HashCacheCount, error) {
	counts := make([]HashCacheCount, 0, len(d.pathConfig.HashCacheDirs))

	for _, dir := range d.pathConfig.HashCacheDirs {
		files, err := CountFiles(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				counts = append(counts, HashCacheCount{Dir: dir})
				continue
			}
			return nil, fmt.Errorf("failed to count files in %s: %w", dir, err)
		}

		counts = append(counts, HashCacheCount{Dir: dir, Exists: true, Files: files})
	}

	return counts, nil
}

// CountFiles walks root recursively and counts regular files
func CountFiles(root string) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, err
	}

	if !info.IsDir() {
		return 0, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}

	count := 0
	err = filepath.WalkDir(root, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.Type().IsRegular() {
			count++
		}

		return nil
	})

	return count, err
}
