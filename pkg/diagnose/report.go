package diagnose

import (
	"path/filepath"
	"time"

	"github.com/ethpandaops/previewdiag/pkg/metacache"
	"github.com/ethpandaops/previewdiag/pkg/models"
	"github.com/ethpandaops/previewdiag/pkg/preview"
	"github.com/ethpandaops/previewdiag/pkg/settings"
)

// Report is the outcome of one diagnose run
type Report struct {
	RunID        string                  `json:"run_id"`
	StartedAt    time.Time               `json:"started_at"`
	Duration     time.Duration           `json:"duration_ns"`
	Directories  []DirectoryReport       `json:"directories"`
	Cache        *CacheReport            `json:"cache,omitempty"`
	HashCaches   []models.HashCacheCount `json:"hash_caches"`
	HashCacheErr string                  `json:"hash_cache_error,omitempty"`
	Settings     *SettingsReport         `json:"settings,omitempty"`
	Trace        *TraceReport            `json:"trace,omitempty"`
}

// DirectoryReport covers one model directory
type DirectoryReport struct {
	Dir                string              `json:"dir"`
	Err                string              `json:"error,omitempty"`
	Models             int                 `json:"models"`
	Previews           int                 `json:"previews"`
	Entries            int                 `json:"entries"`
	IndexedAt          time.Time           `json:"indexed_at,omitzero"`
	Found              int                 `json:"found"`
	NotFound           int                 `json:"not_found"`
	DirectFound        int                 `json:"direct_found"`
	CachedFound        int                 `json:"cached_found"`
	CachedNotFound     int                 `json:"cached_not_found"`
	Disagreements      int                 `json:"disagreements"`
	FoldedMatches      int                 `json:"folded_matches"`
	Results            []*preview.Result   `json:"results,omitempty"`
	Gaps               []string            `json:"metadata_errors,omitempty"`
	Collisions         map[string][]string `json:"case_collisions,omitempty"`
	AccessErrors       []string            `json:"access_errors,omitempty"`
	RecordedMismatches []RecordedMismatch  `json:"recorded_mismatches,omitempty"`
}

// Available reports whether the directory could be listed
func (d DirectoryReport) Available() bool {
	return d.Err == ""
}

// RecordedMismatch is a model whose cached preview path differs from disk
type RecordedMismatch struct {
	Model    string `json:"model"`
	Recorded string `json:"recorded"`
	Resolved string `json:"resolved"`
}

// CacheReport covers the metadata cache database
type CacheReport struct {
	Path         string                   `json:"path"`
	Err          string                   `json:"error,omitempty"`
	Tables       []metacache.TableSummary `json:"tables,omitempty"`
	StalePattern string                   `json:"stale_pattern,omitempty"`
	StalePaths   []metacache.StaleMatch   `json:"stale_paths,omitempty"`
}

// SettingsReport covers the web UI settings file
type SettingsReport struct {
	Path   string             `json:"path"`
	Err    string             `json:"error,omitempty"`
	Values []settings.Setting `json:"values,omitempty"`
}

// TraceReport is a per-candidate trace for one model
type TraceReport struct {
	Model  string                   `json:"model"`
	Stem   string                   `json:"stem"`
	Err    string                   `json:"error,omitempty"`
	Checks []preview.CandidateCheck `json:"checks,omitempty"`
}

// Totals sums the per-directory counts
func (r *Report) Totals() DirectoryReport {
	var total DirectoryReport

	for _, d := range r.Directories {
		total.Models += d.Models
		total.Previews += d.Previews
		total.Found += d.Found
		total.NotFound += d.NotFound
		total.DirectFound += d.DirectFound
		total.CachedFound += d.CachedFound
		total.CachedNotFound += d.CachedNotFound
		total.Disagreements += d.Disagreements
		total.FoldedMatches += d.FoldedMatches
	}

	return total
}

func dirOf(modelPath string) string {
	return filepath.Dir(modelPath)
}
