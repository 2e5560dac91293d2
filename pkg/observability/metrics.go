package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// ResolutionsTotal counts preview resolutions by verdict and cached match kind
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "previewdiag_resolutions_total",
			Help: "Total number of preview resolutions",
		},
		[]string{"dir", "verdict", "match"}, // verdict: found, not_found, disagreement
	)

	// DirectoryScansTotal counts directory index builds
	DirectoryScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "previewdiag_directory_scans_total",
			Help: "Total number of directory index builds",
		},
		[]string{"status"}, // status: success, unavailable
	)

	// IndexEntries tracks the number of entries captured in each directory index
	IndexEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "previewdiag_index_entries",
			Help: "Number of entries captured in a directory index",
		},
		[]string{"dir"},
	)

	// IndexGaps tracks entries whose metadata could not be read
	IndexGaps = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "previewdiag_index_gaps",
			Help: "Number of directory entries whose metadata could not be read",
		},
		[]string{"dir"},
	)

	// CandidateAccessErrorsTotal counts direct checks that failed for reasons other than absence
	CandidateAccessErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "previewdiag_candidate_access_errors_total",
			Help: "Total number of candidate stat failures other than not-exist",
		},
	)

	// StalePathMatches tracks stale path matches per cache table
	StalePathMatches = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "previewdiag_stale_path_matches",
			Help: "Number of cache values matching the stale path pattern",
		},
		[]string{"table", "column"},
	)

	// RunDuration measures how long a diagnose run takes
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "previewdiag_run_duration_seconds",
			Help:    "Diagnose run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)
)

// RecordResolution records a single model resolution
func RecordResolution(dir, verdict, match string, accessErrors int) {
	ResolutionsTotal.WithLabelValues(dir, verdict, match).Inc()
	CandidateAccessErrorsTotal.Add(float64(accessErrors))
}

// RecordDirectoryScan records an index build outcome
func RecordDirectoryScan(dir string, entries, gaps int, err error) {
	if err != nil {
		DirectoryScansTotal.WithLabelValues("unavailable").Inc()
		return
	}

	DirectoryScansTotal.WithLabelValues("success").Inc()
	IndexEntries.WithLabelValues(dir).Set(float64(entries))
	IndexGaps.WithLabelValues(dir).Set(float64(gaps))
}

// RecordStalePaths records the stale path matches for one column
func RecordStalePaths(table, column string, matches int) {
	StalePathMatches.WithLabelValues(table, column).Set(float64(matches))
}
