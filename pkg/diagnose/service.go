// Package diagnose runs every preview diagnostic against a model install and
// collects the findings into a single report
package diagnose

import (
	"context"
	"errors"
	"time"

	"github.com/ethpandaops/previewdiag/pkg/metacache"
	"github.com/ethpandaops/previewdiag/pkg/models"
	"github.com/ethpandaops/previewdiag/pkg/observability"
	"github.com/ethpandaops/previewdiag/pkg/preview"
	"github.com/ethpandaops/previewdiag/pkg/settings"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Service runs diagnostics
type Service struct {
	config    *Config
	workers   int
	resolver  *preview.Resolver
	discovery *models.ModelDiscovery
	log       logrus.FieldLogger
}

// NewService creates a new diagnose service
func NewService(cfg *Config, log logrus.FieldLogger, opts ...preview.Option) *Service {
	log = log.WithField("component", "diagnose")

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &Service{
		config:    cfg,
		workers:   workers,
		resolver:  preview.NewResolver(append([]preview.Option{preview.WithLogger(log)}, opts...)...),
		discovery: models.NewModelDiscovery(&cfg.Models),
		log:       log,
	}
}

// Run executes every diagnostic section. Failures confined to one section
// (a missing directory, database or settings file) are recorded in the report
// and never abort the others; only context cancellation fails the run.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	log := s.log.WithField("run_id", report.RunID)
	log.Info("Starting diagnose run")

	store := s.openStore(ctx, report, log)
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				log.WithError(err).Error("Failed to close metadata cache")
			}
		}()
	}

	dirs, err := s.diagnoseDirectories(ctx, store)
	if err != nil {
		return nil, err
	}
	report.Directories = dirs

	if store != nil {
		if err := s.inspectStore(ctx, store, report); err != nil {
			return nil, err
		}
	}

	report.HashCaches, err = s.discovery.CountHashCaches()
	if err != nil {
		log.WithError(err).Warn("Failed to count hash caches")
		report.HashCacheErr = err.Error()
	}

	s.readSettings(report)

	if s.config.Trace.Model != "" {
		report.Trace = s.Trace(s.config.Trace.Model)
	}

	report.Duration = time.Since(report.StartedAt)
	observability.RunDuration.Observe(report.Duration.Seconds())

	log.WithFields(logrus.Fields{
		"directories": len(report.Directories),
		"duration":    report.Duration,
	}).Info("Diagnose run complete")

	return report, nil
}

func (s *Service) openStore(ctx context.Context, report *Report, log logrus.FieldLogger) *metacache.Store {
	if !s.config.CacheDB.Enabled() {
		return nil
	}

	report.Cache = &CacheReport{Path: s.config.CacheDB.Path, StalePattern: s.config.CacheDB.StalePathPattern}

	store, err := metacache.Open(ctx, &s.config.CacheDB, log)
	if err != nil {
		if errors.Is(err, metacache.ErrDatabaseNotFound) {
			log.WithField("path", s.config.CacheDB.Path).Warn("Metadata cache database not found")
		} else {
			log.WithError(err).Error("Failed to open metadata cache")
		}
		report.Cache.Err = err.Error()

		return nil
	}

	return store
}

func (s *Service) diagnoseDirectories(ctx context.Context, store *metacache.Store) ([]DirectoryReport, error) {
	dirs := s.discovery.Dirs()
	reports := make([]DirectoryReport, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			reports[i] = s.diagnoseDirectory(gctx, dir, store)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reports, nil
}

// diagnoseDirectory resolves every model in dir against a fresh index
func (s *Service) diagnoseDirectory(ctx context.Context, dir string, store *metacache.Store) DirectoryReport {
	report := DirectoryReport{Dir: dir}
	log := s.log.WithField("dir", dir)

	listing, err := s.discovery.ScanDirectory(dir)
	if err != nil {
		log.WithError(err).Warn("Model directory unavailable")
		observability.RecordDirectoryScan(dir, 0, 0, err)
		report.Err = err.Error()

		return report
	}

	report.Models = len(listing.Models)
	report.Previews = listing.Previews

	index, err := preview.BuildDirectoryIndex(dir)
	observability.RecordDirectoryScan(dir, indexLen(index), indexGaps(index), err)
	if err != nil {
		log.WithError(err).Warn("Failed to index directory")
		report.Err = err.Error()

		return report
	}

	report.Entries = index.Len()
	report.IndexedAt = index.BuiltAt
	report.Collisions = index.Collisions
	for _, gap := range index.Unavailable {
		report.Gaps = append(report.Gaps, gap.Error())
	}

	resolved, err := s.resolver.ResolveWithIndex(index, listing.Models)
	if err != nil {
		log.WithError(err).Error("Failed to resolve directory")
		report.Err = err.Error()

		return report
	}

	report.Results = resolved.Results
	report.Found = resolved.Found
	report.NotFound = resolved.NotFound
	report.Disagreements = resolved.Disagreements
	report.FoldedMatches = resolved.FoldedMatches
	report.DirectFound = resolved.DirectFound()
	report.CachedFound = resolved.CachedFound()
	report.CachedNotFound = len(resolved.Results) - report.CachedFound

	for _, result := range resolved.Results {
		observability.RecordResolution(dir, string(result.Verdict), string(result.Cached.Match), len(result.AccessErrors))

		for _, accessErr := range result.AccessErrors {
			report.AccessErrors = append(report.AccessErrors, accessErr.Error())
		}
	}

	if store != nil && s.config.CacheDB.PreviewLookup != nil {
		report.RecordedMismatches = s.crossCheck(ctx, store, resolved.Results, log)
	}

	return report
}

// crossCheck compares the preview path the metadata cache recorded for each
// model with what was resolved on disk
func (s *Service) crossCheck(ctx context.Context, store *metacache.Store, results []*preview.Result, log logrus.FieldLogger) []RecordedMismatch {
	var mismatches []RecordedMismatch

	for _, result := range results {
		recorded, ok, err := store.RecordedPreview(ctx, result.ModelPath)
		if err != nil {
			log.WithError(err).WithField("model", result.ModelPath).Debug("Recorded preview lookup failed")
			continue
		}

		if !ok {
			recorded = ""
		}

		if recorded == result.Candidate {
			continue
		}

		mismatches = append(mismatches, RecordedMismatch{
			Model:    result.ModelPath,
			Recorded: recorded,
			Resolved: result.Candidate,
		})
	}

	return mismatches
}

func (s *Service) inspectStore(ctx context.Context, store *metacache.Store, report *Report) error {
	summary, err := store.Inspect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report.Cache.Err = err.Error()

		return nil
	}
	report.Cache.Tables = summary.Tables

	if report.Cache.StalePattern == "" {
		return nil
	}

	matches, err := store.FindStalePaths(ctx, report.Cache.StalePattern)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report.Cache.Err = err.Error()

		return nil
	}

	report.Cache.StalePaths = matches
	for _, m := range matches {
		observability.RecordStalePaths(m.Table, m.Column, m.Matches)
	}

	return nil
}

func (s *Service) readSettings(report *Report) {
	path := s.config.Settings.Path
	if path == "" {
		return
	}

	report.Settings = &SettingsReport{Path: path}

	file, err := settings.Load(path)
	if err != nil {
		s.log.WithError(err).Warn("Failed to read settings")
		report.Settings.Err = err.Error()

		return
	}

	report.Settings.Values = file.Relevant(s.config.Settings.Keys)
}

// Trace runs a per-candidate trace for one model. It builds its own index for
// the model's directory so the trace reflects the directory as it is now.
func (s *Service) Trace(modelPath string) *TraceReport {
	tr := &TraceReport{Model: modelPath, Stem: preview.Stem(modelPath)}

	index, err := preview.BuildDirectoryIndex(dirOf(modelPath))
	if err != nil {
		tr.Err = err.Error()
		return tr
	}

	tr.Checks, err = s.resolver.Trace(modelPath, index)
	if err != nil {
		tr.Err = err.Error()
	}

	return tr
}

// Resolve resolves a single model. When withIndex is false only the direct
// strategy runs.
func (s *Service) Resolve(modelPath string, withIndex bool) (*preview.Result, error) {
	if !withIndex {
		return s.resolver.Resolve(modelPath, nil)
	}

	index, err := preview.BuildDirectoryIndex(dirOf(modelPath))
	if err != nil {
		return nil, err
	}

	return s.resolver.Resolve(modelPath, index)
}

func indexLen(idx *preview.DirectoryIndex) int {
	if idx == nil {
		return 0
	}
	return idx.Len()
}

func indexGaps(idx *preview.DirectoryIndex) int {
	if idx == nil {
		return 0
	}
	return len(idx.Unavailable)
}
