// Package metacache inspects the model metadata cache database read-only
package metacache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite" // register the sqlite driver
)

const (
	sampleRowLimit  = 300
	staleValueLimit = 200
	staleSamples    = 2
)

// TableSummary describes one table of the cache database
type TableSummary struct {
	Name    string   `json:"name"`
	Rows    int64    `json:"rows"`
	Columns []string `json:"columns"`
	Samples []string `json:"samples"`
	Err     string   `json:"error,omitempty"`
}

// Summary describes the whole cache database
type Summary struct {
	Path   string         `json:"path"`
	Tables []TableSummary `json:"tables"`
}

// StaleMatch is a column whose values match the stale path pattern
type StaleMatch struct {
	Table   string   `json:"table"`
	Column  string   `json:"column"`
	Matches int      `json:"matches"`
	Samples []string `json:"samples"`
}

// Store is a read-only handle on the metadata cache database
type Store struct {
	db     *sql.DB
	config *Config
	log    logrus.FieldLogger
}

// Open opens the database at cfg.Path read-only
func Open(ctx context.Context, cfg *Config, log logrus.FieldLogger) (*Store, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, cfg.Path)
		}
		return nil, err
	}

	dsn, err := readOnlyDSN(cfg.Path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{
		db:     db,
		config: cfg,
		log:    log.WithField("component", "metacache"),
	}, nil
}

// readOnlyDSN builds a read-only SQLite URI for path. The path is
// percent-escaped so characters such as '#' and '?' stay part of the filename.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	uriPath := filepath.ToSlash(abs)
	if !strings.HasPrefix(uriPath, "/") {
		// Windows drive paths become file:///C:/...
		uriPath = "/" + uriPath
	}

	u := &url.URL{Scheme: "file", Path: uriPath, RawQuery: "mode=ro"}

	return u.String(), nil
}

// Close closes the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// QuoteIdentifier quotes a table or column name for use in SQL
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Tables returns the names of all tables in the database
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// RowCount returns the number of rows in table
func (s *Store) RowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdentifier(table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}

	return count, nil
}

// Columns returns the column names of table in declaration order
func (s *Store) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}

	return columns, rows.Err()
}

// SampleRows returns up to limit rows of table, each rendered as a tuple
func (s *Store) SampleRows(ctx context.Context, table string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+QuoteIdentifier(table)+" LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var samples []string
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rendered := make([]string, len(values))
		for i, v := range values {
			rendered[i] = formatValue(v)
		}

		samples = append(samples, Truncate("("+strings.Join(rendered, ", ")+")", sampleRowLimit))
	}

	return samples, rows.Err()
}

// Inspect summarises every table. A failure on one table is recorded on its
// summary and does not stop the others.
func (s *Store) Inspect(ctx context.Context) (*Summary, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Path: s.config.Path, Tables: make([]TableSummary, 0, len(tables))}

	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ts := TableSummary{Name: table}

		if ts.Rows, err = s.RowCount(ctx, table); err == nil {
			if ts.Columns, err = s.Columns(ctx, table); err == nil {
				ts.Samples, err = s.SampleRows(ctx, table, s.config.SampleRows)
			}
		}

		if err != nil {
			s.log.WithError(err).WithField("table", table).Warn("Failed to inspect table")
			ts.Err = err.Error()
		}

		summary.Tables = append(summary.Tables, ts)
	}

	return summary, nil
}

// FindStalePaths searches every column of every table for values matching
// the LIKE pattern. Columns that cannot be queried are skipped.
func (s *Store) FindStalePaths(ctx context.Context, pattern string) ([]StaleMatch, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}

	var matches []StaleMatch

	for _, table := range tables {
		columns, err := s.Columns(ctx, table)
		if err != nil {
			s.log.WithError(err).WithField("table", table).Debug("Skipping table")
			continue
		}

		for _, column := range columns {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			match, err := s.matchColumn(ctx, table, column, pattern)
			if err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"table":  table,
					"column": column,
				}).Debug("Skipping column")
				continue
			}

			if match != nil {
				matches = append(matches, *match)
			}
		}
	}

	return matches, nil
}

func (s *Store) matchColumn(ctx context.Context, table, column, pattern string) (*StaleMatch, error) {
	col := QuoteIdentifier(column)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE CAST(%s AS TEXT) LIKE ?", col, QuoteIdentifier(table), col)

	rows, err := s.db.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	match := &StaleMatch{Table: table, Column: column}
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}

		match.Matches++
		if len(match.Samples) < staleSamples {
			match.Samples = append(match.Samples, Truncate(formatValue(v), staleValueLimit))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if match.Matches == 0 {
		return nil, nil
	}

	return match, nil
}

// RecordedPreview returns the preview path the cache recorded for modelPath.
// The boolean is false when no row exists or the value is NULL.
func (s *Store) RecordedPreview(ctx context.Context, modelPath string) (string, bool, error) {
	lookup := s.config.PreviewLookup
	if lookup == nil {
		return "", false, ErrPreviewLookupNotConfigured
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		QuoteIdentifier(lookup.PreviewColumn),
		QuoteIdentifier(lookup.Table),
		QuoteIdentifier(lookup.KeyColumn),
	)

	var recorded sql.NullString
	err := s.db.QueryRowContext(ctx, query, modelPath).Scan(&recorded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to look up recorded preview: %w", err)
	}

	return recorded.String, recorded.Valid, nil
}

// Truncate shortens s to at most limit runes
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	return string([]rune(s)[:limit])
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		if utf8.Valid(val) {
			return fmt.Sprintf("%q", string(val))
		}
		return fmt.Sprintf("<%d bytes>", len(val))
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
