package metacache

import "errors"

// Metadata cache errors
var (
	ErrDatabaseNotFound           = errors.New("metadata cache database not found")
	ErrInvalidSampleRows          = errors.New("sampleRows must not be negative")
	ErrIncompletePreviewLookup    = errors.New("previewLookup requires table, keyColumn and previewColumn")
	ErrPreviewLookupNotConfigured = errors.New("previewLookup is not configured")
)
