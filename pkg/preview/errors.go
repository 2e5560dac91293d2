package preview

import (
	"errors"
	"fmt"
)

// Resolution errors
var (
	ErrDirectoryUnavailable     = errors.New("directory unavailable")
	ErrEntryMetadataUnavailable = errors.New("entry metadata unavailable")
	ErrCandidateAccess          = errors.New("candidate access error")
	ErrEmptyModelPath           = errors.New("model path is empty")
	ErrIndexDirectoryMismatch   = errors.New("index belongs to a different directory")
)

// DirectoryUnavailableError is returned when a directory cannot be listed.
// Only the index for that directory is affected.
type DirectoryUnavailableError struct {
	Dir string
	Err error
}

func (e *DirectoryUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDirectoryUnavailable, e.Dir, e.Err)
}

// Unwrap exposes both the sentinel and the underlying filesystem error.
func (e *DirectoryUnavailableError) Unwrap() []error {
	return []error{ErrDirectoryUnavailable, e.Err}
}

// EntryError records a directory entry whose metadata could not be read.
type EntryError struct {
	Name string
	Err  error
}

func (e EntryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrEntryMetadataUnavailable, e.Name, e.Err)
}

// Unwrap exposes both the sentinel and the underlying filesystem error.
func (e EntryError) Unwrap() []error {
	return []error{ErrEntryMetadataUnavailable, e.Err}
}

// CandidateAccessError is a direct existence check that failed for a reason
// other than the file not existing. It counts as "not found".
type CandidateAccessError struct {
	Path string
	Err  error
}

func (e *CandidateAccessError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCandidateAccess, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying filesystem error.
func (e *CandidateAccessError) Unwrap() []error {
	return []error{ErrCandidateAccess, e.Err}
}
