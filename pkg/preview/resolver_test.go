package preview

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_ExistsDirect(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model.png")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "model.jpg"), 0o755))

	r := NewResolver()

	found, err := r.ExistsDirect(filepath.Join(dir, "model.png"))
	require.NoError(t, err)
	assert.True(t, found)

	found, err = r.ExistsDirect(filepath.Join(dir, "missing.png"))
	require.NoError(t, err)
	assert.False(t, found)

	// Directories are not previews
	found, err = r.ExistsDirect(filepath.Join(dir, "model.jpg"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolver_ExistsDirect_AccessError(t *testing.T) {
	r := NewResolver(WithStatFunc(func(string) (fs.FileInfo, error) {
		return nil, &fs.PathError{Op: "stat", Path: "/locked/model.png", Err: fs.ErrPermission}
	}))

	found, err := r.ExistsDirect("/locked/model.png")
	assert.False(t, found)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCandidateAccess)
	assert.ErrorIs(t, err, fs.ErrPermission)

	var accessErr *CandidateAccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, "/locked/model.png", accessErr.Path)
}

func TestResolver_Resolve_AgreeingPreview(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "animij_v8.safetensors", "animij_v8.preview.png")

	idx, err := BuildDirectoryIndex(dir)
	require.NoError(t, err)

	result, err := NewResolver().Resolve(filepath.Join(dir, "animij_v8.safetensors"), idx)
	require.NoError(t, err)

	assert.True(t, result.Found())
	assert.False(t, result.Disagree())
	assert.Equal(t, VerdictFound, result.Verdict)
	assert.Equal(t, StrategyBoth, result.Strategy)
	assert.Equal(t, "animij_v8.preview.png", result.CandidateName)
	assert.Equal(t, filepath.Join(dir, "animij_v8.preview.png"), result.Candidate)
	assert.Equal(t, MatchExact, result.Cached.Match)
	assert.True(t, result.Direct.Found)
	assert.Empty(t, result.AccessErrors)
}

func TestResolver_Resolve_NoPreview(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model.safetensors")

	idx, err := BuildDirectoryIndex(dir)
	require.NoError(t, err)

	result, err := NewResolver().Resolve(filepath.Join(dir, "model.safetensors"), idx)
	require.NoError(t, err)

	assert.False(t, result.Found())
	assert.False(t, result.Disagree())
	assert.Equal(t, VerdictNotFound, result.Verdict)
	assert.Equal(t, StrategyNone, result.Strategy)
	assert.False(t, result.Direct.Found)
	assert.False(t, result.Cached.Found)
	assert.Equal(t, MatchNone, result.Cached.Match)
	assert.Empty(t, result.Candidate)
}

func TestResolver_Resolve_BarePreferredOverPreview(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model.safetensors", "model.png", "model.preview.png")

	idx, err := BuildDirectoryIndex(dir)
	require.NoError(t, err)

	r := NewResolver()

	for _, index := range []*DirectoryIndex{idx, nil} {
		result, err := r.Resolve(filepath.Join(dir, "model.safetensors"), index)
		require.NoError(t, err)
		assert.Equal(t, "model.png", result.CandidateName)
		assert.Equal(t, VerdictFound, result.Verdict)
	}
}

func TestResolver_Resolve_ExtensionOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model.safetensors", "model.preview.jpg", "model.webp")

	result, err := NewResolver().Resolve(filepath.Join(dir, "model.safetensors"), nil)
	require.NoError(t, err)

	assert.Equal(t, "model.preview.jpg", result.CandidateName)
	assert.Equal(t, StrategyDirect, result.Strategy)
	assert.False(t, result.Cached.Evaluated)
}

func TestResolver_Resolve_StaleIndexDisagreement(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model.safetensors")

	idx, err := BuildDirectoryIndex(dir)
	require.NoError(t, err)

	// Preview appears after the snapshot was taken
	touch(t, dir, "model.preview.png")

	result, err := NewResolver().Resolve(filepath.Join(dir, "model.safetensors"), idx)
	require.NoError(t, err)

	assert.Equal(t, VerdictDisagreement, result.Verdict)
	assert.True(t, result.Disagree())
	assert.True(t, result.Found())
	assert.Equal(t, StrategyDirect, result.Strategy)
	assert.Equal(t, "model.preview.png", result.CandidateName)
	assert.True(t, result.Direct.Found)
	assert.True(t, result.Cached.Evaluated)
	assert.False(t, result.Cached.Found)
}

func TestResolver_Resolve_CachedOnlyDisagreement(t *testing.T) {
	// The index remembers a preview that has since been removed
	idx := NewDirectoryIndex("/models", []Entry{
		{Name: "model.safetensors"},
		{Name: "model.preview.png"},
	}, nil)

	r := NewResolver(WithStatFunc(func(string) (fs.FileInfo, error) {
		return nil, fs.ErrNotExist
	}))

	result, err := r.Resolve("/models/model.safetensors", idx)
	require.NoError(t, err)

	assert.Equal(t, VerdictDisagreement, result.Verdict)
	assert.Equal(t, StrategyCached, result.Strategy)
	assert.Equal(t, MatchExact, result.Cached.Match)
	assert.False(t, result.Direct.Found)
}

func TestResolver_Resolve_CaseFoldedMatch(t *testing.T) {
	idx := NewDirectoryIndex("/models", []Entry{
		{Name: "model.safetensors"},
		{Name: "Model.PNG"},
	}, nil)

	tests := []struct {
		name     string
		onDisk   bool
		strategy Strategy
		verdict  Verdict
	}{
		{
			name:     "case insensitive filesystem",
			onDisk:   true,
			strategy: StrategyBoth,
			verdict:  VerdictFound,
		},
		{
			name:     "case sensitive filesystem",
			onDisk:   false,
			strategy: StrategyCached,
			verdict:  VerdictDisagreement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(WithStatFunc(func(name string) (fs.FileInfo, error) {
				if tt.onDisk && name == "/models/model.png" {
					return fakeFile{name: "model.png"}, nil
				}

				return nil, fs.ErrNotExist
			}))

			result, err := r.Resolve("/models/model.safetensors", idx)
			require.NoError(t, err)

			assert.Equal(t, "model.png", result.CandidateName)
			assert.Equal(t, MatchCaseFolded, result.Cached.Match)
			assert.Equal(t, "Model.PNG", result.Cached.IndexedName)
			assert.Equal(t, tt.strategy, result.Strategy)
			assert.Equal(t, tt.verdict, result.Verdict)
		})
	}
}

func TestResolver_Resolve_AccessErrorsRecorded(t *testing.T) {
	r := NewResolver(WithStatFunc(func(name string) (fs.FileInfo, error) {
		if name == "/models/model.png" {
			return nil, fs.ErrPermission
		}

		if name == "/models/model.preview.png" {
			return fakeFile{name: "model.preview.png"}, nil
		}

		return nil, fs.ErrNotExist
	}))

	result, err := r.Resolve("/models/model.safetensors", nil)
	require.NoError(t, err)

	assert.Equal(t, VerdictFound, result.Verdict)
	assert.Equal(t, "model.preview.png", result.CandidateName)
	require.Len(t, result.AccessErrors, 1)
	assert.ErrorIs(t, result.AccessErrors[0], ErrCandidateAccess)
}

func TestResolver_Resolve_Errors(t *testing.T) {
	r := NewResolver()

	_, err := r.Resolve("", nil)
	assert.ErrorIs(t, err, ErrEmptyModelPath)

	idx := NewDirectoryIndex("/models/Lora", nil, nil)
	_, err = r.Resolve("/models/Stable-diffusion/model.safetensors", idx)
	assert.ErrorIs(t, err, ErrIndexDirectoryMismatch)
}

func TestResolver_Trace(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model.safetensors", "model.jpg", "model.gif")

	idx, err := BuildDirectoryIndex(dir)
	require.NoError(t, err)

	checks, err := NewResolver().Trace(filepath.Join(dir, "model.safetensors"), idx)
	require.NoError(t, err)

	// png, preview.png, jpg
	require.Len(t, checks, 3)
	assert.Equal(t, "model.png", checks[0].Name)
	assert.False(t, checks[0].Direct.Found)
	assert.False(t, checks[0].Cached.Found)
	assert.Equal(t, "model.jpg", checks[2].Name)
	assert.True(t, checks[2].Direct.Found)
	assert.True(t, checks[2].Cached.Found)
}

func TestResolver_Trace_NoHit(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model.safetensors")

	checks, err := NewResolver().Trace(filepath.Join(dir, "model.safetensors"), nil)
	require.NoError(t, err)

	assert.Len(t, checks, CandidateCount)
	for _, c := range checks {
		assert.False(t, c.Cached.Evaluated)
	}
}

func TestResolver_WithLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	r := NewResolver(WithLogger(logger))

	_, err := r.Resolve("/nowhere/model.safetensors", nil)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "preview-resolver", entry.Data["component"])
	assert.Equal(t, VerdictNotFound, entry.Data["verdict"])
}

type fakeFile struct {
	fs.FileInfo
	name string
}

func (f fakeFile) Name() string      { return f.name }
func (f fakeFile) Mode() fs.FileMode { return 0o644 }

func statNothing(string) (fs.FileInfo, error) {
	return nil, fs.ErrNotExist
}
