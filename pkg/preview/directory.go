package preview

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// DirectoryResult aggregates the resolutions for every model in one directory.
type DirectoryResult struct {
	Dir           string          `json:"dir"`
	Index         *DirectoryIndex `json:"-"`
	Results       []*Result       `json:"results"`
	Found         int             `json:"found"`
	NotFound      int             `json:"not_found"`
	Disagreements int             `json:"disagreements"`
	FoldedMatches int             `json:"folded_matches"`
	AccessErrors  int             `json:"access_errors"`
}

// ResolveDirectory builds one index for dir and resolves each model name (or
// path) against it. Models are resolved in the order given.
func (r *Resolver) ResolveDirectory(dir string, models []string) (*DirectoryResult, error) {
	index, err := BuildDirectoryIndex(dir)
	if err != nil {
		return nil, err
	}

	return r.ResolveWithIndex(index, models)
}

// ResolveWithIndex resolves models against an index that was already built.
func (r *Resolver) ResolveWithIndex(index *DirectoryIndex, models []string) (*DirectoryResult, error) {
	out := &DirectoryResult{
		Dir:     index.Dir,
		Index:   index,
		Results: make([]*Result, 0, len(models)),
	}

	for _, model := range models {
		path := model
		if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
			path = filepath.Join(index.Dir, model)
		}

		result, err := r.Resolve(path, index)
		if err != nil {
			return nil, err
		}

		out.add(result)
	}

	r.log.WithFields(logrus.Fields{
		"dir":           out.Dir,
		"models":        len(out.Results),
		"found":         out.Found,
		"not_found":     out.NotFound,
		"disagreements": out.Disagreements,
	}).Debug("Resolved directory")

	return out, nil
}

func (d *DirectoryResult) add(result *Result) {
	d.Results = append(d.Results, result)

	switch result.Verdict {
	case VerdictFound:
		d.Found++
	case VerdictDisagreement:
		d.Disagreements++
	case VerdictNotFound:
		d.NotFound++
	}

	if result.Cached.Match == MatchCaseFolded {
		d.FoldedMatches++
	}

	d.AccessErrors += len(result.AccessErrors)
}

// CachedFound counts models with any candidate in the cached listing. This is
// independent of the candidate the direct strategy settled on.
func (d *DirectoryResult) CachedFound() int {
	n := 0
	for _, result := range d.Results {
		if result.ListedName != "" {
			n++
		}
	}

	return n
}

// DirectFound counts models where the direct strategy matched the deciding
// candidate.
func (d *DirectoryResult) DirectFound() int {
	n := 0
	for _, result := range d.Results {
		if result.Direct.Found {
			n++
		}
	}

	return n
}
