package preview

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Strategy names the evidence source(s) that found a preview.
type Strategy string

// Strategies reported in a Result
const (
	StrategyNone   Strategy = "none"
	StrategyDirect Strategy = "direct"
	StrategyCached Strategy = "cached"
	StrategyBoth   Strategy = "both"
)

// Verdict is the outcome of resolving one model.
type Verdict string

// Verdicts reported in a Result
const (
	VerdictFound        Verdict = "found"
	VerdictNotFound     Verdict = "not_found"
	VerdictDisagreement Verdict = "disagreement"
)

// StatFunc matches os.Stat.
type StatFunc func(name string) (fs.FileInfo, error)

// DirectEvidence is the direct-stat outcome for one candidate.
type DirectEvidence struct {
	Found bool  `json:"found"`
	Err   error `json:"-"`
}

// CachedEvidence is the cached-index outcome for one candidate.
type CachedEvidence struct {
	Evaluated   bool      `json:"evaluated"`
	Found       bool      `json:"found"`
	Match       MatchKind `json:"match"`
	IndexedName string    `json:"indexed_name,omitempty"`
}

// Result is the resolution outcome for one model path.
type Result struct {
	ModelPath     string         `json:"model_path"`
	Stem          string         `json:"stem"`
	Candidate     string         `json:"candidate,omitempty"`
	CandidateName string         `json:"candidate_name,omitempty"`
	Direct        DirectEvidence `json:"direct"`
	Cached        CachedEvidence `json:"cached"`
	Strategy      Strategy       `json:"strategy"`
	Verdict       Verdict        `json:"verdict"`
	// ListedName is the first candidate the index contains, checked across
	// every candidate rather than only the deciding one.
	ListedName   string  `json:"listed_name,omitempty"`
	AccessErrors []error `json:"-"`
}

// Found reports whether either strategy located a preview.
func (r *Result) Found() bool {
	return r.Verdict != VerdictNotFound
}

// Disagree reports whether the two strategies disagreed on the candidate.
func (r *Result) Disagree() bool {
	return r.Verdict == VerdictDisagreement
}

// CandidateCheck is the evidence gathered for a single candidate by Trace.
type CandidateCheck struct {
	Path   string         `json:"path"`
	Name   string         `json:"name"`
	Direct DirectEvidence `json:"direct"`
	Cached CachedEvidence `json:"cached"`
}

// Resolver locates preview images for model files.
type Resolver struct {
	stat StatFunc
	log  logrus.FieldLogger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStatFunc replaces the stat call used by the direct strategy.
func WithStatFunc(stat StatFunc) Option {
	return func(r *Resolver) {
		r.stat = stat
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Resolver) {
		r.log = log.WithField("component", "preview-resolver")
	}
}

// NewResolver creates a resolver backed by os.Stat.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{stat: os.Stat}

	for _, opt := range opts {
		opt(r)
	}

	if r.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		r.log = discard
	}

	return r
}

// ExistsDirect reports whether path is a regular file right now. A missing
// file is (false, nil); any other stat failure is (false, *CandidateAccessError).
func (r *Resolver) ExistsDirect(path string) (bool, error) {
	info, err := r.stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, &CandidateAccessError{Path: path, Err: err}
	}

	return info.Mode().IsRegular(), nil
}

// Resolve walks the candidates for modelPath in order and stops at the first
// one matched by either strategy. Both strategies are always evaluated for
// that candidate so a disagreement is reported rather than hidden. index may
// be nil, in which case only the direct strategy runs.
func (r *Resolver) Resolve(modelPath string, index *DirectoryIndex) (*Result, error) {
	if modelPath == "" {
		return nil, ErrEmptyModelPath
	}

	if index != nil && !index.Covers(filepath.Dir(modelPath)) {
		return nil, ErrIndexDirectoryMismatch
	}

	stem := Stem(modelPath)
	result := &Result{
		ModelPath: modelPath,
		Stem:      stem,
		Strategy:  StrategyNone,
		Verdict:   VerdictNotFound,
		Cached:    CachedEvidence{Match: MatchNone},
	}

	candidates := BuildCandidates(stem)
	for _, candidate := range candidates {
		check := r.check(candidate, index)
		if check.Direct.Err != nil {
			result.AccessErrors = append(result.AccessErrors, check.Direct.Err)
		}

		if !check.Direct.Found && !check.Cached.Found {
			continue
		}

		result.Candidate = check.Path
		result.CandidateName = check.Name
		result.Direct = check.Direct
		result.Cached = check.Cached
		result.Strategy, result.Verdict = judge(check)

		break
	}

	if index != nil {
		result.ListedName = firstListed(index, candidates)
	}

	r.log.WithFields(logrus.Fields{
		"model":     modelPath,
		"candidate": result.CandidateName,
		"strategy":  result.Strategy,
		"verdict":   result.Verdict,
	}).Debug("Resolved preview")

	return result, nil
}

// Trace evaluates both strategies for each candidate in order, up to and
// including the first candidate the direct strategy finds.
func (r *Resolver) Trace(modelPath string, index *DirectoryIndex) ([]CandidateCheck, error) {
	if modelPath == "" {
		return nil, ErrEmptyModelPath
	}

	if index != nil && !index.Covers(filepath.Dir(modelPath)) {
		return nil, ErrIndexDirectoryMismatch
	}

	candidates := BuildCandidates(Stem(modelPath))
	checks := make([]CandidateCheck, 0, len(candidates))

	for _, candidate := range candidates {
		check := r.check(candidate, index)
		checks = append(checks, check)

		if check.Direct.Found {
			break
		}
	}

	return checks, nil
}

func (r *Resolver) check(candidate string, index *DirectoryIndex) CandidateCheck {
	check := CandidateCheck{
		Path:   candidate,
		Name:   filepath.Base(candidate),
		Cached: CachedEvidence{Match: MatchNone},
	}

	check.Direct.Found, check.Direct.Err = r.ExistsDirect(candidate)

	if index != nil {
		check.Cached.Evaluated = true
		check.Cached.Found, check.Cached.Match, check.Cached.IndexedName = index.Lookup(check.Name)
	}

	return check
}

func firstListed(index *DirectoryIndex, candidates []string) string {
	for _, candidate := range candidates {
		if found, _, name := index.Lookup(filepath.Base(candidate)); found {
			return name
		}
	}

	return ""
}

func judge(check CandidateCheck) (Strategy, Verdict) {
	switch {
	case check.Direct.Found && check.Cached.Found:
		return StrategyBoth, VerdictFound
	case check.Direct.Found && !check.Cached.Evaluated:
		return StrategyDirect, VerdictFound
	case check.Direct.Found:
		return StrategyDirect, VerdictDisagreement
	default:
		return StrategyCached, VerdictDisagreement
	}
}
