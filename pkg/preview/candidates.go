// Package preview decides whether a model file has a preview image, and
// whether a direct filesystem check agrees with a cached directory listing.
package preview

import (
	"path/filepath"
	"strings"
)

// previewInfix marks the ".preview." naming convention.
const previewInfix = ".preview."

// Extensions lists the preview image extensions in lookup order.
//
//nolint:gochecknoglobals // Fixed lookup order shared by every call site
var Extensions = []string{"png", "jpg", "jpeg", "webp", "gif"}

// CandidateCount is the number of candidates produced per stem.
const CandidateCount = 10

// Stem returns the model path with its trailing extension removed.
func Stem(modelPath string) string {
	return strings.TrimSuffix(modelPath, filepath.Ext(modelPath))
}

// BuildCandidates returns the preview candidates for stem in lookup order.
// Iteration is extension-major and the bare form (stem.png) precedes the
// preview form (stem.preview.png), so a bare image wins when both exist.
func BuildCandidates(stem string) []string {
	candidates := make([]string, 0, len(Extensions)*2)
	for _, ext := range Extensions {
		candidates = append(candidates,
			stem+"."+ext,
			stem+previewInfix+ext,
		)
	}

	return candidates
}

// IsPreviewName reports whether name uses the ".preview." convention.
func IsPreviewName(name string) bool {
	return strings.Contains(name, previewInfix)
}
