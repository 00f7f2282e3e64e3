package extraction

import (
	"iter"
	"path/filepath"
	"strings"

	"audio-extract-service/domain/extraction"
)

// ArtifactResolver maps extractor output to the single file that was written
type ArtifactResolver struct {
	files extraction.FileChecker
}

// NewArtifactResolver creates a resolver backed by files
func NewArtifactResolver(files extraction.FileChecker) *ArtifactResolver {
	return &ArtifactResolver{files: files}
}

// CandidatePaths yields, without repeats, the paths reported by the backend,
// the expected path, then the base with each known extension. Reported paths
// outside the scratch base are ignored.
func CandidatePaths(scratchBase, expectedExt string, reported []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]bool)
		emit := func(path string) bool {
			if path == "" || seen[path] {
				return true
			}
			seen[path] = true
			return yield(path)
		}

		for _, path := range reported {
			if !strings.HasPrefix(path, scratchBase) {
				continue
			}
			if !emit(path) {
				return
			}
		}
		if expectedExt != "" {
			if !emit(scratchBase + expectedExt) {
				return
			}
		}
		for _, ext := range extraction.CandidateExtensions {
			if !emit(scratchBase + ext) {
				return
			}
		}
	}
}

// Resolve returns the first candidate path present on disk
func (r *ArtifactResolver) Resolve(scratchBase, expectedExt string, reported []string) (*extraction.ResolvedFile, error) {
	for path := range CandidatePaths(scratchBase, expectedExt, reported) {
		if !r.files.Exists(path) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(path))
		return &extraction.ResolvedFile{
			Path:      path,
			Extension: ext,
			MediaType: extraction.MediaTypeFor(ext),
		}, nil
	}

	return nil, extraction.Errorf(extraction.KindNoOutputProduced,
		"extraction reported success but no output file was found at %s", filepath.Base(scratchBase))
}
