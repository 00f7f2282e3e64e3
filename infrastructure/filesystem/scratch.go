package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"audio-extract-service/domain/extraction"
)

// ScratchPrefix starts every scratch base name
const ScratchPrefix = "audio-"

// ScratchSpace allocates per-request scratch bases inside a directory
type ScratchSpace struct {
	dir    string
	logger *slog.Logger
	remove func(string) error
	newID  func() string
}

// ScratchOption is a functional option for configuring ScratchSpace
type ScratchOption func(*ScratchSpace)

// WithScratchLogger sets the logger used to report cleanup failures
func WithScratchLogger(logger *slog.Logger) ScratchOption {
	return func(s *ScratchSpace) {
		s.logger = logger
	}
}

// WithRemoveFunc replaces os.Remove (for testing)
func WithRemoveFunc(remove func(string) error) ScratchOption {
	return func(s *ScratchSpace) {
		s.remove = remove
	}
}

// WithIDFunc replaces the random name generator (for testing)
func WithIDFunc(newID func() string) ScratchOption {
	return func(s *ScratchSpace) {
		s.newID = newID
	}
}

// NewScratchSpace creates a scratch allocator rooted at dir. An empty dir uses os.TempDir().
func NewScratchSpace(dir string, opts ...ScratchOption) *ScratchSpace {
	if dir == "" {
		dir = os.TempDir()
	}
	s := &ScratchSpace{
		dir:    dir,
		logger: slog.Default(),
		remove: os.Remove,
		newID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Dir returns the directory scratch bases are created in
func (s *ScratchSpace) Dir() string {
	return s.dir
}

// Allocate reserves a fresh, collision-resistant base path. No file is created.
func (s *ScratchSpace) Allocate() (extraction.Scratch, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	return &Scratch{
		base:   filepath.Join(s.dir, ScratchPrefix+s.newID()),
		logger: s.logger,
		remove: s.remove,
	}, nil
}

// Scratch owns every file sharing one base path
type Scratch struct {
	base   string
	logger *slog.Logger
	remove func(string) error

	once   sync.Once
	result extraction.CleanupResult
}

// Base returns the extensionless path prefix
func (s *Scratch) Base() string {
	return s.base
}

// Release removes <base><ext> for every candidate extension and any other
// <base>.* sibling left behind by a partial extraction. The work runs once;
// later calls return the first result.
func (s *Scratch) Release() extraction.CleanupResult {
	s.once.Do(func() {
		s.result = s.release()
	})
	return s.result
}

func (s *Scratch) release() extraction.CleanupResult {
	var result extraction.CleanupResult
	seen := make(map[string]bool)

	removeOne := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true

		err := s.remove(path)
		switch {
		case err == nil:
			result.Removed = append(result.Removed, path)
		case errors.Is(err, fs.ErrNotExist):
			// never written
		default:
			result.Failed = append(result.Failed, extraction.CleanupFailure{Path: path, Err: err})
			s.logger.Warn("scratch cleanup failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}

	removeOne(s.base)
	for _, ext := range extraction.CandidateExtensions {
		removeOne(s.base + ext)
	}

	matches, err := filepath.Glob(globEscape(s.base) + ".*")
	if err != nil {
		s.logger.Warn("scratch glob failed", slog.String("base", s.base), slog.String("error", err.Error()))
	}
	for _, m := range matches {
		removeOne(m)
	}

	s.logger.Debug("scratch released",
		slog.String("base", s.base),
		slog.Int("removed", len(result.Removed)),
		slog.Int("failed", len(result.Failed)),
	)
	return result
}

// globEscape quotes glob metacharacters that may appear in the scratch directory
func globEscape(path string) string {
	out := make([]rune, 0, len(path))
	for _, r := range path {
		switch r {
		case '*', '?', '[', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// Ensure ScratchSpace implements extraction.ScratchAllocator
var _ extraction.ScratchAllocator = (*ScratchSpace)(nil)
