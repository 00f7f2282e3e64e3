package ytdlp

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"audio-extract-service/domain/extraction"
)

// DefaultExecutableName is the bare invocation name of the extractor
const DefaultExecutableName = "yt-dlp"

// DefaultSearchDirs are package-manager install locations checked after the
// directory of the running binary
var DefaultSearchDirs = []string{
	"/opt/homebrew/bin", // Homebrew on Apple Silicon
	"/usr/local/bin",    // Homebrew on Intel, manual installs
	"/usr/bin",          // distribution packages
	"~/.local/bin",      // pip --user
}

// Locator enumerates executable candidates in priority order
type Locator struct {
	name       string
	searchDirs []string
	executable func() (string, error)
	lookPath   func(string) (string, error)
	homeDir    func() (string, error)
}

// LocatorOption is a functional option for configuring Locator
type LocatorOption func(*Locator)

// WithExecutableName sets the executable name to look for
func WithExecutableName(name string) LocatorOption {
	return func(l *Locator) {
		if name != "" {
			l.name = name
		}
	}
}

// WithSearchDirs replaces the package-manager directories
func WithSearchDirs(dirs []string) LocatorOption {
	return func(l *Locator) {
		l.searchDirs = dirs
	}
}

// WithLookPath replaces exec.LookPath (for testing)
func WithLookPath(lookPath func(string) (string, error)) LocatorOption {
	return func(l *Locator) {
		l.lookPath = lookPath
	}
}

// WithSelfExecutable replaces os.Executable (for testing)
func WithSelfExecutable(executable func() (string, error)) LocatorOption {
	return func(l *Locator) {
		l.executable = executable
	}
}

// NewLocator creates a candidate locator
func NewLocator(opts ...LocatorOption) *Locator {
	l := &Locator{
		name:       DefaultExecutableName,
		searchDirs: DefaultSearchDirs,
		executable: os.Executable,
		lookPath:   exec.LookPath,
		homeDir:    os.UserHomeDir,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Name returns the bare executable name
func (l *Locator) Name() string {
	return l.name
}

// Candidates returns deduplicated executable candidates: next to the running
// binary, the search directories, the PATH lookup, then the bare name.
// It is evaluated on every call so a newly installed executable is picked up.
func (l *Locator) Candidates() []string {
	var raw []string

	if self, err := l.executable(); err == nil && self != "" {
		raw = append(raw, filepath.Join(filepath.Dir(self), l.name))
	}

	for _, dir := range l.searchDirs {
		dir = l.expandHome(strings.TrimSpace(dir))
		if dir == "" {
			continue
		}
		raw = append(raw, filepath.Join(dir, l.name))
	}

	if found, err := l.lookPath(l.name); err == nil {
		raw = append(raw, found)
	}

	raw = append(raw, l.name)

	seen := make(map[string]bool, len(raw))
	candidates := make([]string, 0, len(raw))
	for _, c := range raw {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		candidates = append(candidates, c)
	}
	return candidates
}

func (l *Locator) expandHome(dir string) string {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir
	}
	home, err := l.homeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~"))
}

// Backends builds one Backend per candidate, in priority order
func (l *Locator) Backends(opts ...BackendOption) []extraction.Backend {
	candidates := l.Candidates()
	backends := make([]extraction.Backend, 0, len(candidates))
	for _, c := range candidates {
		backends = append(backends, NewBackend(c, opts...))
	}
	return backends
}
