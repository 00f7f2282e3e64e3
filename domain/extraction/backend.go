package extraction

import "context"

// Backend is one way of performing extraction: an external executable or an
// in-process library. This is a port implemented by infrastructure adapters.
type Backend interface {
	// Name identifies the backend in logs and probe reports
	Name() string

	// Probe performs a bounded liveness check; a nil error means the backend is usable
	Probe(ctx context.Context) error

	// Extract writes the audio for req under scratchBase and returns the paths it
	// believes it wrote. The extension of those paths is chosen by the backend.
	Extract(ctx context.Context, req *ExtractionRequest, scratchBase string) ([]string, error)
}

// ExpectedExtensioner is implemented by backends that know in advance which
// extension their output will carry. The artifact resolver checks that path
// before the generic extension list.
type ExpectedExtensioner interface {
	ExpectedExtension() string
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if a regular file exists at path
	Exists(path string) bool
}

// FileReader loads a resolved artifact into memory
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Scratch is the transient filesystem namespace owned by one request
type Scratch interface {
	// Base returns the unique extensionless path prefix
	Base() string

	// Release removes every file that may exist under Base. Safe to call more than once.
	Release() CleanupResult
}

// ScratchAllocator hands out a fresh Scratch per request
type ScratchAllocator interface {
	Allocate() (Scratch, error)
}
