package extraction

import (
	"context"
	"errors"
	"os"
	"sync"

	"audio-extract-service/domain/extraction"
)

// --- Mock implementations for testing ---

// mockBackend implements extraction.Backend for testing
type mockBackend struct {
	name       string
	probeErr   error
	writeExts  []string // files written under the scratch base
	reported   []string // extensions reported back; nil reports nothing
	extractErr error

	mu         sync.Mutex
	probeCalls int
	bases      []string
}

func (m *mockBackend) Name() string {
	return m.name
}

func (m *mockBackend) Probe(ctx context.Context) error {
	m.mu.Lock()
	m.probeCalls++
	m.mu.Unlock()
	return m.probeErr
}

func (m *mockBackend) Extract(ctx context.Context, req *extraction.ExtractionRequest, base string) ([]string, error) {
	m.mu.Lock()
	m.bases = append(m.bases, base)
	m.mu.Unlock()

	for _, ext := range m.writeExts {
		if err := os.WriteFile(base+ext, []byte(req.VideoID+ext), 0o644); err != nil {
			return nil, err
		}
	}
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	var paths []string
	for _, ext := range m.reported {
		paths = append(paths, base+ext)
	}
	return paths, nil
}

// mockExpectingBackend adds ExpectedExtension like the yt-dlp backend
type mockExpectingBackend struct {
	*mockBackend
	expected string
}

func (m *mockExpectingBackend) ExpectedExtension() string {
	return m.expected
}

var _ extraction.ExpectedExtensioner = (*mockExpectingBackend)(nil)

// mockFileChecker implements extraction.FileChecker for testing
type mockFileChecker struct {
	existingFiles map[string]bool
	checked       []string
}

func (m *mockFileChecker) Exists(path string) bool {
	m.checked = append(m.checked, path)
	return m.existingFiles[path]
}

// failingReader wraps a real store and fails every read
type failingReader struct {
	FileStore
}

func (f failingReader) ReadFile(path string) ([]byte, error) {
	return nil, errors.New("permission denied")
}

// mockResolver implements BackendResolver with a fixed answer
type mockResolver struct {
	backend extraction.Backend
	err     error
}

func (m *mockResolver) Resolve(ctx context.Context) (extraction.Backend, error) {
	return m.backend, m.err
}

func writeBlocker(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}
