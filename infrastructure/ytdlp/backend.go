package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"audio-extract-service/domain/extraction"
)

const (
	// DefaultAudioFormat is the post-processed audio encoding requested from yt-dlp
	DefaultAudioFormat = "mp3"
	// DefaultProbeTimeout bounds the --version liveness check
	DefaultProbeTimeout = 5 * time.Second
	// DefaultExtractTimeout bounds a whole extraction
	DefaultExtractTimeout = 300 * time.Second
)

// Backend implements extraction.Backend by invoking one yt-dlp executable candidate
type Backend struct {
	path            string
	audioFormat     string
	probeTimeout    time.Duration
	extractTimeout  time.Duration
	diagnosticLimit int
	runner          CommandRunner
	stat            func(string) (os.FileInfo, error)
	logger          *slog.Logger
}

// BackendOption is a functional option for configuring Backend
type BackendOption func(*Backend)

// WithAudioFormat sets the --audio-format value
func WithAudioFormat(format string) BackendOption {
	return func(b *Backend) {
		if format != "" {
			b.audioFormat = strings.TrimPrefix(strings.ToLower(format), ".")
		}
	}
}

// WithProbeTimeout sets the liveness check timeout
func WithProbeTimeout(d time.Duration) BackendOption {
	return func(b *Backend) {
		if d > 0 {
			b.probeTimeout = d
		}
	}
}

// WithExtractTimeout sets the overall extraction timeout
func WithExtractTimeout(d time.Duration) BackendOption {
	return func(b *Backend) {
		if d > 0 {
			b.extractTimeout = d
		}
	}
}

// WithDiagnosticLimit sets how many characters of stderr are kept in errors
func WithDiagnosticLimit(n int) BackendOption {
	return func(b *Backend) {
		if n > 0 {
			b.diagnosticLimit = n
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) BackendOption {
	return func(b *Backend) {
		b.runner = runner
	}
}

// WithStat replaces os.Stat (for testing)
func WithStat(stat func(string) (os.FileInfo, error)) BackendOption {
	return func(b *Backend) {
		b.stat = stat
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) BackendOption {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBackend creates a backend for the executable at path
func NewBackend(path string, opts ...BackendOption) *Backend {
	b := &Backend{
		path:            path,
		audioFormat:     DefaultAudioFormat,
		probeTimeout:    DefaultProbeTimeout,
		extractTimeout:  DefaultExtractTimeout,
		diagnosticLimit: extraction.DefaultDiagnosticLimit,
		runner:          &ExecCommandRunner{},
		stat:            os.Stat,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Name implements extraction.Backend
func (b *Backend) Name() string {
	return "yt-dlp:" + b.path
}

// Path returns the executable candidate path
func (b *Backend) Path() string {
	return b.path
}

// ExpectedExtension returns the extension yt-dlp writes after post-processing
func (b *Backend) ExpectedExtension() string {
	return "." + b.audioFormat
}

// Probe implements extraction.Backend by running the executable with --version.
// An absolute or relative path that does not exist is rejected without launching.
func (b *Backend) Probe(ctx context.Context) error {
	if strings.ContainsRune(b.path, filepath.Separator) {
		info, err := b.stat(b.path)
		if err != nil {
			return fmt.Errorf("yt-dlp candidate %s: %w", b.path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("yt-dlp candidate %s is a directory", b.path)
		}
	}

	probeCtx, cancel := context.WithTimeout(ctx, b.probeTimeout)
	defer cancel()

	out, err := b.runner.Output(probeCtx, b.path, "--version")
	if err != nil {
		if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("yt-dlp candidate %s timed out after %s", b.path, b.probeTimeout)
		}
		return fmt.Errorf("yt-dlp candidate %s not executable: %w", b.path, err)
	}

	b.logger.Debug("yt-dlp candidate live",
		slog.String("path", b.path),
		slog.String("version", strings.TrimSpace(string(out))),
	)
	return nil
}

// Arguments returns the yt-dlp arguments for one extraction
func (b *Backend) Arguments(req *extraction.ExtractionRequest, scratchBase string) []string {
	return []string{
		"--no-playlist",
		"--no-progress",
		"-f", "bestaudio/best", // Best available audio stream
		"-x",                   // Extract audio
		"--audio-format", b.audioFormat,
		"--audio-quality", "0", // Best quality
		"-o", scratchBase + ".%(ext)s",
		req.SourceURL(),
	}
}

// Extract implements extraction.Backend
func (b *Backend) Extract(ctx context.Context, req *extraction.ExtractionRequest, scratchBase string) ([]string, error) {
	runCtx, cancel := context.WithTimeout(ctx, b.extractTimeout)
	defer cancel()

	started := time.Now()
	stderr, err := b.runner.Run(runCtx, b.path, b.Arguments(req, scratchBase)...)
	if err != nil {
		detail := strings.TrimSpace(string(stderr))
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, extraction.NewError(extraction.KindExtractionTimeout,
				fmt.Sprintf("yt-dlp did not finish within %s", b.extractTimeout),
				detail, b.diagnosticLimit, err)
		}
		if detail == "" {
			detail = err.Error()
		}
		return nil, extraction.NewError(extraction.KindExtractionFailed,
			"Failed to extract audio", detail, b.diagnosticLimit, err)
	}

	b.logger.Debug("yt-dlp finished",
		slog.String("video_id", req.VideoID),
		slog.Duration("elapsed", time.Since(started)),
	)
	return []string{scratchBase + b.ExpectedExtension()}, nil
}

// Ensure Backend implements extraction.Backend and reports its output extension
var (
	_ extraction.Backend             = (*Backend)(nil)
	_ extraction.ExpectedExtensioner = (*Backend)(nil)
)
