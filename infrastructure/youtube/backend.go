package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kkdai/youtube/v2"

	"audio-extract-service/domain/extraction"
)

// DefaultExtractTimeout bounds a whole in-process extraction
const DefaultExtractTimeout = 300 * time.Second

// ErrDisabled is returned by Probe when the library backend is switched off
var ErrDisabled = errors.New("in-process youtube library disabled")

// VideoClient is the subset of *youtube.Client the backend uses
type VideoClient interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// FormatPreference is one entry of the ordered format selection list
type FormatPreference struct {
	MimePrefix string
	Extension  string
	AudioOnly  bool
}

// FormatPreferences orders formats by desirability: compact audio-only
// containers first, combined audio+video streams only when nothing else exists.
// Combined streams keep their container extension and are served with its
// audio media type; clients only play the audio track.
var FormatPreferences = []FormatPreference{
	{MimePrefix: "audio/mp4", Extension: ".m4a", AudioOnly: true},
	{MimePrefix: "audio/webm", Extension: ".webm", AudioOnly: true},
	{MimePrefix: "video/mp4", Extension: ".mp4"},
	{MimePrefix: "video/webm", Extension: ".webm"},
}

// Backend implements extraction.Backend with github.com/kkdai/youtube/v2
type Backend struct {
	enabled         bool
	client          VideoClient
	extractTimeout  time.Duration
	diagnosticLimit int
	logger          *slog.Logger
}

// BackendOption is a functional option for configuring Backend
type BackendOption func(*Backend)

// WithEnabled switches the backend on or off
func WithEnabled(enabled bool) BackendOption {
	return func(b *Backend) {
		b.enabled = enabled
	}
}

// WithClient sets a custom video client (for testing)
func WithClient(client VideoClient) BackendOption {
	return func(b *Backend) {
		b.client = client
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

// WithDiagnosticLimit sets how many characters of library errors are kept
func WithDiagnosticLimit(n int) BackendOption {
	return func(b *Backend) {
		if n > 0 {
			b.diagnosticLimit = n
		}
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

var silenceLibrary sync.Once

// NewBackend creates the library backend. The library's package logger is
// replaced with a discarding one; its per-request debug lines go through
// slog.Default and only show at debug level.
func NewBackend(opts ...BackendOption) *Backend {
	silenceLibrary.Do(func() {
		youtube.Logger = slog.New(slog.DiscardHandler)
	})

	b := &Backend{
		enabled:         true,
		client:          &youtube.Client{},
		extractTimeout:  DefaultExtractTimeout,
		diagnosticLimit: extraction.DefaultDiagnosticLimit,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Name implements extraction.Backend
func (b *Backend) Name() string {
	return "library:kkdai/youtube"
}

// Probe implements extraction.Backend. The library is linked in, so it is
// usable whenever it is enabled and has a client.
func (b *Backend) Probe(ctx context.Context) error {
	if !b.enabled {
		return ErrDisabled
	}
	if b.client == nil {
		return errors.New("youtube library client not configured")
	}
	return nil
}

// Extract implements extraction.Backend
func (b *Backend) Extract(ctx context.Context, req *extraction.ExtractionRequest, scratchBase string) ([]string, error) {
	runCtx, cancel := context.WithTimeout(ctx, b.extractTimeout)
	defer cancel()

	video, err := b.client.GetVideoContext(runCtx, req.VideoID)
	if err != nil {
		return nil, b.classify(runCtx, "failed to load video metadata", err)
	}

	format, pref, ok := SelectFormat(video.Formats)
	if !ok {
		return nil, extraction.Errorf(extraction.KindExtractionFailed, "no audio format available for %s", req.VideoID)
	}

	stream, _, err := b.client.GetStreamContext(runCtx, video, format)
	if err != nil {
		return nil, b.classify(runCtx, "failed to open audio stream", err)
	}
	defer stream.Close()

	path := scratchBase + pref.Extension
	out, err := os.Create(path)
	if err != nil {
		return nil, b.classify(runCtx, "failed to create output file", err)
	}

	written, copyErr := io.Copy(out, stream)
	closeErr := out.Close()
	if copyErr != nil {
		return nil, b.classify(runCtx, "failed to download audio stream", copyErr)
	}
	if closeErr != nil {
		return nil, b.classify(runCtx, "failed to write output file", closeErr)
	}

	b.logger.Debug("library download finished",
		slog.String("video_id", req.VideoID),
		slog.Int("itag", format.ItagNo),
		slog.String("mime_type", format.MimeType),
		slog.Int64("bytes", written),
	)
	return []string{path}, nil
}

func (b *Backend) classify(ctx context.Context, message string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return extraction.NewError(extraction.KindExtractionTimeout,
			fmt.Sprintf("youtube library did not finish within %s", b.extractTimeout),
			err.Error(), b.diagnosticLimit, err)
	}
	return extraction.NewError(extraction.KindExtractionFailed, message, err.Error(), b.diagnosticLimit, err)
}

// SelectFormat walks FormatPreferences and returns the highest-bitrate format of
// the first class that has one. Only formats carrying audio are considered.
func SelectFormat(formats youtube.FormatList) (*youtube.Format, FormatPreference, bool) {
	for _, pref := range FormatPreferences {
		var best *youtube.Format
		for i := range formats {
			f := &formats[i]
			if !strings.HasPrefix(f.MimeType, pref.MimePrefix) {
				continue
			}
			if !pref.AudioOnly && f.AudioChannels == 0 {
				continue
			}
			if best == nil || f.Bitrate > best.Bitrate {
				best = f
			}
		}
		if best != nil {
			return best, pref, true
		}
	}
	return nil, FormatPreference{}, false
}

// Ensure Backend implements extraction.Backend
var _ extraction.Backend = (*Backend)(nil)
