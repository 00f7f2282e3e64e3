package extraction

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"audio-extract-service/domain/extraction"
)

// State names a step of one extraction request
type State string

const (
	StateStart             State = "start"
	StateBackendResolving  State = "backend_resolving"
	StateExtracting        State = "extracting"
	StateArtifactResolving State = "artifact_resolving"
	StateReading           State = "reading"
	StateDone              State = "done"
)

// BackendResolver picks the backend for one request
type BackendResolver interface {
	Resolve(ctx context.Context) (extraction.Backend, error)
}

// Service coordinates backend resolution, extraction, artifact resolution and cleanup
type Service struct {
	backends BackendResolver
	scratch  extraction.ScratchAllocator
	resolver *ArtifactResolver
	reader   extraction.FileReader
	logger   *slog.Logger
}

// FileStore is satisfied by infrastructure that can both check and read files
type FileStore interface {
	extraction.FileChecker
	extraction.FileReader
}

// NewService creates a new extraction Service
func NewService(backends BackendResolver, scratch extraction.ScratchAllocator, files FileStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backends: backends,
		scratch:  scratch,
		resolver: NewArtifactResolver(files),
		reader:   files,
		logger:   logger,
	}
}

// Extract runs one request to completion. Every returned error is an
// *extraction.Error, and scratch files are removed before it returns.
func (s *Service) Extract(ctx context.Context, req *extraction.ExtractionRequest) (*extraction.Artifact, error) {
	if req == nil {
		return nil, extraction.Errorf(extraction.KindInvalidRequest, "video ID is required")
	}

	log := s.logger.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("video_id", req.VideoID),
	)
	started := time.Now()
	transition := func(state State) {
		log.Debug("extraction state", slog.String("state", string(state)))
	}
	transition(StateStart)

	scratch, err := s.scratch.Allocate()
	if err != nil {
		e := extraction.NewError(extraction.KindExtractionFailed, "failed to allocate scratch space", err.Error(), extraction.DefaultDiagnosticLimit, err)
		return nil, s.fail(log, e, started)
	}
	defer func() {
		transition(StateDone)
		result := scratch.Release()
		if !result.Clean() {
			log.Warn("scratch cleanup incomplete", slog.Int("failed", len(result.Failed)))
		}
	}()
	base := scratch.Base()

	transition(StateBackendResolving)
	backend, err := s.backends.Resolve(ctx)
	if err != nil {
		return nil, s.fail(log, extraction.AsError(err), started)
	}
	log = log.With(slog.String("backend", backend.Name()))

	transition(StateExtracting)
	reported, err := backend.Extract(ctx, req, base)
	if err != nil {
		return nil, s.fail(log, extraction.AsError(err), started)
	}

	transition(StateArtifactResolving)
	expected := ""
	if e, ok := backend.(extraction.ExpectedExtensioner); ok {
		expected = e.ExpectedExtension()
	}
	file, err := s.resolver.Resolve(base, expected, reported)
	if err != nil {
		return nil, s.fail(log, extraction.AsError(err), started)
	}

	transition(StateReading)
	data, err := s.reader.ReadFile(file.Path)
	if err != nil {
		e := extraction.NewError(extraction.KindReadFailed, "failed to read extracted audio", err.Error(), extraction.DefaultDiagnosticLimit, err)
		return nil, s.fail(log, e, started)
	}

	log.Info("audio extracted",
		slog.String("file", filepath.Base(file.Path)),
		slog.String("media_type", file.MediaType),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(started)),
	)

	return &extraction.Artifact{
		Data:      data,
		MediaType: file.MediaType,
		Filename:  req.SuggestedFilename(file.Extension),
		Backend:   backend.Name(),
	}, nil
}

func (s *Service) fail(log *slog.Logger, err *extraction.Error, started time.Time) error {
	log.Error("audio extraction failed",
		slog.String("kind", string(err.Kind)),
		slog.String("message", err.Message),
		slog.String("detail", err.Detail),
		slog.Duration("elapsed", time.Since(started)),
	)
	return err
}
