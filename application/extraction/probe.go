package extraction

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"audio-extract-service/domain/extraction"
)

// CandidateSource enumerates backends in priority order. It is called on
// every resolution so environment changes are seen by the next request.
type CandidateSource func() []extraction.Backend

// CandidateStatus reports the liveness check of one backend candidate
type CandidateStatus struct {
	Name      string
	Available bool
	Detail    string
}

// BackendProbe selects the first live backend from its candidate sources
type BackendProbe struct {
	sources  []CandidateSource
	cacheTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	cached   extraction.Backend
	cachedAt time.Time
}

// ProbeOption is a functional option for configuring BackendProbe
type ProbeOption func(*BackendProbe)

// WithCacheTTL keeps a successful resolution for at most ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) ProbeOption {
	return func(p *BackendProbe) {
		p.cacheTTL = ttl
	}
}

// WithClock replaces time.Now (for testing)
func WithClock(now func() time.Time) ProbeOption {
	return func(p *BackendProbe) {
		p.now = now
	}
}

// WithProbeLogger sets the logger
func WithProbeLogger(logger *slog.Logger) ProbeOption {
	return func(p *BackendProbe) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewBackendProbe creates a probe over the given sources, consulted in order
func NewBackendProbe(sources []CandidateSource, opts ...ProbeOption) *BackendProbe {
	p := &BackendProbe{
		sources: sources,
		now:     time.Now,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// StaticCandidates wraps a fixed backend list as a CandidateSource
func StaticCandidates(backends ...extraction.Backend) CandidateSource {
	return func() []extraction.Backend {
		return backends
	}
}

// Resolve returns the first backend whose liveness check passes
func (p *BackendProbe) Resolve(ctx context.Context) (extraction.Backend, error) {
	if b := p.fromCache(); b != nil {
		p.logger.Debug("backend resolved from cache", slog.String("backend", b.Name()))
		return b, nil
	}

	var failures []string
	for _, source := range p.sources {
		for _, candidate := range source() {
			if candidate == nil {
				continue
			}
			if err := candidate.Probe(ctx); err != nil {
				p.logger.Debug("backend candidate rejected",
					slog.String("backend", candidate.Name()),
					slog.String("reason", err.Error()),
				)
				failures = append(failures, candidate.Name())
				continue
			}

			p.logger.Debug("backend selected", slog.String("backend", candidate.Name()))
			p.store(candidate)
			return candidate, nil
		}
	}

	err := extraction.Errorf(extraction.KindBackendUnavailable,
		"no extraction backend available; install yt-dlp (e.g. brew install yt-dlp) or enable the library backend")
	err.Detail = extraction.Truncate("tried: "+strings.Join(failures, ", "), extraction.DefaultDiagnosticLimit)
	return nil, err
}

// Report probes every candidate without stopping at the first live one
func (p *BackendProbe) Report(ctx context.Context) []CandidateStatus {
	var statuses []CandidateStatus
	for _, source := range p.sources {
		for _, candidate := range source() {
			if candidate == nil {
				continue
			}
			status := CandidateStatus{Name: candidate.Name(), Available: true}
			if err := candidate.Probe(ctx); err != nil {
				status.Available = false
				status.Detail = err.Error()
			}
			statuses = append(statuses, status)
		}
	}
	return statuses
}

func (p *BackendProbe) fromCache() extraction.Backend {
	if p.cacheTTL <= 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached == nil || p.now().Sub(p.cachedAt) >= p.cacheTTL {
		p.cached = nil
		return nil
	}
	return p.cached
}

func (p *BackendProbe) store(b extraction.Backend) {
	if p.cacheTTL <= 0 {
		return
	}
	p.mu.Lock()
	p.cached = b
	p.cachedAt = p.now()
	p.mu.Unlock()
}
