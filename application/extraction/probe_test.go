package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"audio-extract-service/domain/extraction"
)

func TestBackendProbe_Resolve(t *testing.T) {
	dead := errors.New("not executable")

	tests := []struct {
		name     string
		backends []*mockBackend
		wantName string
		wantKind extraction.Kind
		// probes expected per backend, in order
		wantProbes []int
	}{
		{
			name: "first live candidate wins",
			backends: []*mockBackend{
				{name: "homebrew", probeErr: dead},
				{name: "path"},
				{name: "library"},
			},
			wantName:   "path",
			wantProbes: []int{1, 1, 0},
		},
		{
			name: "falls back to library",
			backends: []*mockBackend{
				{name: "adjacent", probeErr: dead},
				{name: "bare", probeErr: dead},
				{name: "library"},
			},
			wantName:   "library",
			wantProbes: []int{1, 1, 1},
		},
		{
			name: "nothing available",
			backends: []*mockBackend{
				{name: "bare", probeErr: dead},
				{name: "library", probeErr: dead},
			},
			wantKind:   extraction.KindBackendUnavailable,
			wantProbes: []int{1, 1},
		},
		{
			name:     "no candidates at all",
			wantKind: extraction.KindBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list []extraction.Backend
			for _, b := range tt.backends {
				list = append(list, b)
			}
			probe := NewBackendProbe([]CandidateSource{StaticCandidates(list...)})

			got, err := probe.Resolve(context.Background())

			if tt.wantKind != "" {
				if extraction.KindOf(err) != tt.wantKind {
					t.Fatalf("Resolve() error = %v, want kind %q", err, tt.wantKind)
				}
			} else {
				if err != nil {
					t.Fatalf("Resolve() unexpected error: %v", err)
				}
				if got.Name() != tt.wantName {
					t.Errorf("Resolve() = %q, want %q", got.Name(), tt.wantName)
				}
			}

			for i, b := range tt.backends {
				if b.probeCalls != tt.wantProbes[i] {
					t.Errorf("backend %q probed %d times, want %d", b.name, b.probeCalls, tt.wantProbes[i])
				}
			}
		})
	}
}

func TestBackendProbe_SourcesInOrder(t *testing.T) {
	executables := &mockBackend{name: "yt-dlp", probeErr: errors.New("missing")}
	library := &mockBackend{name: "library"}

	probe := NewBackendProbe([]CandidateSource{
		StaticCandidates(executables),
		StaticCandidates(library),
	})

	got, err := probe.Resolve(context.Background())
	if err != nil || got.Name() != "library" {
		t.Fatalf("Resolve() = %v, %v; want library", got, err)
	}
}

func TestBackendProbe_ReprobesEveryRequest(t *testing.T) {
	b := &mockBackend{name: "yt-dlp"}
	probe := NewBackendProbe([]CandidateSource{StaticCandidates(b)})

	for i := 0; i < 3; i++ {
		if _, err := probe.Resolve(context.Background()); err != nil {
			t.Fatalf("Resolve() unexpected error: %v", err)
		}
	}
	if b.probeCalls != 3 {
		t.Errorf("probe calls = %d, want 3", b.probeCalls)
	}
}

func TestBackendProbe_SourceIsReevaluated(t *testing.T) {
	installed := false
	source := func() []extraction.Backend {
		if !installed {
			return nil
		}
		return []extraction.Backend{&mockBackend{name: "yt-dlp"}}
	}
	probe := NewBackendProbe([]CandidateSource{source})

	if _, err := probe.Resolve(context.Background()); extraction.KindOf(err) != extraction.KindBackendUnavailable {
		t.Fatalf("Resolve() before install error = %v, want backend_unavailable", err)
	}

	installed = true
	if _, err := probe.Resolve(context.Background()); err != nil {
		t.Errorf("Resolve() after install unexpected error: %v", err)
	}
}

func TestBackendProbe_CacheTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	b := &mockBackend{name: "yt-dlp"}
	probe := NewBackendProbe(
		[]CandidateSource{StaticCandidates(b)},
		WithCacheTTL(time.Minute),
		WithClock(clock),
	)

	probe.Resolve(context.Background())
	now = now.Add(30 * time.Second)
	probe.Resolve(context.Background())
	if b.probeCalls != 1 {
		t.Errorf("probe calls within TTL = %d, want 1", b.probeCalls)
	}

	now = now.Add(31 * time.Second)
	probe.Resolve(context.Background())
	if b.probeCalls != 2 {
		t.Errorf("probe calls after TTL = %d, want 2", b.probeCalls)
	}
}

func TestBackendProbe_FailuresNotCached(t *testing.T) {
	b := &mockBackend{name: "yt-dlp", probeErr: errors.New("missing")}
	probe := NewBackendProbe([]CandidateSource{StaticCandidates(b)}, WithCacheTTL(time.Hour))

	probe.Resolve(context.Background())
	b.probeErr = nil

	if _, err := probe.Resolve(context.Background()); err != nil {
		t.Errorf("Resolve() after backend recovered error = %v", err)
	}
}

func TestBackendProbe_Report(t *testing.T) {
	probe := NewBackendProbe([]CandidateSource{StaticCandidates(
		&mockBackend{name: "a", probeErr: errors.New("missing")},
		&mockBackend{name: "b"},
		&mockBackend{name: "c"},
	)})

	report := probe.Report(context.Background())
	if len(report) != 3 {
		t.Fatalf("Report() returned %d entries, want 3", len(report))
	}
	if report[0].Available || report[0].Detail != "missing" {
		t.Errorf("report[0] = %+v, want unavailable with detail", report[0])
	}
	if !report[1].Available || !report[2].Available {
		t.Errorf("report = %+v, want b and c available", report)
	}
}
