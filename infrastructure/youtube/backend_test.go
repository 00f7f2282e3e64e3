package youtube

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"

	"audio-extract-service/domain/extraction"
)

// mockClient implements VideoClient for testing
type mockClient struct {
	video     *youtube.Video
	videoErr  error
	streamErr error
	body      string
	requested *youtube.Format
}

func (m *mockClient) GetVideoContext(ctx context.Context, id string) (*youtube.Video, error) {
	if m.videoErr != nil {
		return nil, m.videoErr
	}
	return m.video, nil
}

func (m *mockClient) GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error) {
	m.requested = format
	if m.streamErr != nil {
		return nil, 0, m.streamErr
	}
	return io.NopCloser(strings.NewReader(m.body)), int64(len(m.body)), nil
}

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		name     string
		formats  youtube.FormatList
		wantItag int
		wantExt  string
		wantOK   bool
	}{
		{
			name: "prefers audio mp4 over webm and video",
			formats: youtube.FormatList{
				{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
				{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
				{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 128000, AudioChannels: 2},
			},
			wantItag: 140, wantExt: ".m4a", wantOK: true,
		},
		{
			name: "highest bitrate within a class",
			formats: youtube.FormatList{
				{ItagNo: 249, MimeType: `audio/webm; codecs="opus"`, Bitrate: 50000, AudioChannels: 2},
				{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
			},
			wantItag: 251, wantExt: ".webm", wantOK: true,
		},
		{
			name: "combined stream only when no audio-only exists",
			formats: youtube.FormatList{
				{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 4000000},
				{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
			},
			wantItag: 18, wantExt: ".mp4", wantOK: true,
		},
		{
			name: "combined webm keeps its container extension",
			formats: youtube.FormatList{
				{ItagNo: 43, MimeType: `video/webm; codecs="vp8.0, vorbis"`, Bitrate: 900000, AudioChannels: 2},
			},
			wantItag: 43, wantExt: ".webm", wantOK: true,
		},
		{
			name: "video without audio is never selected",
			formats: youtube.FormatList{
				{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 4000000},
			},
		},
		{name: "empty list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, pref, ok := SelectFormat(tt.formats)
			if ok != tt.wantOK {
				t.Fatalf("SelectFormat() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.ItagNo != tt.wantItag {
				t.Errorf("SelectFormat() itag = %d, want %d", got.ItagNo, tt.wantItag)
			}
			if pref.Extension != tt.wantExt {
				t.Errorf("SelectFormat() extension = %q, want %q", pref.Extension, tt.wantExt)
			}
		})
	}
}

func TestBackend_Probe(t *testing.T) {
	if err := NewBackend(WithClient(&mockClient{})).Probe(context.Background()); err != nil {
		t.Errorf("Probe() enabled backend error = %v", err)
	}
	if err := NewBackend(WithEnabled(false)).Probe(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Errorf("Probe() disabled backend error = %v, want ErrDisabled", err)
	}
}

func TestBackend_Extract(t *testing.T) {
	client := &mockClient{
		video: &youtube.Video{
			ID: "abc123",
			Formats: youtube.FormatList{
				{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 128000, AudioChannels: 2},
			},
		},
		body: "m4a-bytes",
	}
	b := NewBackend(WithClient(client))
	base := filepath.Join(t.TempDir(), "audio-test")

	req, _ := extraction.NewExtractionRequest("abc123")
	paths, err := b.Extract(context.Background(), req, base)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if len(paths) != 1 || paths[0] != base+".m4a" {
		t.Fatalf("Extract() paths = %v, want [%s.m4a]", paths, base)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil || string(data) != "m4a-bytes" {
		t.Errorf("output = %q, %v", data, err)
	}
	if client.requested == nil || client.requested.ItagNo != 140 {
		t.Errorf("requested format = %+v, want itag 140", client.requested)
	}
}

func TestBackend_ExtractFailures(t *testing.T) {
	long := strings.Repeat("y", 1000)
	audio := youtube.FormatList{{ItagNo: 140, MimeType: "audio/mp4", AudioChannels: 2}}

	tests := []struct {
		name   string
		client *mockClient
	}{
		{name: "metadata error", client: &mockClient{videoErr: errors.New("video unavailable " + long)}},
		{name: "no usable format", client: &mockClient{video: &youtube.Video{}}},
		{name: "stream error", client: &mockClient{video: &youtube.Video{Formats: audio}, streamErr: errors.New("403 forbidden")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackend(WithClient(tt.client), WithDiagnosticLimit(200))
			req, _ := extraction.NewExtractionRequest("abc123")

			_, err := b.Extract(context.Background(), req, filepath.Join(t.TempDir(), "audio-test"))
			if got := extraction.KindOf(err); got != extraction.KindExtractionFailed {
				t.Fatalf("Extract() error kind = %q, want %q (err = %v)", got, extraction.KindExtractionFailed, err)
			}

			var e *extraction.Error
			errors.As(err, &e)
			if len(e.Detail) > 200 {
				t.Errorf("Detail length = %d, want <= 200", len(e.Detail))
			}
		})
	}
}

func TestNewBackend_DiscardsLibraryLogs(t *testing.T) {
	NewBackend(WithClient(&mockClient{}))

	if youtube.Logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("youtube.Logger still writes after NewBackend")
	}
}
