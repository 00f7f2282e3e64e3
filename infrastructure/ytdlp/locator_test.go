package ytdlp

import (
	"errors"
	"reflect"
	"testing"
)

func TestLocator_Candidates(t *testing.T) {
	tests := []struct {
		name       string
		self       string
		selfErr    error
		searchDirs []string
		lookPath   string
		want       []string
	}{
		{
			name:       "all sources in priority order",
			self:       "/srv/app/audio-extract-service",
			searchDirs: []string{"/opt/homebrew/bin", "/usr/local/bin"},
			lookPath:   "/home/me/bin/yt-dlp",
			want: []string{
				"/srv/app/yt-dlp",
				"/opt/homebrew/bin/yt-dlp",
				"/usr/local/bin/yt-dlp",
				"/home/me/bin/yt-dlp",
				"yt-dlp",
			},
		},
		{
			name:       "duplicates and empty dirs dropped",
			self:       "/usr/local/bin/audio-extract-service",
			searchDirs: []string{"", "/usr/local/bin", "  "},
			lookPath:   "/usr/local/bin/yt-dlp",
			want: []string{
				"/usr/local/bin/yt-dlp",
				"yt-dlp",
			},
		},
		{
			name:       "unknown self and no PATH hit",
			selfErr:    errors.New("unsupported"),
			searchDirs: []string{"/usr/bin"},
			want: []string{
				"/usr/bin/yt-dlp",
				"yt-dlp",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocator(
				WithSearchDirs(tt.searchDirs),
				WithSelfExecutable(func() (string, error) { return tt.self, tt.selfErr }),
				WithLookPath(func(string) (string, error) {
					if tt.lookPath == "" {
						return "", errors.New("not found")
					}
					return tt.lookPath, nil
				}),
			)

			if got := l.Candidates(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocator_ExpandsHome(t *testing.T) {
	l := NewLocator(
		WithSearchDirs([]string{"~/.local/bin"}),
		WithSelfExecutable(func() (string, error) { return "", errors.New("unknown") }),
		WithLookPath(func(string) (string, error) { return "", errors.New("not found") }),
	)
	l.homeDir = func() (string, error) { return "/home/me", nil }

	want := []string{"/home/me/.local/bin/yt-dlp", "yt-dlp"}
	if got := l.Candidates(); !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates() = %v, want %v", got, want)
	}
}

func TestLocator_CustomName(t *testing.T) {
	l := NewLocator(
		WithExecutableName("youtube-dl"),
		WithSearchDirs(nil),
		WithSelfExecutable(func() (string, error) { return "", errors.New("unknown") }),
		WithLookPath(func(string) (string, error) { return "", errors.New("not found") }),
	)

	backends := l.Backends()
	if len(backends) != 1 || backends[0].Name() != "yt-dlp:youtube-dl" {
		t.Errorf("Backends() = %v, want a single bare youtube-dl backend", backends)
	}
}
