package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  address: "127.0.0.1:9000"
extraction:
  scratch_dir: /var/tmp/audio
  probe_timeout: 2s
  extract_timeout: 90s
  probe_cache_ttl: 30s
ytdlp:
  search_dirs:
    - /opt/tools/bin
  audio_format: .M4A
library:
  enabled: false
logging:
  level: DEBUG
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Address != "127.0.0.1:9000" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Extraction.ScratchDir != "/var/tmp/audio" {
		t.Errorf("Extraction.ScratchDir = %q", cfg.Extraction.ScratchDir)
	}
	if cfg.Extraction.ProbeTimeout != 2*time.Second || cfg.Extraction.ExtractTimeout != 90*time.Second {
		t.Errorf("timeouts = %s / %s", cfg.Extraction.ProbeTimeout, cfg.Extraction.ExtractTimeout)
	}
	if cfg.Extraction.ProbeCacheTTL != 30*time.Second {
		t.Errorf("Extraction.ProbeCacheTTL = %s", cfg.Extraction.ProbeCacheTTL)
	}
	if cfg.Extraction.DiagnosticLimit != DefaultDiagnosticLimit {
		t.Errorf("Extraction.DiagnosticLimit = %d, want default %d", cfg.Extraction.DiagnosticLimit, DefaultDiagnosticLimit)
	}
	if !reflect.DeepEqual(cfg.YtDlp.SearchDirs, []string{"/opt/tools/bin"}) {
		t.Errorf("YtDlp.SearchDirs = %v", cfg.YtDlp.SearchDirs)
	}
	if cfg.YtDlp.ExecutableName != DefaultExecutableName {
		t.Errorf("YtDlp.ExecutableName = %q, want default", cfg.YtDlp.ExecutableName)
	}
	if cfg.YtDlp.AudioFormat != "m4a" {
		t.Errorf("YtDlp.AudioFormat = %q, want m4a", cfg.YtDlp.AudioFormat)
	}
	if cfg.Library.Enabled {
		t.Error("Library.Enabled = true, want false")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{"malformed yaml", "server: [", "failed to parse config file"},
		{"negative cache ttl", "extraction:\n  probe_cache_ttl: -1s\n", "probe_cache_ttl"},
		{"zero extract timeout", "extraction:\n  extract_timeout: 0s\n", "extract_timeout"},
		{"path as executable name", "ytdlp:\n  executable_name: /usr/bin/yt-dlp\n", "bare name"},
		{"unknown log format", "logging:\n  format: xml\n", "logging.format"},
		{"empty address", "server:\n  address: \"\"\n", "server.address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Load() error = %v, want error containing %q", err, tt.errContains)
			}
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("LoadOrDefault() = %+v, want defaults", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Server.Address = ":9999"
	cfg.Extraction.ProbeCacheTTL = 10 * time.Second
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}
