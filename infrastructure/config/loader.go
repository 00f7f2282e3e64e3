package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Extraction ExtractionConfig `yaml:"extraction"`
	YtDlp      YtDlpConfig      `yaml:"ytdlp"`
	Library    LibraryConfig    `yaml:"library"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Address string `yaml:"address"`
}

// ExtractionConfig contains per-request extraction limits
type ExtractionConfig struct {
	ScratchDir      string        `yaml:"scratch_dir"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	ExtractTimeout  time.Duration `yaml:"extract_timeout"`
	DiagnosticLimit int           `yaml:"diagnostic_limit"`
	ProbeCacheTTL   time.Duration `yaml:"probe_cache_ttl"`
}

// YtDlpConfig contains external executable settings
type YtDlpConfig struct {
	ExecutableName string   `yaml:"executable_name"`
	SearchDirs     []string `yaml:"search_dirs"`
	AudioFormat    string   `yaml:"audio_format"`
}

// LibraryConfig controls the in-process fallback backend
type LibraryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the configuration from the specified YAML file.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Extraction.ProbeTimeout <= 0 {
		return fmt.Errorf("extraction.probe_timeout must be positive")
	}
	if c.Extraction.ExtractTimeout <= 0 {
		return fmt.Errorf("extraction.extract_timeout must be positive")
	}
	if c.Extraction.DiagnosticLimit <= 0 {
		return fmt.Errorf("extraction.diagnostic_limit must be positive")
	}
	if c.Extraction.ProbeCacheTTL < 0 {
		return fmt.Errorf("extraction.probe_cache_ttl must not be negative")
	}
	if strings.ContainsRune(c.YtDlp.ExecutableName, os.PathSeparator) {
		return fmt.Errorf("ytdlp.executable_name must be a bare name, got %q", c.YtDlp.ExecutableName)
	}
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) normalize() {
	c.Server.Address = strings.TrimSpace(c.Server.Address)
	c.YtDlp.ExecutableName = strings.TrimSpace(c.YtDlp.ExecutableName)
	if c.YtDlp.ExecutableName == "" {
		c.YtDlp.ExecutableName = DefaultExecutableName
	}
	c.YtDlp.AudioFormat = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.YtDlp.AudioFormat)), ".")
	if c.YtDlp.AudioFormat == "" {
		c.YtDlp.AudioFormat = DefaultAudioFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "auto"
	}
}
