package config

import "time"

// Defaults mirrored by the yt-dlp backend
const (
	DefaultAddress         = ":8888"
	DefaultExecutableName  = "yt-dlp"
	DefaultAudioFormat     = "mp3"
	DefaultProbeTimeout    = 5 * time.Second
	DefaultExtractTimeout  = 300 * time.Second
	DefaultDiagnosticLimit = 200
)

// DefaultSearchDirs are package-manager install locations for yt-dlp
var DefaultSearchDirs = []string{
	"/opt/homebrew/bin",
	"/usr/local/bin",
	"/usr/bin",
	"~/.local/bin",
}

// Default returns a configuration usable without a config file
func Default() *Config {
	dirs := make([]string, len(DefaultSearchDirs))
	copy(dirs, DefaultSearchDirs)

	return &Config{
		Server: ServerConfig{
			Address: DefaultAddress,
		},
		Extraction: ExtractionConfig{
			ProbeTimeout:    DefaultProbeTimeout,
			ExtractTimeout:  DefaultExtractTimeout,
			DiagnosticLimit: DefaultDiagnosticLimit,
		},
		YtDlp: YtDlpConfig{
			ExecutableName: DefaultExecutableName,
			SearchDirs:     dirs,
			AudioFormat:    DefaultAudioFormat,
		},
		Library: LibraryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}
