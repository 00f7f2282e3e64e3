package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"audio-extract-service/infrastructure/config"
	"audio-extract-service/infrastructure/logging"

	"github.com/spf13/cobra"
)

// OutputWriter is where commands print human-readable results
type OutputWriter = io.Writer

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "audio-extract-service",
	Short: "Extract downloadable audio from online videos",
	Long: `audio-extract-service turns a video identifier into a downloadable audio file.

Each request probes for a usable extraction backend (a yt-dlp executable, or
the built-in YouTube library as a fallback), extracts into a private scratch
path, returns the audio and removes every transient file.

Example:
  audio-extract-service serve --addr :8888
  audio-extract-service extract-audio --id dQw4w9WgXcQ --output ./downloads`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	// A missing file means defaults; a broken one is reported by commands that need it
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
}

// GetConfig returns the loaded configuration
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("configuration %s: %w", cfgFile, cfgErr)
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// newLogger builds the process logger from configuration
func newLogger(c *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
