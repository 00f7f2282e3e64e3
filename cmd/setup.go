package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"audio-extract-service/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

Every question offers the built-in default, so pressing enter throughout
writes a configuration equivalent to running without a config file.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = "config/config.yaml"
	}
	return RunSetupWithPrompter(DefaultPrompter, path, cmd.OutOrStdout())
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to audio-extract-service setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptServer(prompter, cfg); err != nil {
		return err
	}
	if err := promptExtraction(prompter, cfg); err != nil {
		return err
	}
	if err := promptBackends(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	addr, err := prompter.Input("Address for the HTTP API to listen on?", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if addr = strings.TrimSpace(addr); addr != "" {
		cfg.Server.Address = addr
	}
	return nil
}

func promptExtraction(prompter Prompter, cfg *config.Config) error {
	scratch, err := prompter.Input("Directory for temporary audio files? (empty = system temp)", cfg.Extraction.ScratchDir)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Extraction.ScratchDir = strings.TrimSpace(scratch)

	timeout, err := promptDuration(prompter, "Maximum time for one extraction?", cfg.Extraction.ExtractTimeout)
	if err != nil {
		return err
	}
	cfg.Extraction.ExtractTimeout = timeout

	limit, err := prompter.Input("Maximum characters of backend errors returned to clients?", strconv.Itoa(cfg.Extraction.DiagnosticLimit))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if limit = strings.TrimSpace(limit); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			return fmt.Errorf("diagnostic limit must be a positive number, got %q", limit)
		}
		cfg.Extraction.DiagnosticLimit = n
	}
	return nil
}

func promptBackends(prompter Prompter, cfg *config.Config) error {
	format, err := prompter.Input("Audio format requested from yt-dlp?", cfg.YtDlp.AudioFormat)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), "."); format != "" {
		cfg.YtDlp.AudioFormat = format
	}

	dirs, err := prompter.Input("Extra directories to search for yt-dlp? (comma separated)", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	var extra []string
	for _, d := range strings.Split(dirs, ",") {
		if d = strings.TrimSpace(d); d != "" {
			extra = append(extra, d)
		}
	}
	cfg.YtDlp.SearchDirs = append(extra, cfg.YtDlp.SearchDirs...)

	enabled, err := prompter.Confirm("Fall back to the built-in YouTube library when yt-dlp is missing?", cfg.Library.Enabled)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Library.Enabled = enabled
	return nil
}

func promptDuration(prompter Prompter, message string, current time.Duration) (time.Duration, error) {
	value, err := prompter.Input(message, current.String())
	if err != nil {
		return 0, fmt.Errorf("prompt cancelled")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return current, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}
