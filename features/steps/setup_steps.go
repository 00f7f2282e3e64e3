//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"audio-extract-service/cmd"
	"audio-extract-service/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	setupCancelled  bool
	originalContent string
	output          *bytes.Buffer
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

// Input returns the next scripted answer, or the default once the script runs out
func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		return defaultValue, nil
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		SharedSetupContext = &setupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedSetupContext.tempDir != "" {
			os.RemoveAll(SharedSetupContext.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, func() error { return SharedSetupContext.noConfigFileExistsForSetup() })
	ctx.Step(`^a config file already exists for setup$`, func() error { return SharedSetupContext.aConfigFileAlreadyExistsForSetup() })
	ctx.Step(`^I run the setup command with inputs:$`, func(table *godog.Table) error {
		return SharedSetupContext.iRunTheSetupCommandWithInputs(table)
	})
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, func(confirmation string) error {
		return SharedSetupContext.iRunTheSetupCommandWithConfirmation(confirmation)
	})
	ctx.Step(`^a config file should exist$`, func() error { return SharedSetupContext.aConfigFileShouldExist() })
	ctx.Step(`^the config should have server address "([^"]*)"$`, func(addr string) error {
		return SharedSetupContext.theConfigShouldHave("server address", addr, func(c *config.Config) string { return c.Server.Address })
	})
	ctx.Step(`^the config should have extract timeout "([^"]*)"$`, func(d string) error {
		return SharedSetupContext.theConfigShouldHave("extract timeout", d, func(c *config.Config) string { return c.Extraction.ExtractTimeout.String() })
	})
	ctx.Step(`^the config should search "([^"]*)" first$`, func(dir string) error {
		return SharedSetupContext.theConfigShouldHave("first search dir", dir, func(c *config.Config) string {
			if len(c.YtDlp.SearchDirs) == 0 {
				return ""
			}
			return c.YtDlp.SearchDirs[0]
		})
	})
	ctx.Step(`^the library backend should be enabled$`, func() error {
		return SharedSetupContext.theConfigShouldHave("library enabled", "true", func(c *config.Config) string { return fmt.Sprint(c.Library.Enabled) })
	})
	ctx.Step(`^the library backend should be disabled$`, func() error {
		return SharedSetupContext.theConfigShouldHave("library enabled", "false", func(c *config.Config) string { return fmt.Sprint(c.Library.Enabled) })
	})
	ctx.Step(`^the setup should be cancelled$`, func() error { return SharedSetupContext.theSetupShouldBeCancelled() })
	ctx.Step(`^the existing config should be unchanged$`, func() error { return SharedSetupContext.theExistingConfigShouldBeUnchanged() })
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `server:
  address: "127.0.0.1:7000"
extraction:
  extract_timeout: 60s
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	inputs, confirms := parseInputTable(table)
	prompter := NewMockPrompter(inputs, confirms)

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "y"
	prompter := NewMockPrompter([]string{}, []bool{confirm})

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	if !confirm {
		s.setupCancelled = true
	}
	return nil
}

func parseInputTable(table *godog.Table) ([]string, []bool) {
	var inputs []string
	var confirms []bool

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		prompt := strings.ToLower(row.Cells[0].Value)
		value := row.Cells[1].Value

		// Yes/no questions start with "use"
		if strings.HasPrefix(prompt, "use") {
			confirms = append(confirms, strings.ToLower(value) == "y")
		} else {
			inputs = append(inputs, value)
		}
	}

	return inputs, confirms
}

func (s *setupContext) loadConfig() (*config.Config, error) {
	return config.Load(s.configPath)
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) theConfigShouldHave(field, want string, get func(*config.Config) string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if got := get(cfg); got != want {
		return fmt.Errorf("expected %s %q, got %q", field, want, got)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if !s.setupCancelled {
		return fmt.Errorf("expected setup to be cancelled")
	}
	if !strings.Contains(s.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected cancellation message, got %q", s.output.String())
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(data) != s.originalContent {
		return fmt.Errorf("config was modified")
	}
	return nil
}
