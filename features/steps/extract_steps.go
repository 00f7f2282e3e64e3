//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	appextraction "audio-extract-service/application/extraction"
	"audio-extract-service/cmd"
	"audio-extract-service/domain/extraction"
	"audio-extract-service/infrastructure/filesystem"
	"audio-extract-service/infrastructure/youtube"
	"audio-extract-service/infrastructure/ytdlp"

	"github.com/cucumber/godog"
)

// extractContext holds test state for extract and probe scenarios
type extractContext struct {
	tempDir        string
	scratchDir     string
	binDir         string
	outputDir      string
	executableName string
	libraryEnabled bool
	output         *bytes.Buffer
	err            error
}

// SharedExtractContext is reset before each scenario via Before hook
var SharedExtractContext *extractContext

func getExtractContext() *extractContext {
	return SharedExtractContext
}

const scriptPrelude = `#!/bin/sh
echo "$@" >> "$(dirname "$0")/calls.log"
if [ "$1" = "--version" ]; then
  echo 2025.01.15
  exit 0
fi
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
base=$(printf '%s' "$out" | sed 's/\.%(ext)s$//')
`

func InitializeExtractScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "extract-test-*")
		if err != nil {
			return c, err
		}
		SharedExtractContext = &extractContext{
			tempDir:        tempDir,
			scratchDir:     filepath.Join(tempDir, "scratch"),
			binDir:         filepath.Join(tempDir, "bin"),
			outputDir:      filepath.Join(tempDir, "out"),
			executableName: "yt-dlp",
			libraryEnabled: true,
			output:         &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if s := getExtractContext(); s != nil && s.tempDir != "" {
			os.RemoveAll(s.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a clean scratch directory$`, func() error { return getExtractContext().aCleanScratchDirectory() })
	ctx.Step(`^a yt-dlp executable that writes a "([^"]*)" file$`, func(ext string) error {
		return getExtractContext().installScript(fmt.Sprintf("printf 'audio-%s' > \"$base.%s\"\n", ext, ext))
	})
	ctx.Step(`^a yt-dlp executable that exits with status (\d+) and stderr "([^"]*)"$`, func(status int, stderr string) error {
		return getExtractContext().installScript(fmt.Sprintf("echo %q >&2\nexit %d\n", stderr, status))
	})
	ctx.Step(`^a yt-dlp executable that exits successfully without output$`, func() error {
		return getExtractContext().installScript("exit 0\n")
	})
	ctx.Step(`^a yt-dlp executable that writes a partial "([^"]*)" file and fails$`, func(ext string) error {
		return getExtractContext().installScript(fmt.Sprintf(
			"printf 'x' > \"$base.%s\"\nprintf 'x' > \"$base.%s.part\"\necho 'ERROR: interrupted' >&2\nexit 1\n", ext, ext))
	})
	ctx.Step(`^no yt-dlp executable is installed$`, func() error { return getExtractContext().noExecutableInstalled() })
	ctx.Step(`^the library backend is disabled$`, func() error {
		getExtractContext().libraryEnabled = false
		return nil
	})
	ctx.Step(`^I extract audio for "([^"]*)"$`, func(id string) error { return getExtractContext().iExtractAudioFor(id) })
	ctx.Step(`^the extraction should succeed$`, func() error { return getExtractContext().theExtractionShouldSucceed() })
	ctx.Step(`^the audio file "([^"]*)" should be saved$`, func(name string) error { return getExtractContext().theAudioFileShouldBeSaved(name) })
	ctx.Step(`^the media type should be "([^"]*)"$`, func(mt string) error { return getExtractContext().theMediaTypeShouldBe(mt) })
	ctx.Step(`^the scratch directory should be empty$`, func() error { return getExtractContext().theScratchDirectoryShouldBeEmpty() })
	ctx.Step(`^the extraction should fail with kind "([^"]*)"$`, func(kind string) error { return getExtractContext().theExtractionShouldFailWithKind(kind) })
	ctx.Step(`^the failure detail should contain "([^"]*)"$`, func(text string) error { return getExtractContext().theFailureDetailShouldContain(text) })
	ctx.Step(`^the failure detail should be at most (\d+) characters$`, func(n int) error { return getExtractContext().theFailureDetailShouldBeAtMost(n) })
	ctx.Step(`^the extraction should be rejected as invalid$`, func() error { return getExtractContext().theExtractionShouldBeRejectedAsInvalid() })
	ctx.Step(`^yt-dlp should not have been invoked$`, func() error { return getExtractContext().ytDlpShouldNotHaveBeenInvoked() })
	ctx.Step(`^I run the probe command$`, func() error { return getExtractContext().iRunTheProbeCommand() })
	ctx.Step(`^the probe should succeed$`, func() error { return getExtractContext().theProbeShouldSucceed() })
	ctx.Step(`^the probe should fail$`, func() error { return getExtractContext().theProbeShouldFail() })
	ctx.Step(`^the probe output should mark the yt-dlp executable as "([^"]*)"$`, func(state string) error {
		return getExtractContext().theProbeOutputShouldMarkExecutable(state)
	})
	ctx.Step(`^the probe output should contain "([^"]*)"$`, func(text string) error { return getExtractContext().theProbeOutputShouldContain(text) })
}

func (e *extractContext) aCleanScratchDirectory() error {
	for _, dir := range []string{e.scratchDir, e.binDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func (e *extractContext) installScript(body string) error {
	path := filepath.Join(e.binDir, e.executableName)
	return os.WriteFile(path, []byte(scriptPrelude+body), 0755)
}

func (e *extractContext) noExecutableInstalled() error {
	// A name nothing on the host PATH can answer to
	e.executableName = "yt-dlp-not-installed-" + filepath.Base(e.tempDir)
	return nil
}

func (e *extractContext) probe() *appextraction.BackendProbe {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locator := ytdlp.NewLocator(
		ytdlp.WithExecutableName(e.executableName),
		ytdlp.WithSearchDirs([]string{e.binDir}),
		ytdlp.WithSelfExecutable(func() (string, error) { return "", errors.New("not used") }),
	)
	library := youtube.NewBackend(youtube.WithEnabled(e.libraryEnabled))

	return appextraction.NewBackendProbe([]appextraction.CandidateSource{
		func() []extraction.Backend { return locator.Backends(ytdlp.WithLogger(logger)) },
		appextraction.StaticCandidates(library),
	}, appextraction.WithProbeLogger(logger))
}

func (e *extractContext) iExtractAudioFor(id string) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := appextraction.NewService(e.probe(), filesystem.NewScratchSpace(e.scratchDir), filesystem.NewChecker(), logger)

	e.err = cmd.RunExtractAudioWithDependencies(context.Background(), svc, id, e.outputDir, e.output)
	return nil
}

func (e *extractContext) theExtractionShouldSucceed() error {
	if e.err != nil {
		return fmt.Errorf("expected success, got error: %v", e.err)
	}
	return nil
}

func (e *extractContext) theAudioFileShouldBeSaved(name string) error {
	path := filepath.Join(e.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("expected %s to exist: %v", path, err)
	}
	return nil
}

func (e *extractContext) theMediaTypeShouldBe(mediaType string) error {
	if !strings.Contains(e.output.String(), "("+mediaType+",") {
		return fmt.Errorf("expected media type %q in output %q", mediaType, e.output.String())
	}
	return nil
}

func (e *extractContext) theScratchDirectoryShouldBeEmpty() error {
	entries, err := os.ReadDir(e.scratchDir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if len(entries) != 0 {
		var names []string
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		return fmt.Errorf("scratch directory not empty: %v", names)
	}
	return nil
}

func (e *extractContext) failure() (*extraction.Error, error) {
	var failure *extraction.Error
	if !errors.As(e.err, &failure) {
		return nil, fmt.Errorf("expected an extraction error, got %v", e.err)
	}
	return failure, nil
}

func (e *extractContext) theExtractionShouldFailWithKind(kind string) error {
	failure, err := e.failure()
	if err != nil {
		return err
	}
	if string(failure.Kind) != kind {
		return fmt.Errorf("expected kind %q, got %q (%v)", kind, failure.Kind, failure)
	}
	return nil
}

func (e *extractContext) theFailureDetailShouldContain(text string) error {
	failure, err := e.failure()
	if err != nil {
		return err
	}
	if !strings.Contains(failure.Detail, text) {
		return fmt.Errorf("expected detail to contain %q, got %q", text, failure.Detail)
	}
	return nil
}

func (e *extractContext) theFailureDetailShouldBeAtMost(n int) error {
	failure, err := e.failure()
	if err != nil {
		return err
	}
	if got := utf8.RuneCountInString(failure.Detail); got > n {
		return fmt.Errorf("detail has %d characters, want at most %d", got, n)
	}
	return nil
}

func (e *extractContext) theExtractionShouldBeRejectedAsInvalid() error {
	if e.err == nil {
		return fmt.Errorf("expected invalid identifier to be rejected")
	}
	if !strings.Contains(e.err.Error(), "invalid character") {
		return fmt.Errorf("expected validation error, got %v", e.err)
	}
	return nil
}

func (e *extractContext) ytDlpShouldNotHaveBeenInvoked() error {
	if _, err := os.Stat(filepath.Join(e.binDir, "calls.log")); err == nil {
		return fmt.Errorf("yt-dlp was invoked")
	}
	return nil
}

func (e *extractContext) iRunTheProbeCommand() error {
	e.err = cmd.RunProbeWithDependencies(context.Background(), e.probe(), e.output)
	return nil
}

func (e *extractContext) theProbeShouldSucceed() error {
	if e.err != nil {
		return fmt.Errorf("expected probe to succeed, got %v\n%s", e.err, e.output.String())
	}
	return nil
}

func (e *extractContext) theProbeShouldFail() error {
	if e.err == nil {
		return fmt.Errorf("expected probe to fail\n%s", e.output.String())
	}
	return nil
}

func (e *extractContext) theProbeOutputShouldMarkExecutable(state string) error {
	path := filepath.Join(e.binDir, e.executableName)
	for _, line := range strings.Split(e.output.String(), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "yt-dlp:"+path {
			if fields[1] != state {
				return fmt.Errorf("expected %s to be %q, got %q", path, state, fields[1])
			}
			return nil
		}
	}
	return fmt.Errorf("executable %s missing from probe output:\n%s", path, e.output.String())
}

func (e *extractContext) theProbeOutputShouldContain(text string) error {
	if !strings.Contains(e.output.String(), text) {
		return fmt.Errorf("expected probe output to contain %q:\n%s", text, e.output.String())
	}
	return nil
}
