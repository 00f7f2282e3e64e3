package cmd

import (
	"log/slog"
	"time"

	appextraction "audio-extract-service/application/extraction"
	"audio-extract-service/domain/extraction"
	"audio-extract-service/infrastructure/config"
	"audio-extract-service/infrastructure/filesystem"
	"audio-extract-service/infrastructure/youtube"
	"audio-extract-service/infrastructure/ytdlp"
)

// responseSlack covers scratch handling and streaming the artifact back
const responseSlack = 30 * time.Second

// maxCandidates is the most backends one resolution can try: the directory of
// the running binary, each search directory, the PATH lookup, the bare name and
// the library
func maxCandidates(c *config.Config) int {
	return len(c.YtDlp.SearchDirs) + 4
}

// writeTimeout bounds one HTTP response: a liveness check for every possible
// candidate, then a full extraction
func writeTimeout(c *config.Config) time.Duration {
	probing := c.Extraction.ProbeTimeout * time.Duration(maxCandidates(c))
	return probing + c.Extraction.ExtractTimeout + responseSlack
}

// newBackendProbe builds the candidate chain: yt-dlp executables first, then
// the in-process library
func newBackendProbe(c *config.Config, logger *slog.Logger) *appextraction.BackendProbe {
	locator := ytdlp.NewLocator(
		ytdlp.WithExecutableName(c.YtDlp.ExecutableName),
		ytdlp.WithSearchDirs(c.YtDlp.SearchDirs),
	)
	executableOpts := []ytdlp.BackendOption{
		ytdlp.WithAudioFormat(c.YtDlp.AudioFormat),
		ytdlp.WithProbeTimeout(c.Extraction.ProbeTimeout),
		ytdlp.WithExtractTimeout(c.Extraction.ExtractTimeout),
		ytdlp.WithDiagnosticLimit(c.Extraction.DiagnosticLimit),
		ytdlp.WithLogger(logger),
	}

	library := youtube.NewBackend(
		youtube.WithEnabled(c.Library.Enabled),
		youtube.WithExtractTimeout(c.Extraction.ExtractTimeout),
		youtube.WithDiagnosticLimit(c.Extraction.DiagnosticLimit),
		youtube.WithLogger(logger),
	)

	return appextraction.NewBackendProbe(
		[]appextraction.CandidateSource{
			func() []extraction.Backend { return locator.Backends(executableOpts...) },
			appextraction.StaticCandidates(library),
		},
		appextraction.WithCacheTTL(c.Extraction.ProbeCacheTTL),
		appextraction.WithProbeLogger(logger),
	)
}

// newExtractionService wires the production extraction service
func newExtractionService(c *config.Config, logger *slog.Logger) *appextraction.Service {
	scratch := filesystem.NewScratchSpace(c.Extraction.ScratchDir, filesystem.WithScratchLogger(logger))
	return appextraction.NewService(newBackendProbe(c, logger), scratch, filesystem.NewChecker(), logger)
}
