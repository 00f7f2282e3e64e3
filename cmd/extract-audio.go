package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"audio-extract-service/application/extraction"
	domain "audio-extract-service/domain/extraction"

	"github.com/spf13/cobra"
)

var (
	extractVideoID   string
	extractOutputDir string
)

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio",
	Short: "Extract audio for one video and save it locally",
	Long: `Run a single extraction request and write the resulting audio file.

The file is named audio_<id><ext>, where the extension is whatever the
selected backend produced.

Example:
  audio-extract-service extract-audio --id dQw4w9WgXcQ
  audio-extract-service extract-audio --id dQw4w9WgXcQ --output ~/Music`,
	RunE: runExtractAudio,
}

func init() {
	rootCmd.AddCommand(extractAudioCmd)
	extractAudioCmd.Flags().StringVar(&extractVideoID, "id", "", "Video identifier (required)")
	extractAudioCmd.Flags().StringVar(&extractOutputDir, "output", ".", "Directory to write the audio file to")
	extractAudioCmd.MarkFlagRequired("id")
}

func runExtractAudio(cmd *cobra.Command, args []string) error {
	c, err := GetConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}

	return RunExtractAudioWithDependencies(
		cmd.Context(),
		newExtractionService(c, logger),
		extractVideoID,
		extractOutputDir,
		cmd.OutOrStdout(),
	)
}

// AudioExtractor is the extraction core as seen by commands
type AudioExtractor interface {
	Extract(ctx context.Context, req *domain.ExtractionRequest) (*domain.Artifact, error)
}

var _ AudioExtractor = (*extraction.Service)(nil)

// RunExtractAudioWithDependencies runs the extract-audio command with injected dependencies (for testing)
func RunExtractAudioWithDependencies(
	ctx context.Context,
	extractor AudioExtractor,
	videoID string,
	outputDir string,
	output OutputWriter,
) error {
	req, err := domain.NewExtractionRequest(videoID)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Extracting audio for %s...\n", req.VideoID)

	art, err := extractor.Extract(ctx, req)
	outcome := domain.OutcomeOf(art, err)
	if !outcome.Succeeded() {
		return outcome.Failure
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outputDir, art.Filename)
	if err := os.WriteFile(path, art.Data, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	fmt.Fprintf(output, "Successfully created: %s (%s, %d bytes)\n", path, art.MediaType, len(art.Data))
	return nil
}
