package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"audio-extract-service/application/export"
	"audio-extract-service/infrastructure/httpapi"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the audio extraction HTTP API",
	Long: `Start the HTTP API:

  POST /api/youtube-audio  {"videoId": "..."}  returns the audio file
  POST /api/xml-export     echoes score data for client-side MusicXML export

Example:
  audio-extract-service serve --addr 127.0.0.1:8888`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := GetConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = c.Server.Address
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := httpapi.NewHandler(newExtractionService(c, logger), export.NewService(), logger)
	server := httpapi.NewServer(addr, handler, writeTimeout(c), logger)
	probe := newBackendProbe(c, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		// Startup report only; requests re-probe on their own
		backend, err := probe.Resolve(gctx)
		if err != nil {
			logger.Warn("no extraction backend available at startup", slog.String("error", err.Error()))
			return nil
		}
		logger.Info("extraction backend available", slog.String("backend", backend.Name()))
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
