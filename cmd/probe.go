package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	appextraction "audio-extract-service/application/extraction"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Show which extraction backends are usable on this host",
	Long: `Run the liveness check of every backend candidate in priority order and
report which one a request would select.

Example:
  audio-extract-service probe`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	c, err := GetConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}

	return RunProbeWithDependencies(cmd.Context(), newBackendProbe(c, logger), cmd.OutOrStdout())
}

// BackendReporter reports the status of every backend candidate
type BackendReporter interface {
	Report(ctx context.Context) []appextraction.CandidateStatus
}

// RunProbeWithDependencies prints the probe report (for testing)
func RunProbeWithDependencies(ctx context.Context, reporter BackendReporter, out OutputWriter) error {
	statuses := reporter.Report(ctx)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tSTATUS\tDETAIL")

	selected := ""
	for _, s := range statuses {
		state := "unavailable"
		if s.Available {
			state = "available"
			if selected == "" {
				selected = s.Name
				state = "selected"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, state, s.Detail)
	}
	w.Flush()

	if selected == "" {
		return fmt.Errorf("no extraction backend available")
	}
	return nil
}
