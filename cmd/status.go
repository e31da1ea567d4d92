package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/poolfinder/pool-cli/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show enrichment status counts and recent runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("status"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		counts, err := st.CountByStatus(ctx)
		if err != nil {
			return eris.Wrap(err, "status")
		}
		limit, _ := cmd.Flags().GetInt("runs")
		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		formatStatusCounts(cmd.OutOrStdout(), counts)
		if len(runs) > 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			formatRunsList(cmd.OutOrStdout(), runs)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().Int("runs", 10, "number of recent enrichment runs to show")
	rootCmd.AddCommand(statusCmd)
}

// formatStatusCounts writes per-status record counts to w.
func formatStatusCounts(out io.Writer, counts map[model.EnrichmentStatus]int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	total := 0
	for _, status := range []model.EnrichmentStatus{model.EnrichmentPending, model.EnrichmentSuccess, model.EnrichmentFailed} {
		_, _ = fmt.Fprintf(w, "%s:\t%d\n", status, counts[status])
		total += counts[status]
	}
	_, _ = fmt.Fprintf(w, "total:\t%d\n", total)
	_ = w.Flush()
}

// formatRunsList writes a tabular list of enrichment runs to w.
func formatRunsList(out io.Writer, runs []model.EnrichmentRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tMODE\tTOTAL\tSUCCESS\tFAILED\tSKIPPED\tSTARTED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t-------\t------\t-------\t-------\t--------")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			truncateID(r.ID),
			r.Mode,
			r.Total,
			r.Success,
			r.Failed,
			r.Skipped,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
		)
	}
	_ = w.Flush()
}
