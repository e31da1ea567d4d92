package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/poolfinder/pool-cli/internal/enrich"
	"github.com/poolfinder/pool-cli/internal/facility"
	"github.com/poolfinder/pool-cli/internal/model"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill prices and free-swim schedules from facility pages",
	Long:  "Fetches each unenriched facility's site (or web search results when it has none), extracts facts, validates them and merges them into the record.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if strategy, _ := cmd.Flags().GetString("strategy"); strategy != "" {
			cfg.Enrich.Strategy = strategy
		}
		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		sel, err := selectorFromFlags(cmd)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		orch, err := buildOrchestrator(cfg, st, facility.NewEngine(st))
		if err != nil {
			return err
		}

		sum, err := orch.EnrichBatch(ctx, sel)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(sum); encErr != nil && err == nil {
				err = encErr
			}
		} else {
			formatEnrichSummary(cmd.OutOrStdout(), sum)
		}
		return err
	},
}

func init() {
	enrichCmd.Flags().Int64("id", 0, "enrich a single facility by id")
	enrichCmd.Flags().Bool("retry-failed", false, "only retry facilities whose last enrichment failed")
	enrichCmd.Flags().Int("limit", 0, "max facilities to process (0 = all)")
	enrichCmd.Flags().Bool("dry-run", false, "extract and validate without writing")
	enrichCmd.Flags().String("strategy", "", "extraction strategy: heuristic, model or auto (overrides enrich.strategy)")
	enrichCmd.Flags().Bool("json", false, "print the run summary as JSON")
	enrichCmd.MarkFlagsMutuallyExclusive("id", "retry-failed")
	rootCmd.AddCommand(enrichCmd)
}

func selectorFromFlags(cmd *cobra.Command) (enrich.Selector, error) {
	id, _ := cmd.Flags().GetInt64("id")
	retry, _ := cmd.Flags().GetBool("retry-failed")
	limit, _ := cmd.Flags().GetInt("limit")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if id < 0 {
		return enrich.Selector{}, fmt.Errorf("--id must be positive, got %d", id)
	}
	if limit < 0 {
		return enrich.Selector{}, fmt.Errorf("--limit must be >= 0, got %d", limit)
	}

	sel := enrich.Selector{Mode: enrich.ModePending, Limit: limit, DryRun: dryRun}
	switch {
	case id > 0:
		sel.Mode = enrich.ModeID
		sel.ID = id
	case retry:
		sel.Mode = enrich.ModeRetry
	}
	return sel, nil
}

func formatEnrichSummary(out io.Writer, s enrich.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSOURCE\tFIELDS")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t------\t------")
	for _, o := range s.Outcomes {
		status := string(o.Status)
		if o.Status != model.EnrichmentSuccess && o.Reason != "" {
			status += " (" + o.Reason + ")"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			o.ID,
			truncate(o.Name, 30),
			status,
			o.TextSource,
			strings.Join(o.Fields, ","),
		)
	}
	_ = w.Flush()

	mode := s.Mode
	if s.DryRun {
		mode += ", dry run"
	}
	_, _ = fmt.Fprintf(out, "\nrun %s (%s): total %d, success %d, failed %d, skipped %d\n",
		truncateID(s.ID), mode, s.Total, s.Success, s.Failed, s.Skipped)
}

// truncate clips s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
