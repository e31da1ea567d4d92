package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poolfinder/pool-cli/internal/facility"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clear placeholder values so enrichment can replace them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("clean"); err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := facility.NewEngine(st).Clean(cmd.Context(), dryRun)
		if err != nil {
			return err
		}
		verb := "cleaned"
		if dryRun {
			verb = "would clean"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d records\n", verb, n)
		return nil
	},
}

func init() {
	cleanCmd.Flags().Bool("dry-run", false, "count affected records without writing")
	rootCmd.AddCommand(cleanCmd)
}
