package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag in the command tree to its default so
// tests can run rootCmd more than once.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"migrate", "ingest", "enrich", "clean", "status", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "pool-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestEnrichCommand_Flags(t *testing.T) {
	for _, name := range []string{"id", "retry-failed", "limit", "dry-run", "strategy", "json"} {
		require.NotNil(t, enrichCmd.Flags().Lookup(name), "enrich should have --%s", name)
	}
	assert.Equal(t, "0", enrichCmd.Flags().Lookup("limit").DefValue)
}

func TestIngestCommand_Flags(t *testing.T) {
	for _, name := range []string{"source", "static", "seed"} {
		require.NotNil(t, ingestCmd.Flags().Lookup(name), "ingest should have --%s", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestStatusCommand_Flags(t *testing.T) {
	flag := statusCmd.Flags().Lookup("runs")
	require.NotNil(t, flag)
	assert.Equal(t, "10", flag.DefValue)
}

func TestCleanCommand_Flags(t *testing.T) {
	require.NotNil(t, cleanCmd.Flags().Lookup("dry-run"))
}
