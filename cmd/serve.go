package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/poolfinder/pool-cli/internal/api"
	"github.com/poolfinder/pool-cli/internal/facility"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pool geo-search API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		srv := api.New(st, facility.NewEngine(st), api.Options{AllowedOrigins: cfg.Server.AllowedOrigins})
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		zap.L().Info("serve: listening", zap.String("addr", addr))
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
