package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/spf13/cobra"
)

// Flags are parsed by config.LoadConfig so that env, JSON and flags share
// one precedence order.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "serve",
		Short:              "Start the HTTP API",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(args)
			if err != nil {
				return err
			}
			logger := logging.New(os.Stdout, "json", cfg.LogLevel)

			app, err := server.NewApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
			defer app.Close()

			if err := app.Run(cmd.Context()); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}
