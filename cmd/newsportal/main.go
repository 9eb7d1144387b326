// Package main is the entry point for the news portal category service.
// The default command loads configuration, connects to services, sets up
// routing, and starts the HTTP server with graceful shutdown support. The
// other commands run one-off maintenance tasks against the same database.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"newsportal/internal/config"
)

var (
	envFile string
	cfg     *config.Config

	rootCmd = &cobra.Command{
		Use:           "newsportal",
		Short:         "Category hierarchy and resolution service for the news portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg = loaded
			setupLogger(cfg)
			return nil
		},
		RunE: runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file to preload")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, backfillCmd, checkCmd)
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "report matches without updating articles")
}

// setupLogger installs the process-wide logger: text in development,
// JSON everywhere else.
func setupLogger(c *config.Config) {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	var handler slog.Handler
	if c.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
