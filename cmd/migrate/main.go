package main

import (
	"context"
	"fmt"
	"os"

	"puntomoda/internal/config"
	"puntomoda/internal/logging"
	"puntomoda/internal/migrate"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the Punto Moda database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := boot()
			defer func() { _ = logger.Sync() }()
			version, err := migrate.Up(cmd.Context(), cfg.DBConnString)
			if err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("migrations applied", zap.Uint("version", version))
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := boot()
			defer func() { _ = logger.Sync() }()
			if err := migrate.Down(cmd.Context(), cfg.DBConnString); err != nil {
				return fmt.Errorf("roll back migrations: %w", err)
			}
			logger.Info("migrations rolled back")
			return nil
		},
	})
	return root
}

func boot() (config.Config, *zap.Logger) {
	cfg := config.Load()
	logger := logging.Must(cfg.Env).Named("migrate")
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	return cfg, logger
}
