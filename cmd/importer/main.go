package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"puntomoda/internal/cache"
	"puntomoda/internal/config"
	"puntomoda/internal/db"
	"puntomoda/internal/importer"
	"puntomoda/internal/logging"
	productrepo "puntomoda/internal/repository/product"
	"puntomoda/internal/service/catalog"

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
	var filePath string
	cmd := &cobra.Command{
		Use:          "importer --file products.csv",
		Short:        "Import a product catalog from CSV",
		Long:         "Each row is one variant; rows sharing a product name become one product.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.Must(cfg.Env).Named("importer")
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			pool, err := db.Connect(ctx, cfg.DBConnString, logger)
			if err != nil {
				return fmt.Errorf("connect db: %w", err)
			}
			defer pool.Close()

			f, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			var opts []catalog.Option
			if cfg.RedisAddr != "" {
				rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
				if err != nil {
					logger.Warn("redis unavailable, cached listings expire on their own", zap.Error(err))
				} else {
					defer rdb.Close()
					opts = append(opts, catalog.WithCache(cache.NewCatalog(rdb, cfg.CacheTTL, logger, nil)))
				}
			}
			svc := catalog.New(productrepo.NewPostgres(pool, logger), logger, opts...)
			imp := importer.NewCSVImporter(f, svc, logger)

			start := time.Now()
			count, err := imp.Run(ctx)
			if err != nil {
				return fmt.Errorf("import failed after %d products: %w", count, err)
			}
			logger.Info("import finished",
				zap.Int("products", count),
				zap.String("file", filePath),
				zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to the product CSV")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
