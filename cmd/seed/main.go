package main

import (
	"context"

	"puntomoda/internal/config"
	"puntomoda/internal/db"
	"puntomoda/internal/logging"
	"puntomoda/internal/migrate"
	productrepo "puntomoda/internal/repository/product"
	sessionrepo "puntomoda/internal/repository/session"
	userrepo "puntomoda/internal/repository/user"
	"puntomoda/internal/seed"
	"puntomoda/internal/service/catalog"
	usersvc "puntomoda/internal/service/user"
	"puntomoda/internal/session"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger := logging.Must(cfg.Env).Named("seed")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	products := productrepo.NewPostgres(pool, logger)
	sessions := session.NewManager(sessionrepo.NewPostgres(pool, logger), cfg.SessionSecret, cfg.SessionTTL, logger)
	users := usersvc.New(userrepo.NewPostgres(pool, logger), sessions, logger)

	res, err := seed.Apply(ctx, products, catalog.New(products, logger), users, logger)
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied",
		zap.Int("products_created", res.ProductsCreated),
		zap.Int("products_skipped", res.ProductsSkipped),
		zap.Bool("demo_user_created", res.UserCreated),
	)
}
