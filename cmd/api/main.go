package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"puntomoda/internal/cache"
	"puntomoda/internal/config"
	"puntomoda/internal/db"
	"puntomoda/internal/httpserver"
	"puntomoda/internal/logging"
	"puntomoda/internal/metrics"
	cartrepo "puntomoda/internal/repository/cart"
	orderrepo "puntomoda/internal/repository/order"
	productrepo "puntomoda/internal/repository/product"
	sessionrepo "puntomoda/internal/repository/session"
	userrepo "puntomoda/internal/repository/user"
	cartsvc "puntomoda/internal/service/cart"
	"puntomoda/internal/service/catalog"
	ordersvc "puntomoda/internal/service/order"
	usersvc "puntomoda/internal/service/user"
	"puntomoda/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionSweepInterval = time.Hour

func main() {
	cfg := config.Load()
	logger := logging.Must(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("api exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run serves the API until ctx is done. Resources it opens are released
// before it returns.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer dbpool.Close()

	m := metrics.New()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	var catalogOpts []catalog.Option
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer rdb.Close()
			catalogOpts = append(catalogOpts, catalog.WithCache(cache.NewCatalog(rdb, cfg.CacheTTL, logger, m)))
			logger.Info("catalog cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
		}
	}
	catalogService := catalog.New(productRepo, logger, catalogOpts...)

	sessionRepo := sessionrepo.NewPostgres(dbpool, logger)
	sessions := session.NewManager(sessionRepo, cfg.SessionSecret, cfg.SessionTTL, logger)
	userService := usersvc.New(userrepo.NewPostgres(dbpool, logger), sessions, logger)
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool, logger), productRepo, logger)
	orderService := ordersvc.New(orderrepo.NewPostgres(dbpool, logger), m, logger)

	srv := httpserver.New(httpserver.Options{
		Addr:               cfg.HTTPAddr,
		FrontendURL:        cfg.FrontendURL,
		Development:        cfg.IsDevelopment(),
		AuthRequired:       cfg.AuthRequired,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
	}, logger, dbpool, httpserver.Deps{
		Catalog:  catalogService,
		Users:    userService,
		Carts:    cartService,
		Orders:   orderService,
		Sessions: sessions,
		Metrics:  m,
	})

	go sweepSessions(ctx, sessionRepo, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-serverErr:
		logger.Error("server error", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return serveErr
}

type expiredSessionSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// sweepSessions deletes expired session rows until ctx is done.
func sweepSessions(ctx context.Context, repo expiredSessionSweeper, logger *zap.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				logger.Warn("sweep expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}
