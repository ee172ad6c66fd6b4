package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/botique/storefront-backend/api"
	"github.com/botique/storefront-backend/internal/storefront"
	"github.com/botique/storefront-backend/pkg/config"
	"github.com/botique/storefront-backend/pkg/db"
	"github.com/botique/storefront-backend/pkg/logger"
	"github.com/botique/storefront-backend/pkg/metrics"
	"github.com/botique/storefront-backend/pkg/migrate"
	"github.com/botique/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "storefront stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}

	if err := migrate.MaybeEnsure(ctx, cfg, logg, dbClient); err != nil {
		return teardown(err, dbClient, nil)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			return teardown(err, dbClient, nil)
		}
	}

	registry := prometheus.NewRegistry()

	// The bot runtime embeds the core through internal/storefront. Building
	// it here makes a misconfigured deployment fail at boot.
	if _, err := storefront.New(storefront.Params{
		Config:  cfg,
		DB:      dbClient,
		Redis:   redisClient,
		Logger:  logg,
		Metrics: metrics.NewStorefrontMetrics(registry),
	}); err != nil {
		return teardown(err, dbClient, redisClient)
	}

	routerParams := api.RouterParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Registry: registry,
	}
	if redisClient != nil {
		routerParams.Redis = redisClient
	}

	server := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: api.NewRouter(routerParams),
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(startCtx, "storefront ops server started")

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return teardown(err, dbClient, redisClient)
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return teardown(server.Shutdown(shutdownCtx), dbClient, redisClient)
}

// teardown closes the shared clients and folds their errors into err.
func teardown(err error, dbClient *db.Client, redisClient *redis.Client) error {
	if redisClient != nil {
		err = multierr.Append(err, redisClient.Close())
	}
	if dbClient != nil {
		err = multierr.Append(err, dbClient.Close())
	}
	return err
}
