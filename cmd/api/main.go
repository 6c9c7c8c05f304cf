package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/threestatement/internal/api"
	"github.com/example/threestatement/internal/app"
	"github.com/example/threestatement/internal/config"
	"github.com/example/threestatement/internal/security"
)

func main() {
	logger := app.NewLogger(os.Stdout, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger = app.NewLogger(os.Stdout, level)
	slog.SetDefault(logger)

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var limiter *security.RedisTokenBucket
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		limiter = &security.RedisTokenBucket{
			Redis:      redisClient,
			Prefix:     "tsm_api",
			Capacity:   cfg.RateLimitCapacity,
			RefillRate: cfg.RateLimitRefillPerSec,
		}
	} else {
		logger.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	router, err := api.NewRouter(api.Dependencies{
		Logger:       logger,
		Ledger:       a.Store,
		Importer:     a.Importer,
		Mappings:     a.Mappings,
		Statements:   a.Statements,
		Forecasts:    a.Forecasts,
		Integrity:    a.Integrity,
		RateLimiter:  limiter,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	tlsCfg, err := security.ServerTLSConfig(cfg.File.TLS)
	if err != nil {
		logger.Error("failed to load TLS config", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		TLSConfig:         tlsCfg,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Info("statements api listening", "addr", cfg.APIAddr, "tls", tlsCfg != nil)
	if tlsCfg != nil {
		// Certificates are already loaded into TLSConfig.
		err = srv.ListenAndServeTLS("", "")
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
