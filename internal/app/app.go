// Package app opens the ledger and builds the services shared by the HTTP
// server, the gRPC server and the tsm CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/example/threestatement/internal/coa"
	"github.com/example/threestatement/internal/config"
	"github.com/example/threestatement/internal/forecast"
	"github.com/example/threestatement/internal/ingest"
	"github.com/example/threestatement/internal/ledger"
	"github.com/example/threestatement/internal/mapping"
	"github.com/example/threestatement/internal/statements"
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      *ledger.Store
	Importer   *ingest.Validator
	Mappings   *mapping.Resolver
	Statements *statements.Aggregator
	Forecasts  *forecast.Service
	Integrity  *ledger.Validator
}

// NewLogger returns the JSON logger every binary writes with.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Open connects to cfg.DatabaseURL, applies the schema, seeds the master
// chart and checks the engine account codes against it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := ledger.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	store.SetQueryTimeout(time.Duration(cfg.File.Database.QueryTimeoutSeconds) * time.Second)
	store.SetMaxOpenConns(cfg.File.Database.MaxOpenConns)

	a, err := build(ctx, cfg, logger, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, logger *slog.Logger, store *ledger.Store) (*App, error) {
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	added, err := store.SeedChart(ctx, coa.DefaultChart())
	if err != nil {
		return nil, fmt.Errorf("seed chart: %w", err)
	}
	if added > 0 {
		logger.Info("master chart seeded", "accounts", added)
	}

	chart, err := store.ListMasterAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chart: %w", err)
	}
	codes := cfg.File.Engine
	if err := codes.Validate(chart); err != nil {
		return nil, fmt.Errorf("engine codes: %w", err)
	}

	agg := statements.NewAggregator(store, codes, logger)
	fc := forecast.NewService(store, agg, logger)
	fc.SetDefaultScenario(cfg.File.Forecast.DefaultScenario)

	logger.Info("ledger ready", "dialect", store.Dialect().String())
	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Importer:   ingest.NewValidator(store, logger),
		Mappings:   mapping.NewResolver(store, logger),
		Statements: agg,
		Forecasts:  fc,
		Integrity:  ledger.NewValidator(store),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
