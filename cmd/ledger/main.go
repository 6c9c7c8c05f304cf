package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/threestatement/internal/app"
	"github.com/example/threestatement/internal/config"
	"github.com/example/threestatement/internal/grpcapi"
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

	a, err := app.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	tlsCfg, err := security.ServerTLSConfig(cfg.File.TLS)
	if err != nil {
		logger.Error("failed to load TLS config", "error", err)
		os.Exit(1)
	}

	gs := grpcapi.NewGRPCServer(grpcapi.NewServer(a.Store, a.Statements, a.Forecasts, logger), tlsCfg)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen", "addr", cfg.GRPCAddr, "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down grpc server")
		gs.GracefulStop()
	}()

	logger.Info("statements grpc server listening", "addr", cfg.GRPCAddr, "tls", tlsCfg != nil)
	if err := gs.Serve(lis); err != nil {
		logger.Error("grpc server error", "error", err)
		os.Exit(1)
	}
}
