// Package main is the entry point for the QueryForge server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/queryforge/queryforge/internal/api"
	"github.com/queryforge/queryforge/internal/config"
	"github.com/queryforge/queryforge/internal/observability"
	"github.com/queryforge/queryforge/internal/orchestrator"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	// Bootstrap logger; replaced once config is loaded.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfgManager, err := config.NewManager(*configPath, logger)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	defer cfgManager.Close()

	cfg := cfgManager.Get()

	logger = observability.NewLogger(cfg.Logging)
	slog.SetDefault(logger)
	logger.Info("starting queryforge", "version", "0.1.0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cfgManager.Watch(ctx); err != nil {
		logger.Warn("config hot-reload disabled", "error", err)
	}

	tracerProvider, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	gateway, closeGateway, err := buildGateway(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build cache gateway", "error", err)
		os.Exit(1)
	}
	defer closeGateway()

	guarded, closeGuard, err := buildGuard(cfg, logger)
	if err != nil {
		logger.Error("failed to build guard", "error", err)
		os.Exit(1)
	}
	defer closeGuard()

	resolver, err := orchestrator.New(gateway, guarded, logger)
	if err != nil {
		logger.Error("failed to build orchestrator", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(resolver, gateway, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/sql", handler.HandleGenerate)
	mux.HandleFunc("/healthz", handler.HandleHealthz)

	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if cfg.Metrics.Enabled {
		mux.Handle(metricsPath, promhttp.Handler())
	}

	middlewares := []func(http.Handler) http.Handler{
		api.RecoveryMiddleware(logger),
		observability.RequestIDMiddleware,
	}
	if cfg.RateLimit.Enabled {
		middlewares = append(middlewares, api.RateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}
	if cfg.Auth.Enabled {
		middlewares = append(middlewares, api.AuthMiddleware(api.AuthConfig{
			APIKeys:   cfg.Auth.APIKeys,
			JWTSecret: cfg.Auth.JWTSecret,
			SkipPaths: []string{"/healthz", metricsPath},
		}, logger))
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.Chain(mux, middlewares...),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
