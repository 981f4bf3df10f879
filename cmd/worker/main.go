// cmd/worker/main.go
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

	"github.com/spf13/afero"

	"github.com/ammerola/storefront-be/internal/adapters/slotstore"
	"github.com/ammerola/storefront-be/internal/pkg/config"
	"github.com/ammerola/storefront-be/internal/pkg/logger"
	"github.com/ammerola/storefront-be/internal/pkg/metrics"
	"github.com/ammerola/storefront-be/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json").Logger

	// Load configuration
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat).Logger
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr),
		slog.String("cart_backend", cfg.Cart.Backend))

	ctx := context.Background()

	// The sweep needs the same slot backend the API writes to
	slots, err := slotstore.Open(ctx, cfg, afero.NewOsFs(), slogger)
	if err != nil {
		slogger.Error("failed to open cart slot backend", "err", err)
		os.Exit(1)
	}
	defer slots.Close()

	if slots.Sweeper == nil {
		slogger.Info("cart backend expires slots itself, sweep will be a no-op",
			slog.String("backend", slots.Name))
	}

	m := metrics.New()
	notifications := workers.NewNotificationProcessor(workers.NewMailer(&cfg.Checkout, slogger), slogger)
	cleanup := workers.NewCleanupProcessor(slots.Sweeper, cfg.Cart.SweepAfter, slogger)
	mux := workers.NewServeMux(notifications, cleanup, m)

	srv := workers.NewServer(&cfg.Asynq, slogger)

	scheduler, err := workers.NewScheduler(&cfg.Asynq, cfg.Cart.SweepAfter, slogger)
	if err != nil {
		slogger.Error("failed to create scheduler", "err", err)
		os.Exit(1)
	}

	// Handle shutdown gracefully
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", "err", err)
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			slogger.Error("failed to run scheduler", "err", err)
			shutdown <- syscall.SIGTERM
		}
	}()

	if cfg.Asynq.MetricsAddr != "" {
		go serveMetrics(cfg.Asynq.MetricsAddr, m, slogger)
	}

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues),
		slog.String("cleanup_schedule", cfg.Asynq.CleanupSchedule))

	// Wait for shutdown signal
	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

func serveMetrics(addr string, m *metrics.Metrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("serving worker metrics", slog.String("address", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", "err", err)
	}
}
