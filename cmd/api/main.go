// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/afero"

	"github.com/ammerola/storefront-be/internal/adapters/catalog"
	"github.com/ammerola/storefront-be/internal/adapters/orders"
	"github.com/ammerola/storefront-be/internal/adapters/slotstore"
	"github.com/ammerola/storefront-be/internal/core/ports"
	"github.com/ammerola/storefront-be/internal/core/services"
	"github.com/ammerola/storefront-be/internal/handlers"
	"github.com/ammerola/storefront-be/internal/pkg/config"
	"github.com/ammerola/storefront-be/internal/pkg/logger"
	"github.com/ammerola/storefront-be/internal/pkg/metrics"
	"github.com/ammerola/storefront-be/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json").Logger

	slogger.Info("starting storefront API",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	// Load configuration
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat).Logger
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
		slog.String("cart_backend", cfg.Cart.Backend),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.cleanup()

	go evictIdleCarts(ctx, deps.carts, cfg.Cart.IdleEviction, slogger)

	server := setupHTTPServer(ctx, cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server", slog.String("address", cfg.GetServerAddress()))
		serverErrors <- server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", "err", err)
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		server.RegisterOnShutdown(stop)

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", "err", err)
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	slots          *slotstore.Backend
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	metrics        *metrics.Metrics
	carts          *services.CartRegistry
	router         *handlers.Router
}

func (d *dependencies) cleanup() {
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.slots != nil {
		d.slots.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{metrics: metrics.New()}

	slots, err := slotstore.Open(ctx, cfg, afero.NewOsFs(), logger)
	if err != nil {
		return nil, err
	}
	deps.slots = slots

	// Catalog
	var repo *catalog.Repository
	if cfg.Cart.CatalogFile != "" {
		repo, err = catalog.NewFileRepository(afero.NewOsFs(), cfg.Cart.CatalogFile, logger)
	} else {
		repo, err = catalog.NewBundledRepository(logger)
	}
	if err != nil {
		deps.cleanup()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalogService := services.NewCatalogService(repo, logger)

	// Carts
	deps.carts = services.NewCartRegistry(slots.Store, cfg.Cart.DefaultSession, deps.metrics, logger,
		services.WithWriteTimeout(cfg.Cart.WriteTimeout))

	// Checkout
	var placer ports.OrderPlacer = orders.NewSimulatedPlacer(cfg.Checkout.SimulatedDelay, logger)
	if cfg.Checkout.NotifyOrders {
		logger.Info("initializing Asynq client", slog.String("redis_addr", cfg.Asynq.RedisAddr))

		redisOpt := workers.RedisOpt(&cfg.Asynq)
		deps.asynqClient = asynq.NewClient(redisOpt)
		deps.asynqInspector = asynq.NewInspector(redisOpt)
		placer = orders.NewNotifyingPlacer(placer, deps.asynqClient, logger)
	}
	checkoutService := services.NewCheckoutService(placer, logger)

	healthDeps := map[string]handlers.Pinger{"cart_slots": slots.Store}
	var inspector handlers.QueueInspector
	if deps.asynqInspector != nil {
		inspector = deps.asynqInspector
	}

	deps.router = &handlers.Router{
		Cart:     handlers.NewCartHandler(deps.carts, catalogService, logger),
		Events:   handlers.NewEventsHandler(deps.carts, 0, logger),
		Catalog:  handlers.NewCatalogHandler(catalogService, logger),
		Checkout: handlers.NewCheckoutHandler(deps.carts, checkoutService, deps.metrics, logger),
		Health:   handlers.NewHealthHandler(healthDeps, inspector, cfg, logger),
		Metrics:  deps.metrics,
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(ctx context.Context, cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	return &http.Server{
		// request contexts derive from ctx so cancelling it ends open event streams
		BaseContext:    func(net.Listener) context.Context { return ctx },
		Addr:           cfg.GetServerAddress(),
		Handler:        deps.router.Handler(cfg, logger),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

// evictIdleCarts drops in-memory carts nobody has touched for idle. Their
// slots stay put, so the next request rehydrates them.
func evictIdleCarts(ctx context.Context, carts *services.CartRegistry, idle time.Duration, logger *slog.Logger) {
	if idle <= 0 {
		return
	}

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := carts.EvictIdle(idle); n > 0 {
				logger.Debug("evicted idle carts", slog.Int("count", n), slog.Int("remaining", carts.Len()))
			}
		}
	}
}
