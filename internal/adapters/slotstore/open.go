// internal/adapters/slotstore/open.go
package slotstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/ammerola/storefront-be/internal/adapters/db"
	"github.com/ammerola/storefront-be/internal/adapters/filestore"
	"github.com/ammerola/storefront-be/internal/adapters/memory"
	redis_a "github.com/ammerola/storefront-be/internal/adapters/redis_adapter"
	"github.com/ammerola/storefront-be/internal/adapters/storage"
	"github.com/ammerola/storefront-be/internal/core/ports"
	"github.com/ammerola/storefront-be/internal/pkg/config"
)

// Backend is an opened slot store plus whatever must be closed with it
type Backend struct {
	Name  string
	Store ports.SlotStore
	// Sweeper is nil for backends that expire slots on their own
	Sweeper ports.SlotSweeper

	closers []func()
}

// Close releases connections held by the backend
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Open connects the slot backend named by cfg.Cart.Backend. fsys is only
// used by the file backend.
func Open(ctx context.Context, cfg *config.Config, fsys afero.Fs, logger *slog.Logger) (*Backend, error) {
	b := &Backend{Name: cfg.Cart.Backend}

	logger.Info("opening cart slot backend", slog.String("backend", b.Name))

	switch cfg.Cart.Backend {
	case config.BackendMemory:
		b.Store = memory.NewSlotStore()

	case config.BackendFile:
		store, err := filestore.NewSlotStore(fsys, cfg.Cart.FileDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open file slot store: %w", err)
		}
		b.Store, b.Sweeper = store, store

	case config.BackendRedis:
		client := NewRedisClient(&cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		b.closers = append(b.closers, func() { client.Close() })
		b.Store = redis_a.NewSlotStore(client, cfg.Cart.SlotTTL, logger)

	case config.BackendPostgres:
		database, err := db.NewDatabase(ctx, databaseConfig(&cfg.Database), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		b.closers = append(b.closers, database.Close)

		if cfg.Database.RunMigrations {
			if err := runMigrations(ctx, cfg, logger); err != nil {
				b.Close()
				return nil, err
			}
		}

		repo := db.NewSlotRepository(database.SQL(), logger)
		b.Store, b.Sweeper = repo, repo

	case config.BackendS3:
		store, err := storage.NewSlotStore(ctx, &storage.S3Config{
			Region:          cfg.AWS.Region,
			Bucket:          cfg.AWS.S3Bucket,
			Prefix:          cfg.AWS.S3Prefix,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.AWS.S3Endpoint,
			UsePathStyle:    cfg.AWS.UsePathStyle,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 slot store: %w", err)
		}
		b.Store, b.Sweeper = store, store

	default:
		return nil, fmt.Errorf("unknown cart backend %q", cfg.Cart.Backend)
	}

	return b, nil
}

// NewRedisClient builds a go-redis client from config
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
}

func databaseConfig(cfg *config.DatabaseConfig) *db.Config {
	return &db.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		Database:           cfg.Name,
		SSLMode:            cfg.SSLMode,
		MaxConnections:     cfg.MaxConnections,
		MinConnections:     cfg.MinConnections,
		MaxConnLifetime:    cfg.MaxConnLifetime,
		MaxConnIdleTime:    cfg.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.HealthCheckPeriod,
		ConnectTimeout:     cfg.ConnectTimeout,
		EnableQueryLogging: cfg.EnableQueryLogging,
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		UseEmbedded: true,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	if err := db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
