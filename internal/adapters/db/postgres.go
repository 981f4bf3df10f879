// internal/adapters/db/postgres.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
)

// Config holds database configuration
type Config struct {
	Host               string
	Port               string
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int32
	MinConnections     int32
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	EnableQueryLogging bool
}

// DefaultConfig returns default database configuration
func DefaultConfig() *Config {
	return &Config{
		Host:              "localhost",
		Port:              "5432",
		User:              "storefront",
		Database:          "storefront",
		SSLMode:           "disable",
		MaxConnections:    10,
		MinConnections:    2,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   time.Minute * 30,
		HealthCheckPeriod: time.Minute,
		ConnectTimeout:    time.Second * 10,
	}
}

// Database wraps pgxpool and hands out a database/sql view of the same pool
type Database struct {
	pool   *pgxpool.Pool
	sqlDB  *sql.DB
	config *Config
	logger *slog.Logger
}

// NewDatabase creates a new database connection pool
func NewDatabase(ctx context.Context, config *Config, logger *slog.Logger) (*Database, error) {
	if config == nil {
		config = DefaultConfig()
	}

	poolConfig, err := buildPoolConfig(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build pool config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &Database{
		pool:   pool,
		sqlDB:  stdlib.OpenDBFromPool(pool),
		config: config,
		logger: logger.With(slog.String("component", "database")),
	}

	db.logger.Info("database connection established",
		slog.String("host", config.Host),
		slog.String("database", config.Database),
		slog.Int("max_connections", int(config.MaxConnections)),
	)

	return db, nil
}

func buildPoolConfig(config *Config, logger *slog.Logger) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	poolConfig.MaxConns = config.MaxConnections
	poolConfig.MinConns = config.MinConnections
	poolConfig.MaxConnLifetime = config.MaxConnLifetime
	poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = config.HealthCheckPeriod
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe

	if config.EnableQueryLogging {
		poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   newPgxLogger(logger),
			LogLevel: tracelog.LogLevelDebug,
		}
	}

	return poolConfig, nil
}

// DSN renders the keyword/value connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		c.Host, c.Port, c.User, c.Password,
		c.Database, c.SSLMode, int(c.ConnectTimeout.Seconds()),
	)
}

// URL renders the connection string in the form golang-migrate expects
func (c *Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Pool returns the underlying pgxpool.Pool
func (db *Database) Pool() *pgxpool.Pool {
	return db.pool
}

// SQL returns a *sql.DB backed by the pgx pool
func (db *Database) SQL() *sql.DB {
	return db.sqlDB
}

// Close closes all database connections
func (db *Database) Close() {
	_ = db.sqlDB.Close()
	db.pool.Close()
	db.logger.Info("database connections closed")
}

// Ping verifies database connectivity
func (db *Database) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Health returns database health information
func (db *Database) Health(ctx context.Context) map[string]interface{} {
	stats := db.pool.Stat()
	health := map[string]interface{}{
		"status":               "healthy",
		"total_connections":    stats.TotalConns(),
		"idle_connections":     stats.IdleConns(),
		"acquired_connections": stats.AcquiredConns(),
		"max_connections":      stats.MaxConns(),
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*2)
	defer cancel()

	var result int
	if err := db.pool.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
	}

	return health
}

// pgxLogger adapts slog for pgx logging
type pgxLogger struct {
	logger *slog.Logger
}

func newPgxLogger(logger *slog.Logger) *pgxLogger {
	return &pgxLogger{
		logger: logger.With(slog.String("component", "pgx")),
	}
}

func (l *pgxLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	attrs := make([]slog.Attr, 0, len(data))
	for k, v := range data {
		attrs = append(attrs, slog.Any(k, v))
	}

	switch level {
	case tracelog.LogLevelError:
		l.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	case tracelog.LogLevelWarn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	case tracelog.LogLevelInfo:
		l.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
	default:
		l.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
	}
}
