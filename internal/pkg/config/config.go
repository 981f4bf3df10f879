// internal/pkg/config/config.go
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Slot backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Config holds all application configuration
type Config struct {
	// Application
	App AppConfig

	// Cart persistence
	Cart CartConfig

	// Checkout
	Checkout CheckoutConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Asynq
	Asynq AsynqConfig

	// AWS
	AWS AWSConfig

	// Secrets
	Secrets SecretsConfig

	// Security
	Security SecurityConfig

	// Server
	Server ServerConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `required:"true"`
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// CartConfig selects and tunes the slot a cart is persisted to
type CartConfig struct {
	Backend        string `required:"true"` // memory, file, redis, postgres, s3
	FileDir        string
	SlotTTL        time.Duration // redis only; 0 keeps slots forever
	WriteTimeout   time.Duration
	DefaultSession string
	SessionCookie  string `required:"true"`
	SessionMaxAge  time.Duration
	IdleEviction   time.Duration
	SweepAfter     time.Duration // abandoned slots older than this are removed by the worker
	CatalogFile    string        // optional override of the bundled catalog
}

// CheckoutConfig holds order placement settings
type CheckoutConfig struct {
	SimulatedDelay time.Duration
	NotifyOrders   bool
	SMTPAddr       string
	SMTPFrom       string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxConnections     int32
	MinConnections     int32
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	EnableQueryLogging bool
	RunMigrations      bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

// AsynqConfig holds Asynq configuration
type AsynqConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	Concurrency     int
	Queues          map[string]int // queue name -> priority
	StrictPriority  bool
	RetryMax        int
	ShutdownTimeout time.Duration
	CleanupSchedule string // cron spec for the slot sweep
	MetricsAddr     string // worker /metrics listener; empty disables it
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string // For MinIO in development
	UsePathStyle    bool   // For MinIO compatibility
}

// SecretsConfig selects where credentials are read from
type SecretsConfig struct {
	Provider   string // env, aws
	SecretName string
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimitRequests int
	RateLimitDuration time.Duration
	AllowedOrigins    []string
	SecureHeaders     bool
	SecureCookies     bool
	RequestIDHeader   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string `required:"true"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	GracefulTimeout time.Duration
	EnableMetrics   bool
}

// Load loads configuration from environment variables
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	// Initialize viper
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetTypeByDefaultValue(true)

	setDefaults()

	cfg := &Config{
		App: AppConfig{
			Name:        viper.GetString("app.name"),
			Environment: env,
			Version:     getEnv("APP_VERSION", "dev"),
			LogLevel:    viper.GetString("log.level"),
			LogFormat:   viper.GetString("log.format"),
			Debug:       getBoolEnv("APP_DEBUG", env == "development"),
		},
		Cart: CartConfig{
			Backend:        strings.ToLower(getEnv("CART_BACKEND", BackendMemory)),
			FileDir:        getEnv("CART_FILE_DIR", "data/carts"),
			SlotTTL:        getDurationEnv("CART_SLOT_TTL", 30*24*time.Hour),
			WriteTimeout:   getDurationEnv("CART_WRITE_TIMEOUT", 3*time.Second),
			DefaultSession: getEnv("CART_DEFAULT_SESSION", ""),
			SessionCookie:  getEnv("CART_SESSION_COOKIE", "storefront_session"),
			SessionMaxAge:  getDurationEnv("CART_SESSION_MAX_AGE", 30*24*time.Hour),
			IdleEviction:   getDurationEnv("CART_IDLE_EVICTION", 30*time.Minute),
			SweepAfter:     getDurationEnv("CART_SWEEP_AFTER", 30*24*time.Hour),
			CatalogFile:    getEnv("CATALOG_FILE", ""),
		},
		Checkout: CheckoutConfig{
			SimulatedDelay: getDurationEnv("CHECKOUT_SIMULATED_DELAY", 2*time.Second),
			NotifyOrders:   getBoolEnv("CHECKOUT_NOTIFY_ORDERS", false),
			SMTPAddr:       getEnv("SMTP_ADDR", ""),
			SMTPFrom:       getEnv("SMTP_FROM", "orders@storefront.local"),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", "storefront"),
			Password:           getEnv("DB_PASSWORD", "storefront_dev"),
			Name:               getEnv("DB_NAME", "storefront"),
			SSLMode:            getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:     int32(getIntEnv("DB_MAX_CONNECTIONS", 10)),
			MinConnections:     int32(getIntEnv("DB_MIN_CONNECTIONS", 2)),
			MaxConnLifetime:    getDurationEnv("DB_CONNECTION_LIFETIME", time.Hour),
			MaxConnIdleTime:    getDurationEnv("DB_IDLE_TIME", 30*time.Minute),
			HealthCheckPeriod:  getDurationEnv("DB_HEALTH_CHECK_PERIOD", time.Minute),
			ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
			EnableQueryLogging: getBoolEnv("DB_QUERY_LOGGING", false),
			RunMigrations:      getBoolEnv("DB_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			MaxRetries:   getIntEnv("REDIS_MAX_RETRIES", 3),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
		},
		Asynq: AsynqConfig{
			RedisAddr:       fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379")),
			RedisPassword:   getEnv("REDIS_PASSWORD", ""),
			RedisDB:         getIntEnv("ASYNQ_REDIS_DB", 1),
			Concurrency:     getIntEnv("ASYNQ_CONCURRENCY", 5),
			Queues:          parseQueues(getEnv("ASYNQ_QUEUES", "critical:6,default:3,low:1")),
			StrictPriority:  getBoolEnv("ASYNQ_STRICT_PRIORITY", false),
			RetryMax:        getIntEnv("ASYNQ_RETRY_MAX", 3),
			ShutdownTimeout: getDurationEnv("ASYNQ_SHUTDOWN_TIMEOUT", 30*time.Second),
			CleanupSchedule: getEnv("ASYNQ_CLEANUP_SCHEDULE", "@every 1h"),
			MetricsAddr:     getEnv("WORKER_METRICS_ADDR", ""),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "storefront-carts"),
			S3Prefix:        getEnv("AWS_S3_PREFIX", "carts/"),
			S3Endpoint:      getEnv("AWS_S3_ENDPOINT", ""),
			UsePathStyle:    getBoolEnv("AWS_S3_PATH_STYLE", env == "development"),
		},
		Secrets: SecretsConfig{
			Provider:   strings.ToLower(getEnv("SECRETS_PROVIDER", "env")),
			SecretName: getEnv("SECRETS_NAME", ""),
		},
		Security: SecurityConfig{
			RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 100),
			RateLimitDuration: getDurationEnv("RATE_LIMIT_DURATION", time.Minute),
			AllowedOrigins:    getSliceEnv("ALLOWED_ORIGINS", []string{"*"}),
			SecureHeaders:     getBoolEnv("SECURE_HEADERS", env == "production"),
			SecureCookies:     getBoolEnv("SECURE_COOKIES", env == "production"),
			RequestIDHeader:   getEnv("REQUEST_ID_HEADER", "X-Request-ID"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:  getIntEnv("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
			GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
			EnableMetrics:   getBoolEnv("ENABLE_METRICS", true),
		},
	}

	if cfg.Secrets.Provider == "aws" {
		sm, err := NewAWSSecretsManager(context.Background(), cfg.AWS.Region, cfg.Secrets.SecretName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create secrets manager: %w", err)
		}
		if err := ApplySecrets(context.Background(), cfg, sm); err != nil {
			return nil, fmt.Errorf("failed to apply secrets: %w", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validators := []Validator{&BasicValidator{}, &BackendValidator{}}
	if c.IsProduction() {
		validators = append(validators, &ProductionValidator{})
	}

	for _, v := range validators {
		if err := v.Validate(c); err != nil {
			return err
		}
	}
	return nil
}

// GetDatabaseURL returns the formatted database connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns host:port for the redis client
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddress returns the formatted server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// Helper functions

func setDefaults() {
	viper.SetDefault("app.name", "storefront-api")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func parseQueues(queuesStr string) map[string]int {
	queues := make(map[string]int)
	pairs := strings.Split(queuesStr, ",")
	for _, pair := range pairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			name := strings.TrimSpace(parts[0])
			priority, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err == nil {
				queues[name] = priority
			}
		}
	}
	if len(queues) == 0 {
		queues["default"] = 1
	}
	return queues
}
