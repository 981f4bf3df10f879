// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/storefront-be/internal/adapters/db"
	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/services"
	"github.com/ammerola/storefront-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container with migrations applied
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_storefront",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_storefront",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		UseEmbedded: true,
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates an in-process Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Cart: config.CartConfig{
			Backend:       config.BackendMemory,
			WriteTimeout:  time.Second,
			SessionCookie: "storefront_session",
			SessionMaxAge: time.Hour,
			IdleEviction:  time.Minute,
			SweepAfter:    24 * time.Hour,
		},
		Checkout: config.CheckoutConfig{
			SimulatedDelay: 0,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			PoolSize: 10,
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 1000,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			RequestIDHeader:   "X-Request-ID",
		},
		Server: config.ServerConfig{
			Host:          "localhost",
			Port:          "8080",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  15 * time.Second,
			EnableMetrics: true,
		},
	}
}

// CreateTestProduct creates a catalog product
func CreateTestProduct(overrides ...func(*domain.Product)) *domain.Product {
	product := &domain.Product{
		ID:          "1",
		Name:        "Classic Cotton Tee",
		Description: "Soft everyday crew neck",
		Brand:       "Northwind",
		Category:    "tops",
		Price:       decimal.RequireFromString("24.99"),
		Images:      []string{"/images/tee-1.jpg"},
		Sizes:       []string{"S", "M", "L"},
		Colors:      []string{"White", "Black"},
		Tags:        []string{"cotton", "basics"},
		Rating:      4.5,
		InStock:     true,
		CreatedAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, override := range overrides {
		override(product)
	}

	return product
}

// CreateTestSnapshot builds a cart product snapshot with the given id and price
func CreateTestSnapshot(id string, price string) domain.ProductSnapshot {
	return domain.ProductSnapshot{
		ProductID: domain.ID(id),
		Name:      "Product " + id,
		UnitPrice: decimal.RequireFromString(price),
		ImageRef:  "/images/" + id + ".jpg",
	}
}

// CreateCheckoutRequest returns a checkout form that passes validation
func CreateCheckoutRequest(overrides ...func(*services.CheckoutRequest)) services.CheckoutRequest {
	req := services.CheckoutRequest{
		Shipping: domain.ShippingDetails{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Address:   "12 Analytical Row",
			City:      "London",
			ZipCode:   "N1 9GU",
			Country:   "GB",
		},
		Payment: domain.PaymentDetails{
			CardNumber: "4242 4242 4242 4242",
			ExpiryDate: "12/29",
			CVV:        "123",
			NameOnCard: "Ada Lovelace",
		},
		ShippingMethod: domain.ShippingStandard,
	}

	for _, override := range overrides {
		override(&req)
	}

	return req
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateCartSlots empties the cart slot table
func TruncateCartSlots(t *testing.T, database *db.Database) {
	t.Helper()

	_, err := database.Pool().Exec(context.Background(), "TRUNCATE TABLE cart_slots")
	require.NoError(t, err, "Failed to truncate cart_slots")
}
