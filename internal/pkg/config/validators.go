// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ErrMissingRequiredConfig is returned when a required setting is empty
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Validator checks one aspect of a loaded configuration
type Validator interface {
	Validate(cfg *Config) error
}

// BasicValidator performs basic configuration validation
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	// Validate required fields using reflection
	if err := validateRequiredFields(cfg); err != nil {
		return err
	}

	if cfg.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("rate_limit_requests must be positive")
	}
	if cfg.Cart.WriteTimeout <= 0 {
		return fmt.Errorf("cart write timeout must be positive")
	}
	if cfg.Checkout.SimulatedDelay < 0 {
		return fmt.Errorf("checkout simulated delay cannot be negative")
	}

	return nil
}

// BackendValidator checks the settings the selected slot backend depends on
type BackendValidator struct{}

// Validate performs backend validation
func (v *BackendValidator) Validate(cfg *Config) error {
	switch cfg.Cart.Backend {
	case BackendMemory:
	case BackendFile:
		if cfg.Cart.FileDir == "" {
			return fmt.Errorf("%w: cart file dir", ErrMissingRequiredConfig)
		}
	case BackendRedis:
		if cfg.Redis.Host == "" {
			return fmt.Errorf("%w: redis host", ErrMissingRequiredConfig)
		}
		if cfg.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis pool_size must be positive")
		}
		if cfg.Cart.SlotTTL < 0 {
			return fmt.Errorf("cart slot ttl cannot be negative")
		}
	case BackendPostgres:
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return fmt.Errorf("%w: database host and name", ErrMissingRequiredConfig)
		}
		if cfg.Database.MaxConnections < cfg.Database.MinConnections {
			return fmt.Errorf("database max_connections must be >= min_connections")
		}
	case BackendS3:
		if cfg.AWS.S3Bucket == "" {
			return fmt.Errorf("%w: s3 bucket", ErrMissingRequiredConfig)
		}
	default:
		return fmt.Errorf("unknown cart backend %q", cfg.Cart.Backend)
	}

	if cfg.Secrets.Provider == "aws" && cfg.Secrets.SecretName == "" {
		return fmt.Errorf("%w: secrets name", ErrMissingRequiredConfig)
	}

	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	// Check for placeholder values
	if strings.Contains(cfg.Database.Password, "MISSING_") {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}

	if cfg.Cart.Backend == BackendMemory {
		return fmt.Errorf("memory cart backend cannot be used in production")
	}

	if cfg.Cart.Backend == BackendPostgres && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}

	if !cfg.Security.SecureHeaders {
		return fmt.Errorf("secure headers must be enabled in production")
	}

	if !cfg.Security.SecureCookies {
		return fmt.Errorf("secure cookies must be enabled in production")
	}

	if len(cfg.Security.AllowedOrigins) == 0 || slices.Contains(cfg.Security.AllowedOrigins, "*") {
		return fmt.Errorf("explicit allowed origins must be configured in production")
	}

	return nil
}

// validateRequiredFields uses reflection to check required struct tags
func validateRequiredFields(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	return validateStruct(v, "")
}

func validateStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		fieldName := fieldType.Name

		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if required := fieldType.Tag.Get("required"); required == "true" {
			if isZeroValue(field) {
				return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, fieldName)
			}
		}

		if field.Kind() == reflect.Struct {
			if err := validateStruct(field, fieldName); err != nil {
				return err
			}
		}
	}

	return nil
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == "" || strings.HasPrefix(v.String(), "MISSING_")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
