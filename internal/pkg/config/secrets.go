// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Secret keys understood by ApplySecrets
const (
	SecretDatabasePassword   = "DB_PASSWORD"
	SecretRedisPassword      = "REDIS_PASSWORD"
	SecretAWSAccessKeyID     = "AWS_ACCESS_KEY_ID"
	SecretAWSSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	SecretSMTPAddr           = "SMTP_ADDR"
)

// SecretsManager resolves credential values by key
type SecretsManager interface {
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
}

// secretsAPI is the part of the Secrets Manager client we call
type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManager reads a JSON object of key/value pairs from one secret
type AWSSecretsManager struct {
	client     secretsAPI
	secretName string
	cache      map[string]string
	cacheMu    sync.RWMutex
	lastFetch  time.Time
	ttl        time.Duration
	logger     *slog.Logger
}

// NewAWSSecretsManager creates a new AWS Secrets Manager client
func NewAWSSecretsManager(ctx context.Context, region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newAWSSecretsManager(secretsmanager.NewFromConfig(cfg), secretName, logger), nil
}

func newAWSSecretsManager(client secretsAPI, secretName string, logger *slog.Logger) *AWSSecretsManager {
	return &AWSSecretsManager{
		client:     client,
		secretName: secretName,
		cache:      make(map[string]string),
		ttl:        5 * time.Minute,
		logger:     logger.With(slog.String("component", "secrets")),
	}
}

// GetSecrets retrieves multiple secrets. Keys missing from the secret are
// left out of the result.
func (sm *AWSSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	// Check cache first
	sm.cacheMu.RLock()
	if time.Since(sm.lastFetch) < sm.ttl && len(sm.cache) > 0 {
		cached := make(map[string]string)
		for _, key := range keys {
			if val, ok := sm.cache[key]; ok {
				cached[key] = val
			}
		}
		sm.cacheMu.RUnlock()

		if len(cached) == len(keys) {
			sm.logger.Debug("returning cached secrets")
			return cached, nil
		}
	} else {
		sm.cacheMu.RUnlock()
	}

	sm.logger.Info("fetching secrets from AWS Secrets Manager",
		slog.String("secret_name", sm.secretName))

	result, err := sm.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret value: %w", err)
	}
	if result.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", sm.secretName)
	}

	var secretData map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &secretData); err != nil {
		return nil, fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	sm.cacheMu.Lock()
	sm.cache = secretData
	sm.lastFetch = time.Now()
	sm.cacheMu.Unlock()

	filtered := make(map[string]string)
	for _, key := range keys {
		if val, ok := secretData[key]; ok {
			filtered[key] = val
		} else {
			sm.logger.Warn("secret key not found in AWS Secrets Manager",
				slog.String("key", key))
		}
	}

	return filtered, nil
}

// EnvSecretsManager implements secrets management using environment variables
type EnvSecretsManager struct{}

// NewEnvSecretsManager creates a new environment-based secrets manager
func NewEnvSecretsManager() *EnvSecretsManager {
	return &EnvSecretsManager{}
}

// GetSecrets retrieves multiple secrets from environment variables
func (em *EnvSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	secrets := make(map[string]string)
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			secrets[key] = val
		}
	}
	return secrets, nil
}

// ApplySecrets overwrites credential fields with values from sm
func ApplySecrets(ctx context.Context, cfg *Config, sm SecretsManager) error {
	secrets, err := sm.GetSecrets(ctx, []string{
		SecretDatabasePassword,
		SecretRedisPassword,
		SecretAWSAccessKeyID,
		SecretAWSSecretAccessKey,
		SecretSMTPAddr,
	})
	if err != nil {
		return err
	}

	set := func(dst *string, key string) {
		if v, ok := secrets[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&cfg.Database.Password, SecretDatabasePassword)
	set(&cfg.Redis.Password, SecretRedisPassword)
	set(&cfg.Asynq.RedisPassword, SecretRedisPassword)
	set(&cfg.AWS.AccessKeyID, SecretAWSAccessKeyID)
	set(&cfg.AWS.SecretAccessKey, SecretAWSSecretAccessKey)
	set(&cfg.Checkout.SMTPAddr, SecretSMTPAddr)

	return nil
}
