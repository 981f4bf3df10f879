// internal/adapters/redis_adapter/slot.go
package redis_a

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
)

// KeyPrefix namespaces cart slots inside a shared Redis database
const KeyPrefix = "storefront"

// SlotStore keeps cart slots as plain Redis strings. Every save refreshes
// the key's TTL, so abandoned carts expire on their own.
type SlotStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// Statically assert that *SlotStore implements the SlotStore interface.
var _ ports.SlotStore = (*SlotStore)(nil)

// NewSlotStore creates a Redis-backed slot store. A ttl of zero keeps slots forever.
func NewSlotStore(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *SlotStore {
	return &SlotStore{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("repository", "redis_slot")),
	}
}

// Load returns the stored bytes or domain.ErrSlotNotFound
func (s *SlotStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, BuildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.logger.DebugContext(ctx, "slot miss", slog.String("key", key))
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	return data, nil
}

// Save overwrites the slot and resets its expiry
func (s *SlotStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, BuildKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}

	s.logger.DebugContext(ctx, "slot saved",
		slog.String("key", key),
		slog.Int("bytes", len(data)),
		slog.Duration("ttl", s.ttl))
	return nil
}

// Delete removes the slot. Missing keys are not an error.
func (s *SlotStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, BuildKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

// TTL reports the remaining lifetime of a slot
func (s *SlotStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, BuildKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl error: %w", err)
	}
	return ttl, nil
}

// Ping checks if Redis is accessible
func (s *SlotStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.logger.ErrorContext(ctx, "redis ping failed", "err", err)
		return fmt.Errorf("redis ping error: %w", err)
	}
	return nil
}

// BuildKey maps a slot key to its Redis key
func BuildKey(parts ...string) string {
	key := KeyPrefix
	for _, part := range parts {
		key += ":" + part
	}
	return key
}
