// internal/adapters/memory/slot.go
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
)

// SlotStore keeps slots in process memory. Used in development and tests.
type SlotStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

var _ ports.SlotStore = (*SlotStore)(nil)

// NewSlotStore creates an empty in-memory slot store
func NewSlotStore() *SlotStore {
	return &SlotStore{slots: make(map[string][]byte)}
}

// Load returns a copy of the stored bytes
func (s *SlotStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[key]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	return slices.Clone(data), nil
}

// Save replaces the slot contents
func (s *SlotStore) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = slices.Clone(data)
	return nil
}

// Delete removes a slot. Missing keys are not an error.
func (s *SlotStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, key)
	return nil
}

// Ping always succeeds
func (s *SlotStore) Ping(ctx context.Context) error {
	return nil
}

// Keys lists the stored slot keys
func (s *SlotStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.slots))
	for k := range s.slots {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
