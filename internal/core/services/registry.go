// internal/core/services/registry.go
package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ammerola/storefront-be/internal/core/ports"
)

// DefaultSlotKey is the slot name used by the default session
const DefaultSlotKey = "cart"

// CartRegistry owns one CartStore per shopper session. Stores are built on
// first use and rehydrated from their slot.
type CartRegistry struct {
	slot           ports.SlotStore
	logger         *slog.Logger
	recorder       CartRecorder
	opts           []CartOption
	defaultSession string

	mu       sync.Mutex
	carts    map[string]*CartStore
	lastUsed map[string]time.Time
	now      func() time.Time
}

// Statically assert that *CartRegistry implements the CartProvider interface.
var _ ports.CartProvider = (*CartRegistry)(nil)

// NewCartRegistry creates a registry. Sessions equal to defaultSession (or
// empty) share the plain "cart" slot.
func NewCartRegistry(slot ports.SlotStore, defaultSession string, recorder CartRecorder, logger *slog.Logger, opts ...CartOption) *CartRegistry {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &CartRegistry{
		slot:           slot,
		logger:         logger.With(slog.String("service", "cart_registry")),
		recorder:       recorder,
		opts:           append([]CartOption{WithRecorder(recorder)}, opts...),
		defaultSession: defaultSession,
		carts:          make(map[string]*CartStore),
		lastUsed:       make(map[string]time.Time),
		now:            time.Now,
	}
}

// SlotKey maps a session id to its slot key
func (r *CartRegistry) SlotKey(session string) string {
	if session == "" || session == r.defaultSession {
		return DefaultSlotKey
	}
	return DefaultSlotKey + ":" + session
}

// Cart returns the session's cart as the port type
func (r *CartRegistry) Cart(ctx context.Context, session string) ports.Cart {
	return r.Store(ctx, session)
}

// Store returns the session's CartStore, rehydrating it on first use
func (r *CartRegistry) Store(ctx context.Context, session string) *CartStore {
	key := r.SlotKey(session)

	r.mu.Lock()
	if store, ok := r.carts[key]; ok {
		r.lastUsed[key] = r.now()
		r.mu.Unlock()
		return store
	}
	r.mu.Unlock()

	// the slot read happens outside the lock so one slow backend call does
	// not stall every other session
	built := NewCartStore(ctx, key, r.slot, r.logger, r.opts...)

	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.carts[key]; ok {
		r.lastUsed[key] = r.now()
		return store
	}
	r.carts[key] = built
	r.lastUsed[key] = r.now()
	r.recorder.ActiveCarts(len(r.carts))

	return built
}

// Evict drops a session's store from memory. The slot is left alone, so the
// next request rehydrates it.
func (r *CartRegistry) Evict(session string) {
	key := r.SlotKey(session)

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, key)
	delete(r.lastUsed, key)
	r.recorder.ActiveCarts(len(r.carts))
}

// EvictIdle drops stores untouched for longer than idle. Stores with live
// subscribers are kept.
func (r *CartRegistry) EvictIdle(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, store := range r.carts {
		if r.lastUsed[key].After(cutoff) || store.Subscribers() > 0 {
			continue
		}
		delete(r.carts, key)
		delete(r.lastUsed, key)
		evicted++
	}

	if evicted > 0 {
		r.recorder.ActiveCarts(len(r.carts))
		r.logger.Debug("evicted idle carts",
			slog.Int("evicted", evicted),
			slog.Int("remaining", len(r.carts)))
	}
	return evicted
}

// Len returns the number of carts held in memory
func (r *CartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
