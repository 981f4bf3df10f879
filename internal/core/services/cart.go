// internal/core/services/cart.go
package services

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
)

const (
	OpAdd         = "add"
	OpRemove      = "remove"
	OpSetQuantity = "set_quantity"
	OpClear       = "clear"
	OpResync      = "resync"

	opLoad = "load"
	opSave = "save"

	defaultWriteTimeout = 3 * time.Second
)

// CartRecorder receives cart activity for metrics
type CartRecorder interface {
	CartMutation(op string)
	SlotError(op string)
	ActiveCarts(n int)
}

type nopRecorder struct{}

func (nopRecorder) CartMutation(string) {}
func (nopRecorder) SlotError(string)    {}
func (nopRecorder) ActiveCarts(int)     {}

// CartOption configures a CartStore
type CartOption func(*CartStore)

// WithIDGenerator replaces the UUID line id generator
func WithIDGenerator(fn func() domain.ID) CartOption {
	return func(s *CartStore) {
		s.newID = fn
	}
}

// WithRecorder reports mutations and slot failures to r
func WithRecorder(r CartRecorder) CartOption {
	return func(s *CartStore) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithWriteTimeout bounds each slot write
func WithWriteTimeout(d time.Duration) CartOption {
	return func(s *CartStore) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// CartStore is the single source of truth for one shopper's cart. Every
// mutation updates memory, writes the whole line collection to the slot, and
// then notifies subscribers. Slot failures are logged and never surfaced.
type CartStore struct {
	key          string
	slot         ports.SlotStore
	logger       *slog.Logger
	recorder     CartRecorder
	newID        func() domain.ID
	writeTimeout time.Duration

	mu      sync.RWMutex
	items   []domain.LineItem
	version uint64

	// writes and notifications can be reordered between goroutines once mu
	// is released; both only ever move forward in version
	writeMu  sync.Mutex
	written  uint64
	notifyMu sync.Mutex
	notified uint64

	subMu   sync.Mutex
	subs    map[uint64]func(domain.CartSnapshot)
	nextSub uint64
}

// Statically assert that *CartStore implements the Cart interface.
var _ ports.Cart = (*CartStore)(nil)

// NewCartStore rehydrates a cart from the slot under key. An absent,
// unreadable or malformed slot yields an empty cart.
func NewCartStore(ctx context.Context, key string, slot ports.SlotStore, logger *slog.Logger, opts ...CartOption) *CartStore {
	s := &CartStore{
		key:          key,
		slot:         slot,
		logger:       logger.With(slog.String("component", "cart_store"), slog.String("slot_key", key)),
		recorder:     nopRecorder{},
		newID:        func() domain.ID { return domain.ID(uuid.NewString()) },
		writeTimeout: defaultWriteTimeout,
		subs:         make(map[uint64]func(domain.CartSnapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.items = s.load(ctx)
	return s
}

func (s *CartStore) load(ctx context.Context) []domain.LineItem {
	data, err := s.slot.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, domain.ErrSlotNotFound) {
			s.logger.DebugContext(ctx, "no stored cart, starting empty")
			return nil
		}
		s.recorder.SlotError(opLoad)
		s.logger.WarnContext(ctx, "failed to read cart slot, starting empty", "err", err)
		return nil
	}

	items, err := domain.DecodeLineItems(data)
	if err != nil {
		s.recorder.SlotError(opLoad)
		s.logger.WarnContext(ctx, "discarding malformed cart snapshot", "err", err)
		return nil
	}

	s.logger.DebugContext(ctx, "cart rehydrated", slog.Int("lines", len(items)))
	return items
}

// Key returns the slot key this store persists to
func (s *CartStore) Key() string {
	return s.key
}

// Add puts quantity units of a product variant into the cart. A line with
// the same product, size and color absorbs the quantity; otherwise a new line
// is appended. Quantities below one are treated as one, and a line never
// holds more than domain.MaxLineQuantity units.
func (s *CartStore) Add(ctx context.Context, product domain.ProductSnapshot, quantity int, size, color string) domain.LineItem {
	quantity = domain.ClampQuantity(quantity)

	var line domain.LineItem
	s.mutate(ctx, OpAdd, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		var next []domain.LineItem
		next, line = addLine(items, product, quantity, size, color, s.newID)
		return next, true
	})
	return line
}

// Remove deletes a line. Unknown ids are ignored.
func (s *CartStore) Remove(ctx context.Context, lineID domain.ID) {
	s.mutate(ctx, OpRemove, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		return removeLine(items, lineID)
	})
}

// SetQuantity replaces a line's quantity; zero or less removes the line and
// anything above domain.MaxLineQuantity is capped. Unknown ids are ignored.
func (s *CartStore) SetQuantity(ctx context.Context, lineID domain.ID, quantity int) {
	s.mutate(ctx, OpSetQuantity, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		return setLineQuantity(items, lineID, quantity)
	})
}

// Clear empties the cart
func (s *CartStore) Clear(ctx context.Context) {
	s.mutate(ctx, OpClear, func([]domain.LineItem) ([]domain.LineItem, bool) {
		return nil, true
	})
}

// Resync replaces the in-memory cart with whatever the slot currently holds.
// Used when another writer may have touched the slot. A read failure keeps
// the current state.
func (s *CartStore) Resync(ctx context.Context) {
	data, err := s.slot.Load(ctx, s.key)
	var stored []domain.LineItem
	switch {
	case errors.Is(err, domain.ErrSlotNotFound):
	case err != nil:
		s.recorder.SlotError(opLoad)
		s.logger.WarnContext(ctx, "resync read failed, keeping current cart", "err", err)
		return
	default:
		if stored, err = domain.DecodeLineItems(data); err != nil {
			s.recorder.SlotError(opLoad)
			s.logger.WarnContext(ctx, "resync found malformed snapshot, clearing", "err", err)
			stored = nil
		}
	}

	s.mu.Lock()
	if sameLines(s.items, stored) {
		s.mu.Unlock()
		return
	}
	s.items = stored
	s.version++
	snap := domain.CartSnapshot{Version: s.version, Items: stored}
	s.mu.Unlock()

	// the slot already holds this state
	s.writeMu.Lock()
	if snap.Version > s.written {
		s.written = snap.Version
	}
	s.writeMu.Unlock()

	s.recorder.CartMutation(OpResync)
	s.notify(snap)
}

func (s *CartStore) mutate(ctx context.Context, op string, fn func([]domain.LineItem) ([]domain.LineItem, bool)) {
	s.mu.Lock()
	next, changed := fn(s.items)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.items = next
	s.version++
	snap := domain.CartSnapshot{Version: s.version, Items: next}
	s.mu.Unlock()

	s.recorder.CartMutation(op)
	s.persist(ctx, op)
	s.notify(snap)
}

// persist writes the store's current state, not the caller's snapshot, so a
// writer that lost the race to a failed newer save retries the newest state
// instead of storing an older one.
func (s *CartStore) persist(ctx context.Context, op string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	snap := domain.CartSnapshot{Version: s.version, Items: s.items}
	s.mu.RUnlock()

	if snap.Version <= s.written {
		return
	}

	data, err := domain.EncodeLineItems(snap.Items)
	if err != nil {
		s.recorder.SlotError(opSave)
		s.logger.ErrorContext(ctx, "failed to encode cart", slog.String("op", op), "err", err)
		return
	}

	// a cancelled request must not leave the slot behind memory
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	if err := s.slot.Save(writeCtx, s.key, data); err != nil {
		s.recorder.SlotError(opSave)
		s.logger.WarnContext(ctx, "failed to persist cart",
			slog.String("op", op),
			slog.Uint64("version", snap.Version),
			"err", err)
		return
	}
	s.written = snap.Version
}

func (s *CartStore) notify(snap domain.CartSnapshot) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	if snap.Version <= s.notified {
		return
	}
	s.notified = snap.Version

	s.subMu.Lock()
	listeners := make([]func(domain.CartSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(domain.CartSnapshot{Version: snap.Version, Items: slices.Clone(snap.Items)})
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// Listeners run synchronously on the mutating goroutine.
func (s *CartStore) Subscribe(fn func(domain.CartSnapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Subscribers returns the number of attached listeners
func (s *CartStore) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

// Items returns a copy of the lines in insertion order
func (s *CartStore) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Subtotal is recomputed from the lines on every call
func (s *CartStore) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Subtotal(s.items)
}

// ItemCount is recomputed from the lines on every call
func (s *CartStore) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ItemCount(s.items)
}

// Snapshot returns the current lines together with the state version
func (s *CartStore) Snapshot() domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CartSnapshot{Version: s.version, Items: slices.Clone(s.items)}
}
