// internal/handlers/events.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
	"github.com/ammerola/storefront-be/internal/handlers/middleware"
)

const defaultHeartbeat = 15 * time.Second

// EventsHandler streams cart snapshots as Server-Sent Events
type EventsHandler struct {
	carts     ports.CartProvider
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewEventsHandler creates a new events handler. heartbeat <= 0 uses 15s.
func NewEventsHandler(carts ports.CartProvider, heartbeat time.Duration, logger *slog.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &EventsHandler{
		carts:     carts,
		heartbeat: heartbeat,
		logger:    logger.With(slog.String("handler", "events")),
	}
}

// latest holds at most one pending snapshot. Listeners run on the mutating
// goroutine, so offer never blocks; a slow reader only sees the newest state.
type latest struct {
	mu    sync.Mutex
	snap  domain.CartSnapshot
	ready chan struct{}
}

func newLatest() *latest {
	return &latest{ready: make(chan struct{}, 1)}
}

func (l *latest) offer(snap domain.CartSnapshot) {
	l.mu.Lock()
	if snap.Version >= l.snap.Version {
		l.snap = snap
	}
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
}

func (l *latest) take() domain.CartSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Stream handles GET /api/v1/cart/events. The current cart is sent first,
// then one "cart" event per change until the client goes away.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, h.logger, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	// streams outlive the server's write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.DebugContext(ctx, "could not lift write deadline, stream may be cut by the server write timeout",
			"err", err)
	}

	cart := h.carts.Cart(ctx, middleware.SessionFromContext(ctx))

	pending := newLatest()
	unsubscribe := cart.Subscribe(pending.offer)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sent := uint64(0)
	send := func(snap domain.CartSnapshot) error {
		if sent > 0 && snap.Version <= sent {
			return nil
		}
		data, err := json.Marshal(NewCartView(snap, domain.ShippingStandard))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: cart\ndata: %s\n\n", snap.Version, data); err != nil {
			return err
		}
		flusher.Flush()
		sent = snap.Version
		return nil
	}

	if err := send(cart.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.DebugContext(ctx, "event stream closed")
			return
		case <-pending.ready:
			if err := send(pending.take()); err != nil {
				h.logger.DebugContext(ctx, "event stream write failed", "err", err)
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
