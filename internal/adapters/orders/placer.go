// internal/adapters/orders/placer.go
package orders

import (
	"context"
	"log/slog"
	"time"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
	"github.com/ammerola/storefront-be/internal/workers"
)

// SimulatedPlacer stands in for a payment backend: it waits, then confirms
// every order under its own id.
type SimulatedPlacer struct {
	delay  time.Duration
	logger *slog.Logger
}

var _ ports.OrderPlacer = (*SimulatedPlacer)(nil)

// NewSimulatedPlacer creates a placer that takes delay to confirm
func NewSimulatedPlacer(delay time.Duration, logger *slog.Logger) *SimulatedPlacer {
	return &SimulatedPlacer{
		delay:  delay,
		logger: logger.With(slog.String("component", "simulated_placer")),
	}
}

// Place returns order.ID once the delay passes, or ctx.Err() if cancelled first
func (p *SimulatedPlacer) Place(ctx context.Context, order *domain.Order) (string, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	p.logger.InfoContext(ctx, "order confirmed",
		slog.String("order_id", order.ID),
		slog.Int("items", order.Summary.ItemCount),
		slog.String("total", order.Summary.Total.StringFixed(2)))
	return order.ID, nil
}

// NotifyingPlacer publishes a confirmation task after the wrapped placer
// succeeds. Publishing problems are logged; the order stands.
type NotifyingPlacer struct {
	next   ports.OrderPlacer
	queue  ports.TaskEnqueuer
	logger *slog.Logger
}

var _ ports.OrderPlacer = (*NotifyingPlacer)(nil)

// NewNotifyingPlacer wraps next
func NewNotifyingPlacer(next ports.OrderPlacer, queue ports.TaskEnqueuer, logger *slog.Logger) *NotifyingPlacer {
	return &NotifyingPlacer{
		next:   next,
		queue:  queue,
		logger: logger.With(slog.String("component", "notifying_placer")),
	}
}

func (p *NotifyingPlacer) Place(ctx context.Context, order *domain.Order) (string, error) {
	id, err := p.next.Place(ctx, order)
	if err != nil {
		return "", err
	}

	confirmed := *order
	if id != "" {
		confirmed.ID = id
	}

	task, err := workers.NewOrderConfirmationTask(&confirmed)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build confirmation task",
			slog.String("order_id", confirmed.ID),
			"err", err)
		return id, nil
	}

	info, err := p.queue.EnqueueContext(ctx, task)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to enqueue order confirmation",
			slog.String("order_id", confirmed.ID),
			"err", err)
		return id, nil
	}

	p.logger.InfoContext(ctx, "order confirmation queued",
		slog.String("order_id", confirmed.ID),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))
	return id, nil
}
