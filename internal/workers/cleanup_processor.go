// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-be/internal/core/ports"
)

// CleanupProcessor removes cart slots nobody has touched in a while
type CleanupProcessor struct {
	sweeper   ports.SlotSweeper
	olderThan time.Duration
	logger    *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor. sweeper may be nil when
// the configured backend expires slots on its own.
func NewCleanupProcessor(sweeper ports.SlotSweeper, olderThan time.Duration, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		sweeper:   sweeper,
		olderThan: olderThan,
		logger:    logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupCartSlots handles TypeCleanupCartSlots
func (p *CleanupProcessor) CleanupCartSlots(ctx context.Context, t *asynq.Task) error {
	if p.sweeper == nil {
		p.logger.DebugContext(ctx, "slot backend expires on its own, nothing to sweep")
		return nil
	}

	olderThan := p.olderThan
	if len(t.Payload()) > 0 {
		var payload CleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
		if payload.OlderThan > 0 {
			olderThan = payload.OlderThan
		}
	}
	if olderThan <= 0 {
		return fmt.Errorf("cleanup age must be positive, got %s: %w", olderThan, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "cleaning up abandoned carts",
		slog.Duration("older_than", olderThan))

	removed, err := p.sweeper.Sweep(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("failed to sweep cart slots: %w", err)
	}

	p.logger.InfoContext(ctx, "abandoned carts cleaned up",
		slog.Int("slots_deleted", removed))
	return nil
}
