// internal/core/ports/slot.go
package ports

import (
	"context"
	"time"
)

// SlotStore is the durable key-value slot a cart snapshot is written to.
// Load returns domain.ErrSlotNotFound when nothing has been saved under key.
type SlotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// SlotSweeper is implemented by slot stores that can drop slots nobody has
// written to for a while. Backends with native expiry do not need it.
type SlotSweeper interface {
	Sweep(ctx context.Context, olderThan time.Duration) (int, error)
}
