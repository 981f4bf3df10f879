// internal/adapters/db/slot.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
)

const slotTable = "cart_slots"

// SlotRepository stores cart slots as JSONB rows keyed by slot name
type SlotRepository struct {
	db     *sql.DB
	psql   squirrel.StatementBuilderType
	logger *slog.Logger
	now    func() time.Time
}

var (
	_ ports.SlotStore   = (*SlotRepository)(nil)
	_ ports.SlotSweeper = (*SlotRepository)(nil)
)

// NewSlotRepository creates a new slot repository
func NewSlotRepository(db *sql.DB, logger *slog.Logger) *SlotRepository {
	return &SlotRepository{
		db:     db,
		psql:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger.With(slog.String("repository", "cart_slots")),
		now:    time.Now,
	}
}

// Load fetches a slot payload
func (r *SlotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query, args, err := r.psql.
		Select("payload").
		From(slotTable).
		Where(squirrel.Eq{"slot_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var payload []byte
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to load slot %s: %w", key, err)
	}
	return payload, nil
}

// Save upserts a slot payload and stamps updated_at
func (r *SlotRepository) Save(ctx context.Context, key string, data []byte) error {
	query, args, err := r.psql.
		Insert(slotTable).
		Columns("slot_key", "payload", "updated_at").
		Values(key, string(data), r.now().UTC()).
		Suffix("ON CONFLICT (slot_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", key, err)
	}

	r.logger.DebugContext(ctx, "slot saved",
		slog.String("key", key),
		slog.Int("bytes", len(data)))
	return nil
}

// Delete removes a slot row if present
func (r *SlotRepository) Delete(ctx context.Context, key string) error {
	query, args, err := r.psql.
		Delete(slotTable).
		Where(squirrel.Eq{"slot_key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

// Sweep deletes slots not written within olderThan
func (r *SlotRepository) Sweep(ctx context.Context, olderThan time.Duration) (int, error) {
	query, args, err := r.psql.
		Delete(slotTable).
		Where(squirrel.Lt{"updated_at": r.now().UTC().Add(-olderThan)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep slots: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	r.logger.InfoContext(ctx, "swept stale slots",
		slog.Int64("removed", removed),
		slog.Duration("older_than", olderThan))
	return int(removed), nil
}

// Ping verifies database connectivity
func (r *SlotRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
