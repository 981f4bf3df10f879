// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-be/internal/core/domain"
)

const (
	TypeOrderConfirmation = "order:confirmation"
	TypeCleanupCartSlots  = "cleanup:cart_slots"
)

// Queue names, matching the default ASYNQ_QUEUES setting
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// OrderConfirmationPayload is what the confirmation email is rendered from.
// Card details never enter the queue beyond the masked number.
type OrderConfirmationPayload struct {
	OrderID        string    `json:"order_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	ItemCount      int       `json:"item_count"`
	Total          string    `json:"total"`
	ShippingMethod string    `json:"shipping_method"`
	MaskedCard     string    `json:"masked_card"`
	PlacedAt       time.Time `json:"placed_at"`
}

// CleanupPayload optionally overrides the configured slot age limit
type CleanupPayload struct {
	OlderThan time.Duration `json:"older_than,omitempty"`
}

// NewOrderConfirmationTask builds the task published after a successful checkout
func NewOrderConfirmationTask(order *domain.Order) (*asynq.Task, error) {
	payload, err := json.Marshal(OrderConfirmationPayload{
		OrderID:        order.ID,
		Email:          order.Shipping.Email,
		Name:           order.Shipping.FirstName + " " + order.Shipping.LastName,
		ItemCount:      order.Summary.ItemCount,
		Total:          order.Summary.Total.StringFixed(2),
		ShippingMethod: string(order.ShippingMethod),
		MaskedCard:     order.Payment.CardNumber,
		PlacedAt:       order.PlacedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order confirmation: %w", err)
	}
	return asynq.NewTask(TypeOrderConfirmation, payload,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(5),
		asynq.TaskID("confirm-"+order.ID),
	), nil
}

// NewCleanupCartSlotsTask builds the periodic abandoned-cart sweep
func NewCleanupCartSlotsTask(olderThan time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(CleanupPayload{OlderThan: olderThan})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cleanup payload: %w", err)
	}
	return asynq.NewTask(TypeCleanupCartSlots, payload,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
	), nil
}
