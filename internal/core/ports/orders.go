// internal/core/ports/orders.go
package ports

import (
	"context"

	"github.com/ammerola/storefront-be/internal/core/domain"
)

// OrderPlacer submits an order and returns its confirmation id.
// Clearing the cart afterwards is the caller's job.
type OrderPlacer interface {
	Place(ctx context.Context, order *domain.Order) (string, error)
}
