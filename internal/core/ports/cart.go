// internal/core/ports/cart.go
package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ammerola/storefront-be/internal/core/domain"
)

// Cart is the operation set every cart consumer works against. Mutations
// never fail from the caller's point of view; persistence problems are
// logged by the implementation.
type Cart interface {
	Add(ctx context.Context, product domain.ProductSnapshot, quantity int, size, color string) domain.LineItem
	Remove(ctx context.Context, lineID domain.ID)
	SetQuantity(ctx context.Context, lineID domain.ID, quantity int)
	Clear(ctx context.Context)

	Items() []domain.LineItem
	Subtotal() decimal.Decimal
	ItemCount() int
	Snapshot() domain.CartSnapshot

	// Subscribe registers fn for every state change. The returned func
	// detaches it and is safe to call more than once.
	Subscribe(fn func(domain.CartSnapshot)) (unsubscribe func())
}

// CartProvider hands out the cart for a session
type CartProvider interface {
	Cart(ctx context.Context, session string) Cart
}
