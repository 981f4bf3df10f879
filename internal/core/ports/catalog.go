// internal/core/ports/catalog.go
package ports

import (
	"context"

	"github.com/ammerola/storefront-be/internal/core/domain"
)

// CatalogRepository is the read-only product source
type CatalogRepository interface {
	FindByID(ctx context.Context, id domain.ID) (*domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
}
