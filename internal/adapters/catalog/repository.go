// internal/adapters/catalog/repository.go
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
)

//go:embed products.json
var bundled []byte

// Repository is an in-memory, read-only product list. Catalog order is the
// order products appear in the source document.
type Repository struct {
	products []domain.Product
	index    map[domain.ID]int
	logger   *slog.Logger
}

var _ ports.CatalogRepository = (*Repository)(nil)

// NewBundledRepository loads the catalog compiled into the binary
func NewBundledRepository(logger *slog.Logger) (*Repository, error) {
	return NewRepository(bytes.NewReader(bundled), logger)
}

// NewFileRepository loads the catalog from a JSON file
func NewFileRepository(fsys afero.Fs, path string, logger *slog.Logger) (*Repository, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	return NewRepository(f, logger)
}

// NewRepository decodes a JSON array of products. Ids must be unique.
func NewRepository(r io.Reader, logger *slog.Logger) (*Repository, error) {
	var products []domain.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	index := make(map[domain.ID]int, len(products))
	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if _, dup := index[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %s in catalog", p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %s has negative price", p.ID)
		}
		index[p.ID] = i
	}

	repo := &Repository{
		products: products,
		index:    index,
		logger:   logger.With(slog.String("repository", "catalog")),
	}
	repo.logger.Info("catalog loaded", slog.Int("products", len(products)))
	return repo, nil
}

// FindByID returns domain.ErrProductNotFound for unknown ids
func (r *Repository) FindByID(ctx context.Context, id domain.ID) (*domain.Product, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p := r.products[i]
	return &p, nil
}

// FindAll returns a copy of the catalog in catalog order
func (r *Repository) FindAll(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}
