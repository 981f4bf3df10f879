// internal/core/services/catalog.go
package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
)

// CatalogService answers product lookups and searches over a read-only catalog
type CatalogService struct {
	repo   ports.CatalogRepository
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo ports.CatalogRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger.With(slog.String("service", "catalog")),
	}
}

// Get returns a single product or domain.ErrProductNotFound
func (s *CatalogService) Get(ctx context.Context, id domain.ID) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	if product == nil {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
	}
	return product, nil
}

// Search filters the catalog and orders the result
func (s *CatalogService) Search(ctx context.Context, filter domain.ProductFilter) (*SearchResult, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if !filter.Sort.Valid() {
		filter.Sort = domain.SortFeatured
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	matched := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if matchesQuery(&p, query) && matchesFilter(&p, &filter) {
			matched = append(matched, p)
		}
	}

	sortProducts(matched, filter.Sort)

	s.logger.DebugContext(ctx, "catalog search",
		slog.String("query", query),
		slog.String("sort", string(filter.Sort)),
		slog.Int("matched", len(matched)))

	return &SearchResult{
		Products:   matched,
		TotalCount: len(matched),
		Sort:       filter.Sort,
	}, nil
}

// Facets collects distinct filter values in first-seen order
func (s *CatalogService) Facets(ctx context.Context) (*Facets, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	f := &Facets{}
	for _, p := range all {
		f.Categories = appendUnique(f.Categories, p.Category)
		f.Brands = appendUnique(f.Brands, p.Brand)
		f.Colors = appendUnique(f.Colors, p.Colors...)
		f.Sizes = appendUnique(f.Sizes, p.Sizes...)
	}
	return f, nil
}

// Resolve turns a product id and optional variant into what the cart needs.
// Empty size or color fall back to the product's first option.
func (s *CatalogService) Resolve(ctx context.Context, id domain.ID, size, color string) (*LineSelection, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.InStock {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrOutOfStock)
	}

	if size == "" {
		size = product.DefaultSize()
	}
	if color == "" {
		color = product.DefaultColor()
	}
	if !product.OffersVariant(size, color) {
		return nil, fmt.Errorf("product %s size %q color %q: %w", id, size, color, domain.ErrInvalidVariant)
	}

	return &LineSelection{
		Product: product.Snapshot(),
		Size:    size,
		Color:   color,
	}, nil
}

func matchesQuery(p *domain.Product, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	return slices.ContainsFunc(p.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), query)
	})
}

func matchesFilter(p *domain.Product, f *domain.ProductFilter) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if len(f.Brands) > 0 && !slices.Contains(f.Brands, p.Brand) {
		return false
	}
	if len(f.Colors) > 0 && !containsAny(p.Colors, f.Colors) {
		return false
	}
	if len(f.Sizes) > 0 && !containsAny(p.Sizes, f.Sizes) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

func sortProducts(products []domain.Product, by domain.SortOption) {
	switch by {
	case domain.SortPriceLow:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case domain.SortPriceHigh:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case domain.SortRating:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case domain.SortNewest:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.ID.Compare(a.ID)
		})
	}
}

func containsAny(have, want []string) bool {
	return slices.ContainsFunc(want, func(w string) bool {
		return slices.Contains(have, w)
	})
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
