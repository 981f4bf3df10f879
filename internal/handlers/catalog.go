// internal/handlers/catalog.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/services"
)

// Catalog is the read side of the product catalog
type Catalog interface {
	Get(ctx context.Context, id domain.ID) (*domain.Product, error)
	Search(ctx context.Context, filter domain.ProductFilter) (*services.SearchResult, error)
	Facets(ctx context.Context) (*services.Facets, error)
}

// CatalogHandler handles product-related HTTP requests
type CatalogHandler struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog Catalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger.With(slog.String("handler", "catalog")),
	}
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := domain.ID(r.PathValue("id"))

	product, err := h.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			respondError(w, h.logger, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get product",
			slog.String("product_id", id.String()),
			"err", err)
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, product)
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.catalog.Search(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to search products", "err", err)
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// GetFacets handles GET /api/v1/products/facets
func (h *CatalogHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	facets, err := h.catalog.Facets(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load facets", "err", err)
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to load filters")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, facets)
}

func parseFilter(q url.Values) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		Query:      q.Get("q"),
		Categories: multi(q, "category"),
		Brands:     multi(q, "brand"),
		Colors:     multi(q, "color"),
		Sizes:      multi(q, "size"),
		Sort:       domain.SortOption(q.Get("sort")),
	}

	if v := q.Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("min_price must be a number")
		}
		filter.MinPrice = &d
	}
	if v := q.Get("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("max_price must be a number")
		}
		filter.MaxPrice = &d
	}
	if filter.Sort != "" && !filter.Sort.Valid() {
		return filter, errors.New("unknown sort option " + string(filter.Sort))
	}
	return filter, nil
}

// multi accepts both ?color=a&color=b and ?color=a,b
func multi(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
