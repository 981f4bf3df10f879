// internal/handlers/catalog_handler_test.go
package handlers_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/services"
)

func TestCatalogHandler_GetProduct(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		expectedStatus int
		expectedName   string
	}{
		{name: "existing_product", id: "4", expectedStatus: http.StatusOK, expectedName: "Leather Ankle Boots"},
		{name: "unknown_product", id: "404", expectedStatus: http.StatusNotFound},
	}

	api := newTestAPI(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, "/api/v1/products/"+tt.id, "", nil)

			require.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedName != "" {
				product := decode[domain.Product](t, rec)
				assert.Equal(t, tt.expectedName, product.Name)
				require.NotNil(t, product.OriginalPrice)
				assert.Equal(t, "199.99", product.OriginalPrice.String())
			} else {
				assert.Contains(t, rec.Body.String(), "Product not found")
			}
		})
	}
}

func TestCatalogHandler_ListProducts(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		validate       func(*testing.T, services.SearchResult)
	}{
		{
			name:           "everything",
			query:          "",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, res services.SearchResult) {
				assert.Equal(t, 8, res.TotalCount)
				assert.Equal(t, domain.SortFeatured, res.Sort)
			},
		},
		{
			name:           "by_category",
			query:          "?category=accessories",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, res services.SearchResult) {
				assert.Equal(t, 2, res.TotalCount)
				for _, p := range res.Products {
					assert.Equal(t, "accessories", p.Category)
				}
			},
		},
		{
			name:           "comma_separated_brands",
			query:          "?brand=Northwind,Fieldstone",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, res services.SearchResult) {
				for _, p := range res.Products {
					assert.Contains(t, []string{"Northwind", "Fieldstone"}, p.Brand)
				}
				assert.NotZero(t, res.TotalCount)
			},
		},
		{
			name:           "price_range_sorted_low_to_high",
			query:          "?min_price=20&max_price=60&sort=price-low",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, res services.SearchResult) {
				require.NotEmpty(t, res.Products)
				for i, p := range res.Products {
					assert.True(t, p.Price.GreaterThanOrEqual(decimal.RequireFromString("20")), p.Name)
					assert.True(t, p.Price.LessThanOrEqual(decimal.RequireFromString("60")), p.Name)
					if i > 0 {
						assert.True(t, res.Products[i-1].Price.LessThanOrEqual(p.Price))
					}
				}
			},
		},
		{
			name:           "text_query",
			query:          "?q=denim",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, res services.SearchResult) {
				require.Equal(t, 1, res.TotalCount)
				assert.Equal(t, "Classic Denim Jacket", res.Products[0].Name)
			},
		},
		{
			name:           "newest_is_highest_id_first",
			query:          "?sort=newest",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, res services.SearchResult) {
				ids := make([]string, 0, len(res.Products))
				for _, p := range res.Products {
					ids = append(ids, p.ID.String())
				}
				assert.Equal(t, []string{"8", "7", "6", "5", "4", "3", "2", "1"}, ids)
			},
		},
		{name: "bad_min_price", query: "?min_price=cheap", expectedStatus: http.StatusBadRequest},
		{name: "unknown_sort", query: "?sort=alphabetical", expectedStatus: http.StatusBadRequest},
	}

	api := newTestAPI(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, "/api/v1/products"+tt.query, "", nil)

			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.validate != nil {
				tt.validate(t, decode[services.SearchResult](t, rec))
			}
		})
	}
}

func TestCatalogHandler_GetFacets(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodGet, "/api/v1/products/facets", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	facets := decode[services.Facets](t, rec)
	assert.Contains(t, facets.Categories, "accessories")
	assert.Contains(t, facets.Brands, "Harbor")
	assert.Contains(t, facets.Colors, "Navy")
	assert.Contains(t, facets.Sizes, "XL")
}
