// internal/core/services/catalog_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/services"
	"github.com/ammerola/storefront-be/test/helpers"
	"github.com/ammerola/storefront-be/test/mocks"
)

func testCatalog() []domain.Product {
	return []domain.Product{
		*helpers.CreateTestProduct(),
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.ID = "2"
			p.Name = "Slim Denim Jeans"
			p.Description = "Stretch denim with a tapered leg"
			p.Brand = "Harbor"
			p.Category = "bottoms"
			p.Price = decimal.RequireFromString("79.00")
			p.Sizes = []string{"30", "32", "34"}
			p.Colors = []string{"Indigo"}
			p.Tags = []string{"denim"}
			p.Rating = 4.8
			p.CreatedAt = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		}),
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.ID = "3"
			p.Name = "Canvas Tote"
			p.Description = "Everyday carry bag"
			p.Brand = "Northwind"
			p.Category = "accessories"
			p.Price = decimal.RequireFromString("18.00")
			p.Sizes = nil
			p.Colors = []string{"Natural", "Black"}
			p.Tags = []string{"cotton"}
			p.Rating = 4.1
			p.InStock = false
			p.CreatedAt = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		}),
	}
}

func productIDs(products []domain.Product) []domain.ID {
	ids := make([]domain.ID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestCatalogService_Search(t *testing.T) {
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	tests := []struct {
		name   string
		filter domain.ProductFilter
		want   []domain.ID
	}{
		{name: "empty_filter_keeps_catalog_order", want: []domain.ID{"1", "2", "3"}},
		{name: "query_matches_name_case_insensitive", filter: domain.ProductFilter{Query: "DENIM"}, want: []domain.ID{"2"}},
		{name: "query_matches_tags", filter: domain.ProductFilter{Query: "cotton"}, want: []domain.ID{"1", "3"}},
		{name: "query_matches_description", filter: domain.ProductFilter{Query: "carry"}, want: []domain.ID{"3"}},
		{name: "category_filter", filter: domain.ProductFilter{Categories: []string{"tops", "bottoms"}}, want: []domain.ID{"1", "2"}},
		{name: "brand_filter", filter: domain.ProductFilter{Brands: []string{"Northwind"}}, want: []domain.ID{"1", "3"}},
		{name: "color_any_of", filter: domain.ProductFilter{Colors: []string{"Indigo", "Natural"}}, want: []domain.ID{"2", "3"}},
		{name: "size_any_of", filter: domain.ProductFilter{Sizes: []string{"M"}}, want: []domain.ID{"1"}},
		{name: "price_range_inclusive", filter: domain.ProductFilter{MinPrice: price("18"), MaxPrice: price("24.99")}, want: []domain.ID{"1", "3"}},
		{name: "sort_price_low", filter: domain.ProductFilter{Sort: domain.SortPriceLow}, want: []domain.ID{"3", "1", "2"}},
		{name: "sort_price_high", filter: domain.ProductFilter{Sort: domain.SortPriceHigh}, want: []domain.ID{"2", "1", "3"}},
		{name: "sort_rating", filter: domain.ProductFilter{Sort: domain.SortRating}, want: []domain.ID{"2", "1", "3"}},
		{name: "sort_newest", filter: domain.ProductFilter{Sort: domain.SortNewest}, want: []domain.ID{"3", "2", "1"}},
		{name: "no_match", filter: domain.ProductFilter{Query: "parka"}, want: []domain.ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockCatalogRepository(ctrl)
			repo.EXPECT().FindAll(gomock.Any()).Return(testCatalog(), nil)

			svc := services.NewCatalogService(repo, helpers.TestLogger())
			result, err := svc.Search(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Equal(t, tt.want, productIDs(result.Products))
			assert.Equal(t, len(tt.want), result.TotalCount)
		})
	}

	t.Run("unknown_sort_falls_back_to_featured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockCatalogRepository(ctrl)
		repo.EXPECT().FindAll(gomock.Any()).Return(testCatalog(), nil)

		result, err := services.NewCatalogService(repo, helpers.TestLogger()).
			Search(context.Background(), domain.ProductFilter{Sort: "cheapest"})

		require.NoError(t, err)
		assert.Equal(t, domain.SortFeatured, result.Sort)
	})

	t.Run("repository_error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockCatalogRepository(ctrl)
		repo.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("catalog unavailable"))

		_, err := services.NewCatalogService(repo, helpers.TestLogger()).
			Search(context.Background(), domain.ProductFilter{})

		assert.ErrorContains(t, err, "catalog unavailable")
	})
}

func TestCatalogService_Facets(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCatalogRepository(ctrl)
	repo.EXPECT().FindAll(gomock.Any()).Return(testCatalog(), nil)

	facets, err := services.NewCatalogService(repo, helpers.TestLogger()).Facets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"tops", "bottoms", "accessories"}, facets.Categories)
	assert.Equal(t, []string{"Northwind", "Harbor"}, facets.Brands)
	assert.Equal(t, []string{"White", "Black", "Indigo", "Natural"}, facets.Colors)
	assert.Equal(t, []string{"S", "M", "L", "30", "32", "34"}, facets.Sizes)
}

func TestCatalogService_Resolve(t *testing.T) {
	tee := helpers.CreateTestProduct()
	tote := &testCatalog()[2]

	tests := []struct {
		name       string
		product    *domain.Product
		repoErr    error
		size       string
		color      string
		wantErr    error
		wantSize   string
		wantColor  string
		errContain string
	}{
		{name: "defaults_to_first_variant", product: tee, wantSize: "S", wantColor: "White"},
		{name: "explicit_variant", product: tee, size: "L", color: "Black", wantSize: "L", wantColor: "Black"},
		{name: "unknown_size", product: tee, size: "XXL", wantErr: domain.ErrInvalidVariant},
		{name: "unknown_color", product: tee, color: "Purple", wantErr: domain.ErrInvalidVariant},
		{name: "out_of_stock", product: tote, wantErr: domain.ErrOutOfStock},
		{name: "missing_product", product: nil, wantErr: domain.ErrProductNotFound},
		{name: "repository_error", repoErr: errors.New("timeout"), errContain: "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockCatalogRepository(ctrl)
			repo.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(tt.product, tt.repoErr)

			sel, err := services.NewCatalogService(repo, helpers.TestLogger()).
				Resolve(context.Background(), "1", tt.size, tt.color)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errContain != "":
				assert.ErrorContains(t, err, tt.errContain)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantSize, sel.Size)
				assert.Equal(t, tt.wantColor, sel.Color)
				assert.Equal(t, tee.Name, sel.Product.Name)
				assert.True(t, tee.Price.Equal(sel.Product.UnitPrice))
				assert.Equal(t, "/images/tee-1.jpg", sel.Product.ImageRef)
			}
		})
	}
}
