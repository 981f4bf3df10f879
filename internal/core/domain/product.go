// internal/core/domain/product.go
package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a read-only catalog record
type Product struct {
	ID            ID               `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Brand         string           `json:"brand"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Images        []string         `json:"images"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
	Tags          []string         `json:"tags,omitempty"`
	Rating        float64          `json:"rating"`
	InStock       bool             `json:"inStock"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// SortOption selects the ordering of catalog search results
type SortOption string

const (
	SortFeatured  SortOption = "featured"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortRating    SortOption = "rating"
	SortNewest    SortOption = "newest"
)

// Valid reports whether the option is one the catalog understands
func (s SortOption) Valid() bool {
	switch s {
	case SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortNewest:
		return true
	}
	return false
}

// ProductFilter narrows a catalog search. Empty slices and nil bounds match everything.
type ProductFilter struct {
	Query      string
	Categories []string
	Brands     []string
	Colors     []string
	Sizes      []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       SortOption
}

// ImageRef returns the primary image, if any
func (p *Product) ImageRef() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// DefaultSize is the first offered size, used by quick-add
func (p *Product) DefaultSize() string {
	if len(p.Sizes) == 0 {
		return ""
	}
	return p.Sizes[0]
}

// DefaultColor is the first offered color, used by quick-add
func (p *Product) DefaultColor() string {
	if len(p.Colors) == 0 {
		return ""
	}
	return p.Colors[0]
}

// OffersVariant reports whether size and color are both offered. A product
// without sizes (or colors) only accepts the empty value for that selector.
func (p *Product) OffersVariant(size, color string) bool {
	return offers(p.Sizes, size) && offers(p.Colors, color)
}

func offers(options []string, value string) bool {
	if len(options) == 0 {
		return value == ""
	}
	return slices.Contains(options, value)
}

// Snapshot captures the fields a cart line keeps
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageRef:  p.ImageRef(),
	}
}
