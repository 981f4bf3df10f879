// internal/core/services/types.go
package services

import "github.com/ammerola/storefront-be/internal/core/domain"

// Facets lists the distinct values shoppers can filter the catalog by
type Facets struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
	Colors     []string `json:"colors"`
	Sizes      []string `json:"sizes"`
}

// SearchResult is one page of catalog search output
type SearchResult struct {
	Products   []domain.Product  `json:"products"`
	TotalCount int               `json:"total_count"`
	Sort       domain.SortOption `json:"sort"`
}

// LineSelection is a resolved product variant ready to be added to a cart
type LineSelection struct {
	Product domain.ProductSnapshot
	Size    string
	Color   string
}

// CheckoutRequest is everything the checkout form submits
type CheckoutRequest struct {
	Shipping       domain.ShippingDetails `json:"shipping"`
	Payment        domain.PaymentDetails  `json:"payment"`
	ShippingMethod domain.ShippingMethod  `json:"shipping_method"`
}
