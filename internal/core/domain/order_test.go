// internal/core/domain/order_test.go
package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ammerola/storefront-be/internal/core/domain"
)

func lines(prices ...string) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(prices))
	for i, p := range prices {
		items = append(items, domain.LineItem{
			ProductID: domain.ID(rune('a' + i)),
			LineID:    domain.ID(rune('A' + i)),
			Name:      "item",
			UnitPrice: decimal.RequireFromString(p),
			Quantity:  1,
		})
	}
	return items
}

func TestCalculateSummary(t *testing.T) {
	tests := []struct {
		name         string
		items        []domain.LineItem
		method       domain.ShippingMethod
		wantShipping string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "empty_cart_has_no_charges",
			items:        nil,
			method:       domain.ShippingStandard,
			wantShipping: "0",
			wantTax:      "0",
			wantTotal:    "0",
		},
		{
			name:         "standard_below_threshold",
			items:        lines("50.00"),
			method:       domain.ShippingStandard,
			wantShipping: "9.99",
			wantTax:      "4",
			wantTotal:    "63.99",
		},
		{
			name:         "standard_at_threshold_is_charged",
			items:        lines("75.00"),
			method:       domain.ShippingStandard,
			wantShipping: "9.99",
			wantTax:      "6",
			wantTotal:    "90.99",
		},
		{
			name:         "standard_above_threshold_is_free",
			items:        lines("60.00", "20.00"),
			method:       domain.ShippingStandard,
			wantShipping: "0",
			wantTax:      "6.4",
			wantTotal:    "86.4",
		},
		{
			name:         "express_is_never_free",
			items:        lines("100.00"),
			method:       domain.ShippingExpress,
			wantShipping: "15.99",
			wantTax:      "8",
			wantTotal:    "123.99",
		},
		{
			name:         "overnight",
			items:        lines("10.00"),
			method:       domain.ShippingOvernight,
			wantShipping: "25.99",
			wantTax:      "0.8",
			wantTotal:    "36.79",
		},
		{
			name:         "unknown_method_falls_back_to_standard",
			items:        lines("10.00"),
			method:       "teleport",
			wantShipping: "9.99",
			wantTax:      "0.8",
			wantTotal:    "20.79",
		},
		{
			name:         "tax_rounds_to_cents",
			items:        lines("19.99"),
			method:       domain.ShippingExpress,
			wantShipping: "15.99",
			wantTax:      "1.6",
			wantTotal:    "37.58",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.CalculateSummary(tt.items, tt.method)
			assert.True(t, decimal.RequireFromString(tt.wantShipping).Equal(s.Shipping), "shipping %s", s.Shipping)
			assert.True(t, decimal.RequireFromString(tt.wantTax).Equal(s.Tax), "tax %s", s.Tax)
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(s.Total), "total %s", s.Total)
			assert.True(t, s.ShippingMethod.Valid())
		})
	}
}

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain_digits", input: "4111111111111111", want: "**** **** **** 1111"},
		{name: "spaced_digits", input: "4242 4242 4242 4242", want: "**** **** **** 4242"},
		{name: "short_input", input: "12", want: "**** **** **** 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.MaskCardNumber(tt.input))
		})
	}
}

func TestNewOrderID(t *testing.T) {
	at := time.UnixMilli(1712345678901)
	assert.Equal(t, "ORD-1712345678901", domain.NewOrderID(at))
}
