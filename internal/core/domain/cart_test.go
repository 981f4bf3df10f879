// internal/core/domain/cart_test.go
package domain_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/storefront-be/internal/core/domain"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      domain.ID
		wantError bool
	}{
		{name: "string", input: `"abc"`, want: "abc"},
		{name: "integer", input: `42`, want: "42"},
		{name: "null", input: `null`, want: ""},
		{name: "float", input: `4.2`, wantError: true},
		{name: "bool", input: `true`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id domain.ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestLineItem_Totals(t *testing.T) {
	snap := domain.ProductSnapshot{ProductID: "1", Name: "Tee", UnitPrice: decimal.RequireFromString("10.00")}
	items := []domain.LineItem{
		domain.NewLineItem("a", snap, 2, "M", "Red"),
		domain.NewLineItem("b", domain.ProductSnapshot{ProductID: "2", Name: "Cap", UnitPrice: decimal.RequireFromString("5.25")}, 1, "", ""),
	}

	assert.True(t, decimal.RequireFromString("20").Equal(items[0].LineTotal()))
	assert.True(t, decimal.RequireFromString("25.25").Equal(domain.Subtotal(items)))
	assert.Equal(t, 3, domain.ItemCount(items))
	assert.Equal(t, domain.IdentityKey{ProductID: "1", Size: "M", Color: "Red"}, items[0].Key())

	snapshot := domain.CartSnapshot{Version: 3, Items: items}
	assert.False(t, snapshot.IsEmpty())
	assert.Equal(t, 3, snapshot.ItemCount())
	assert.True(t, domain.Subtotal(nil).IsZero())
}

func TestProduct_Variants(t *testing.T) {
	p := domain.Product{
		ID:     "1",
		Name:   "Tee",
		Price:  decimal.RequireFromString("19.99"),
		Images: []string{"/a.jpg", "/b.jpg"},
		Sizes:  []string{"S", "M"},
		Colors: []string{"White"},
	}

	assert.Equal(t, "S", p.DefaultSize())
	assert.Equal(t, "White", p.DefaultColor())
	assert.True(t, p.OffersVariant("M", "White"))
	assert.False(t, p.OffersVariant("XL", "White"))
	assert.False(t, p.OffersVariant("M", ""))

	snap := p.Snapshot()
	assert.Equal(t, "/a.jpg", snap.ImageRef)
	assert.True(t, p.Price.Equal(snap.UnitPrice))

	bare := domain.Product{ID: "2"}
	assert.True(t, bare.OffersVariant("", ""))
	assert.Empty(t, bare.DefaultSize())
}

func TestAddQuantities(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want int
	}{
		{name: "plain_sum", a: 2, b: 3, want: 5},
		{name: "reaches_limit", a: domain.MaxLineQuantity - 1, b: 1, want: domain.MaxLineQuantity},
		{name: "saturates_past_limit", a: domain.MaxLineQuantity, b: 1, want: domain.MaxLineQuantity},
		{name: "no_wraparound", a: math.MaxInt, b: math.MaxInt, want: domain.MaxLineQuantity},
		{name: "non_positive_counts_as_one", a: 0, b: -5, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.AddQuantities(tt.a, tt.b))
		})
	}
}

func TestID_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.ID
		want int
	}{
		{name: "numeric_not_lexical", a: "10", b: "9", want: 1},
		{name: "numeric_equal", a: "7", b: "7", want: 0},
		{name: "numeric_less", a: "2", b: "8", want: -1},
		{name: "mixed_falls_back_to_lexical", a: "10", b: "sku-1", want: -1},
		{name: "both_opaque", a: "b", b: "a", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}
