// internal/core/domain/codec_test.go
package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/storefront-be/internal/core/domain"
)

func TestEncodeLineItems(t *testing.T) {
	t.Run("empty_collection_encodes_as_array", func(t *testing.T) {
		data, err := domain.EncodeLineItems(nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("writes_ids_as_strings_and_price_as_number", func(t *testing.T) {
		items := []domain.LineItem{{
			ProductID: "1",
			LineID:    "line-1",
			Name:      "Classic Tee",
			UnitPrice: decimal.RequireFromString("29.99"),
			ImageRef:  "/img/tee.jpg",
			Size:      "M",
			Color:     "Black",
			Quantity:  2,
		}}

		data, err := domain.EncodeLineItems(items)
		require.NoError(t, err)
		assert.JSONEq(t, `[{
			"productId": "1",
			"lineId": "line-1",
			"name": "Classic Tee",
			"unitPrice": 29.99,
			"imageRef": "/img/tee.jpg",
			"size": "M",
			"color": "Black",
			"quantity": 2
		}]`, string(data))
	})
}

func TestDecodeLineItems(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantError bool
		check     func(t *testing.T, items []domain.LineItem)
	}{
		{
			name:    "empty_array",
			input:   `[]`,
			wantLen: 0,
		},
		{
			name:    "null_is_empty",
			input:   `null`,
			wantLen: 0,
		},
		{
			name:    "integer_ids_are_accepted",
			input:   `[{"productId":1,"lineId":1712000000000,"name":"Tee","unitPrice":10,"size":"M","color":"Red","quantity":1}]`,
			wantLen: 1,
			check: func(t *testing.T, items []domain.LineItem) {
				assert.Equal(t, domain.ID("1"), items[0].ProductID)
				assert.Equal(t, domain.ID("1712000000000"), items[0].LineID)
			},
		},
		{
			name:    "string_price_is_accepted",
			input:   `[{"productId":"1","lineId":"a","name":"Tee","unitPrice":"12.50","quantity":3}]`,
			wantLen: 1,
			check: func(t *testing.T, items []domain.LineItem) {
				assert.True(t, decimal.RequireFromString("12.5").Equal(items[0].UnitPrice))
				assert.Equal(t, 3, items[0].Quantity)
			},
		},
		{
			name:    "unknown_fields_are_ignored",
			input:   `[{"productId":"1","lineId":"a","name":"Tee","unitPrice":10,"quantity":1,"giftWrap":true}]`,
			wantLen: 1,
		},
		{
			name:    "duplicate_identity_keys_are_merged",
			input:   `[{"productId":"1","lineId":"a","name":"Tee","unitPrice":10,"size":"M","color":"Red","quantity":1},{"productId":"1","lineId":"b","name":"Tee","unitPrice":10,"size":"M","color":"Red","quantity":2}]`,
			wantLen: 1,
			check: func(t *testing.T, items []domain.LineItem) {
				assert.Equal(t, domain.ID("a"), items[0].LineID)
				assert.Equal(t, 3, items[0].Quantity)
			},
		},
		{
			name:    "oversized_quantity_is_capped",
			input:   `[{"productId":"1","lineId":"a","name":"Tee","unitPrice":10,"quantity":9223372036854775807}]`,
			wantLen: 1,
			check: func(t *testing.T, items []domain.LineItem) {
				assert.Equal(t, domain.MaxLineQuantity, items[0].Quantity)
			},
		},
		{
			name:    "merged_quantities_saturate",
			input:   `[{"productId":"1","lineId":"a","name":"Tee","unitPrice":10,"quantity":9223372036854775807},{"productId":"1","lineId":"b","name":"Tee","unitPrice":10,"quantity":1}]`,
			wantLen: 1,
			check: func(t *testing.T, items []domain.LineItem) {
				assert.Equal(t, domain.MaxLineQuantity, items[0].Quantity)
				assert.Equal(t, domain.MaxLineQuantity, domain.ItemCount(items))
			},
		},
		{
			name:      "not_json",
			input:     `{{{`,
			wantError: true,
		},
		{
			name:      "object_instead_of_array",
			input:     `{"productId":"1"}`,
			wantError: true,
		},
		{
			name:      "missing_line_id",
			input:     `[{"productId":"1","name":"Tee","unitPrice":10,"quantity":1}]`,
			wantError: true,
		},
		{
			name:      "missing_price",
			input:     `[{"productId":"1","lineId":"a","name":"Tee","quantity":1}]`,
			wantError: true,
		},
		{
			name:      "negative_price",
			input:     `[{"productId":"1","lineId":"a","name":"Tee","unitPrice":-1,"quantity":1}]`,
			wantError: true,
		},
		{
			name:      "zero_quantity",
			input:     `[{"productId":"1","lineId":"a","name":"Tee","unitPrice":10,"quantity":0}]`,
			wantError: true,
		},
		{
			name:      "fractional_quantity",
			input:     `[{"productId":"1","lineId":"a","name":"Tee","unitPrice":10,"quantity":1.5}]`,
			wantError: true,
		},
		{
			name:      "fractional_id",
			input:     `[{"productId":1.5,"lineId":"a","name":"Tee","unitPrice":10,"quantity":1}]`,
			wantError: true,
		},
		{
			name:      "duplicate_line_id",
			input:     `[{"productId":"1","lineId":"a","name":"Tee","unitPrice":10,"quantity":1},{"productId":"2","lineId":"a","name":"Hat","unitPrice":5,"quantity":1}]`,
			wantError: true,
		},
		{
			name:      "one_bad_element_discards_all",
			input:     `[{"productId":"1","lineId":"a","name":"Tee","unitPrice":10,"quantity":1},{"productId":"2"}]`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := domain.DecodeLineItems([]byte(tt.input))
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrMalformedSnapshot)
				assert.Nil(t, items)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tt.wantLen)
			if tt.check != nil {
				tt.check(t, items)
			}
		})
	}
}

func TestCodec_EncodedOutputDecodes(t *testing.T) {
	items := []domain.LineItem{
		domain.NewLineItem("l1", domain.ProductSnapshot{ProductID: "7", Name: "Denim Jacket", UnitPrice: decimal.RequireFromString("89.00")}, 1, "L", "Blue"),
		domain.NewLineItem("l2", domain.ProductSnapshot{ProductID: "9", Name: "Beanie", UnitPrice: decimal.RequireFromString("15.5")}, 4, "", ""),
	}

	data, err := domain.EncodeLineItems(items)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.IsType(t, "", raw[0]["productId"])

	decoded, err := domain.DecodeLineItems(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.True(t, domain.Subtotal(items).Equal(domain.Subtotal(decoded)))
	assert.Equal(t, domain.ItemCount(items), domain.ItemCount(decoded))
}
