// internal/core/domain/cart.go
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ID is an opaque identifier for products and cart lines. Stored snapshots
// written by older clients may carry integers, so both JSON strings and
// integers are accepted on read. IDs are always written back as strings.
type ID string

// String returns the identifier as a plain string
func (id ID) String() string {
	return string(id)
}

// Compare orders ids numerically when both are integers and lexically
// otherwise. Catalog ids are assigned in insertion order.
func (id ID) Compare(other ID) int {
	a, errA := strconv.ParseInt(string(id), 10, 64)
	b, errB := strconv.ParseInt(string(other), 10, 64)
	if errA == nil && errB == nil {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	switch {
	case id < other:
		return -1
	case id > other:
		return 1
	}
	return 0
}

// UnmarshalJSON accepts a JSON string or integer
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or integer: %w", err)
	}
	if n == "" {
		// JSON null
		*id = ""
		return nil
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("id must be a string or integer, got %s", n)
	}
	*id = ID(n.String())
	return nil
}

// ProductSnapshot holds the catalog fields a cart line captures at add-time.
// Later catalog changes never reach existing lines.
type ProductSnapshot struct {
	ProductID ID              `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  string          `json:"imageRef,omitempty"`
}

// IdentityKey decides whether an add merges into an existing line
type IdentityKey struct {
	ProductID ID
	Size      string
	Color     string
}

// LineItem is one row of the cart: a product variant and its quantity
type LineItem struct {
	ProductID ID              `json:"productId"`
	LineID    ID              `json:"lineId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  string          `json:"imageRef,omitempty"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
}

// Key returns the line's identity key
func (l LineItem) Key() IdentityKey {
	return IdentityKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// LineTotal returns unit price times quantity
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// MaxLineQuantity is the most units a single line can hold. Adds and merges
// past it saturate.
const MaxLineQuantity = 999

// ClampQuantity bounds q to [1, MaxLineQuantity]
func ClampQuantity(q int) int {
	return min(max(q, 1), MaxLineQuantity)
}

// AddQuantities merges two line quantities, saturating at MaxLineQuantity
func AddQuantities(a, b int) int {
	a, b = ClampQuantity(a), ClampQuantity(b)
	if b >= MaxLineQuantity-a {
		return MaxLineQuantity
	}
	return a + b
}

// NewLineItem builds a line from a product snapshot and variant selection
func NewLineItem(lineID ID, p ProductSnapshot, quantity int, size, color string) LineItem {
	return LineItem{
		ProductID: p.ProductID,
		LineID:    lineID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		ImageRef:  p.ImageRef,
		Size:      size,
		Color:     color,
		Quantity:  quantity,
	}
}

// Subtotal sums unit price times quantity over all lines
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount sums quantities over all lines
func ItemCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// CartSnapshot is the state handed to cart listeners after a mutation.
// Version increases by one with every state change of a given cart.
type CartSnapshot struct {
	Version uint64     `json:"version"`
	Items   []LineItem `json:"items"`
}

// Subtotal is derived from the snapshot's lines
func (s CartSnapshot) Subtotal() decimal.Decimal {
	return Subtotal(s.Items)
}

// ItemCount is derived from the snapshot's lines
func (s CartSnapshot) ItemCount() int {
	return ItemCount(s.Items)
}

// IsEmpty reports whether the snapshot holds no lines
func (s CartSnapshot) IsEmpty() bool {
	return len(s.Items) == 0
}
