// internal/core/domain/codec.go
package domain

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// lineItemRecord is the persisted shape of a line. Pointers distinguish a
// missing field from a zero value so incomplete records can be rejected.
type lineItemRecord struct {
	ProductID *ID              `json:"productId" validate:"required,min=1"`
	LineID    *ID              `json:"lineId" validate:"required,min=1"`
	Name      *string          `json:"name" validate:"required"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	ImageRef  string           `json:"imageRef"`
	Size      string           `json:"size"`
	Color     string           `json:"color"`
	Quantity  *int             `json:"quantity" validate:"required,gte=1"`
}

type lineItemWire struct {
	ProductID ID          `json:"productId"`
	LineID    ID          `json:"lineId"`
	Name      string      `json:"name"`
	UnitPrice json.Number `json:"unitPrice"`
	ImageRef  string      `json:"imageRef"`
	Size      string      `json:"size"`
	Color     string      `json:"color"`
	Quantity  int         `json:"quantity"`
}

// EncodeLineItems serializes the full line collection into the slot format:
// a JSON array of {productId, lineId, name, unitPrice, imageRef, size, color, quantity}.
// An empty collection encodes as [].
func EncodeLineItems(items []LineItem) ([]byte, error) {
	wire := make([]lineItemWire, 0, len(items))
	for _, item := range items {
		wire = append(wire, lineItemWire{
			ProductID: item.ProductID,
			LineID:    item.LineID,
			Name:      item.Name,
			UnitPrice: json.Number(item.UnitPrice.String()),
			ImageRef:  item.ImageRef,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
		})
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal line items: %w", err)
	}
	return data, nil
}

// DecodeLineItems parses a stored slot. Unknown fields are ignored. Any
// element that is not a complete, valid line makes the whole snapshot
// malformed; callers treat that as an empty cart. Quantities above
// MaxLineQuantity are capped rather than rejected.
func DecodeLineItems(data []byte) ([]LineItem, error) {
	var records []lineItemRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	items := make([]LineItem, 0, len(records))
	seen := make(map[ID]struct{}, len(records))

	for i, rec := range records {
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSnapshot, i, err)
		}
		if rec.UnitPrice == nil {
			return nil, fmt.Errorf("%w: line %d: unitPrice is required", ErrMalformedSnapshot, i)
		}
		if rec.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: line %d: unitPrice cannot be negative", ErrMalformedSnapshot, i)
		}
		if _, dup := seen[*rec.LineID]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate lineId %s", ErrMalformedSnapshot, i, *rec.LineID)
		}
		seen[*rec.LineID] = struct{}{}

		items = append(items, LineItem{
			ProductID: *rec.ProductID,
			LineID:    *rec.LineID,
			Name:      *rec.Name,
			UnitPrice: *rec.UnitPrice,
			ImageRef:  rec.ImageRef,
			Size:      rec.Size,
			Color:     rec.Color,
			Quantity:  ClampQuantity(*rec.Quantity),
		})
	}

	return mergeDuplicateKeys(items), nil
}

// mergeDuplicateKeys folds lines sharing an identity key into the first one
// so a rehydrated cart obeys the same merge rule as Add.
func mergeDuplicateKeys(items []LineItem) []LineItem {
	index := make(map[IdentityKey]int, len(items))
	merged := items[:0]
	for _, item := range items {
		if at, ok := index[item.Key()]; ok {
			merged[at].Quantity = AddQuantities(merged[at].Quantity, item.Quantity)
			continue
		}
		index[item.Key()] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
