// internal/core/services/cart_transitions.go
package services

import (
	"slices"

	"github.com/ammerola/storefront-be/internal/core/domain"
)

// The transitions below never modify the slice they are given. Snapshots
// already handed to listeners share backing arrays with the store.

func addLine(items []domain.LineItem, product domain.ProductSnapshot, quantity int, size, color string, newID func() domain.ID) ([]domain.LineItem, domain.LineItem) {
	key := domain.IdentityKey{ProductID: product.ProductID, Size: size, Color: color}

	next := slices.Clone(items)
	for i := range next {
		if next[i].Key() == key {
			next[i].Quantity = domain.AddQuantities(next[i].Quantity, quantity)
			return next, next[i]
		}
	}

	line := domain.NewLineItem(newID(), product, domain.ClampQuantity(quantity), size, color)
	return append(next, line), line
}

func removeLine(items []domain.LineItem, lineID domain.ID) ([]domain.LineItem, bool) {
	i := indexOfLine(items, lineID)
	if i < 0 {
		return items, false
	}
	return slices.Delete(slices.Clone(items), i, i+1), true
}

func setLineQuantity(items []domain.LineItem, lineID domain.ID, quantity int) ([]domain.LineItem, bool) {
	i := indexOfLine(items, lineID)
	if i < 0 {
		return items, false
	}
	if quantity <= 0 {
		return removeLine(items, lineID)
	}
	quantity = min(quantity, domain.MaxLineQuantity)
	if items[i].Quantity == quantity {
		return items, false
	}

	next := slices.Clone(items)
	next[i].Quantity = quantity
	return next, true
}

func indexOfLine(items []domain.LineItem, lineID domain.ID) int {
	return slices.IndexFunc(items, func(l domain.LineItem) bool {
		return l.LineID == lineID
	})
}

func sameLines(a, b []domain.LineItem) bool {
	return slices.EqualFunc(a, b, func(x, y domain.LineItem) bool {
		return x.LineID == y.LineID &&
			x.ProductID == y.ProductID &&
			x.Name == y.Name &&
			x.UnitPrice.Equal(y.UnitPrice) &&
			x.ImageRef == y.ImageRef &&
			x.Size == y.Size &&
			x.Color == y.Color &&
			x.Quantity == y.Quantity
	})
}
