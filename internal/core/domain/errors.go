// internal/core/domain/errors.go
package domain

import "errors"

var (
	// ErrSlotNotFound is returned by slot stores when nothing has been written under a key
	ErrSlotNotFound = errors.New("slot not found")

	// ErrMalformedSnapshot wraps every reason a stored cart snapshot is rejected
	ErrMalformedSnapshot = errors.New("malformed cart snapshot")

	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrInvalidVariant  = errors.New("size or color not offered for product")

	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCheckout = errors.New("invalid checkout details")
)
