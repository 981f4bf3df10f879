// internal/core/domain/order.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingMethod represents the delivery speed picked at checkout
type ShippingMethod string

const (
	ShippingStandard  ShippingMethod = "standard"
	ShippingExpress   ShippingMethod = "express"
	ShippingOvernight ShippingMethod = "overnight"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
)

var (
	// TaxRate applied to the subtotal
	TaxRate = decimal.RequireFromString("0.08")

	// FreeShippingThreshold is the subtotal above which standard shipping is free
	FreeShippingThreshold = decimal.NewFromInt(75)

	shippingRates = map[ShippingMethod]decimal.Decimal{
		ShippingStandard:  decimal.RequireFromString("9.99"),
		ShippingExpress:   decimal.RequireFromString("15.99"),
		ShippingOvernight: decimal.RequireFromString("25.99"),
	}
)

// Valid reports whether the method has a known rate
func (m ShippingMethod) Valid() bool {
	_, ok := shippingRates[m]
	return ok
}

// ShippingCost returns the charge for the method at the given subtotal
func (m ShippingMethod) ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	if m == ShippingStandard && subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	rate, ok := shippingRates[m]
	if !ok {
		return shippingRates[ShippingStandard]
	}
	return rate
}

// OrderSummary is the price breakdown shown on the cart and checkout pages
type OrderSummary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Shipping       decimal.Decimal `json:"shipping"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	ShippingMethod ShippingMethod  `json:"shipping_method"`
	ItemCount      int             `json:"item_count"`
}

// CalculateSummary derives shipping, tax and total from the current lines
func CalculateSummary(items []LineItem, method ShippingMethod) OrderSummary {
	if !method.Valid() {
		method = ShippingStandard
	}

	subtotal := Subtotal(items)
	shipping := method.ShippingCost(subtotal)
	tax := subtotal.Mul(TaxRate).Round(2)

	return OrderSummary{
		Subtotal:       subtotal,
		Shipping:       shipping,
		Tax:            tax,
		Total:          subtotal.Add(shipping).Add(tax),
		ShippingMethod: method,
		ItemCount:      ItemCount(items),
	}
}

// ShippingDetails is the delivery address collected at checkout
type ShippingDetails struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address" validate:"required"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zip_code" validate:"required"`
	Country   string `json:"country" validate:"required"`
}

// PaymentDetails is the card form. Only the masked number ever leaves checkout.
type PaymentDetails struct {
	CardNumber     string `json:"card_number" validate:"required,numeric,min=12,max=19"`
	ExpiryDate     string `json:"expiry_date" validate:"required,card_expiry"`
	CVV            string `json:"cvv" validate:"required,numeric,min=3,max=4"`
	NameOnCard     string `json:"name_on_card" validate:"required"`
	BillingAddress string `json:"billing_address,omitempty"`
}

// MaskedPayment is the payment record kept on an order
type MaskedPayment struct {
	CardNumber     string `json:"card_number"`
	NameOnCard     string `json:"name_on_card"`
	BillingAddress string `json:"billing_address,omitempty"`
}

// Mask keeps the last four card digits
func (p PaymentDetails) Mask() MaskedPayment {
	return MaskedPayment{
		CardNumber:     MaskCardNumber(p.CardNumber),
		NameOnCard:     p.NameOnCard,
		BillingAddress: p.BillingAddress,
	}
}

// MaskCardNumber renders a card number as "**** **** **** 1234"
func MaskCardNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return "**** **** **** " + digits
}

// Order is the record handed to the order placer
type Order struct {
	ID             string          `json:"id"`
	Items          []LineItem      `json:"items"`
	Shipping       ShippingDetails `json:"shipping"`
	Payment        MaskedPayment   `json:"payment"`
	ShippingMethod ShippingMethod  `json:"shipping_method"`
	Summary        OrderSummary    `json:"summary"`
	Status         OrderStatus     `json:"status"`
	PlacedAt       time.Time       `json:"placed_at"`
}

// NewOrderID formats an order identifier from the placement time
func NewOrderID(at time.Time) string {
	return fmt.Sprintf("ORD-%d", at.UnixMilli())
}
