// internal/handlers/checkout.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
	"github.com/ammerola/storefront-be/internal/core/services"
	"github.com/ammerola/storefront-be/internal/handlers/middleware"
)

// OrderService places orders for a cart
type OrderService interface {
	PlaceOrder(ctx context.Context, cart ports.Cart, req services.CheckoutRequest) (*domain.Order, error)
}

// OrderRecorder receives checkout outcomes for metrics
type OrderRecorder interface {
	OrderPlaced(result string)
}

// CheckoutHandler handles order placement
type CheckoutHandler struct {
	carts    ports.CartProvider
	orders   OrderService
	recorder OrderRecorder
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler. recorder may be nil.
func NewCheckoutHandler(carts ports.CartProvider, orders OrderService, recorder OrderRecorder, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		orders:   orders,
		recorder: recorder,
		logger:   logger.With(slog.String("handler", "checkout")),
	}
}

func (h *CheckoutHandler) record(result string) {
	if h.recorder != nil {
		h.recorder.OrderPlaced(result)
	}
}

// PlaceOrder handles POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.record("invalid")
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	cart := h.carts.Cart(ctx, middleware.SessionFromContext(ctx))
	order, err := h.orders.PlaceOrder(ctx, cart, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrInvalidCheckout):
			h.record("invalid")
			respondError(w, h.logger, statusFor(err), err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.record("cancelled")
			respondError(w, h.logger, http.StatusServiceUnavailable, "Order placement was interrupted")
		default:
			h.record("failed")
			respondError(w, h.logger, http.StatusBadGateway, "Failed to place order")
		}
		return
	}

	h.record("placed")
	respondJSON(w, h.logger, http.StatusCreated, order)
}
