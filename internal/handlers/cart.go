// internal/handlers/cart.go
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/ports"
	"github.com/ammerola/storefront-be/internal/core/services"
	"github.com/ammerola/storefront-be/internal/handlers/middleware"
)

// VariantResolver turns a product id and variant into a cart line selection
type VariantResolver interface {
	Resolve(ctx context.Context, id domain.ID, size, color string) (*services.LineSelection, error)
}

// CartHandler handles cart-related HTTP requests
type CartHandler struct {
	carts   ports.CartProvider
	catalog VariantResolver
	logger  *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts ports.CartProvider, catalog VariantResolver, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		logger:  logger.With(slog.String("handler", "cart")),
	}
}

// CartView is the cart as the storefront renders it
type CartView struct {
	Version   uint64              `json:"version"`
	Items     []domain.LineItem   `json:"items"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	ItemCount int                 `json:"itemCount"`
	Summary   domain.OrderSummary `json:"summary"`
}

// NewCartView derives the totals for a snapshot
func NewCartView(snap domain.CartSnapshot, method domain.ShippingMethod) CartView {
	items := snap.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	return CartView{
		Version:   snap.Version,
		Items:     items,
		Subtotal:  snap.Subtotal(),
		ItemCount: snap.ItemCount(),
		Summary:   domain.CalculateSummary(items, method),
	}
}

var msgQuantityTooLarge = fmt.Sprintf("quantity must be at most %d", domain.MaxLineQuantity)

// AddItemRequest is the body of POST /api/v1/cart/items
type AddItemRequest struct {
	ProductID domain.ID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
}

// UpdateItemRequest is the body of PATCH /api/v1/cart/items/{lineId}
type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// AddItemResponse returns the touched line with the resulting cart
type AddItemResponse struct {
	Line domain.LineItem `json:"line"`
	Cart CartView        `json:"cart"`
}

func (h *CartHandler) cart(r *http.Request) ports.Cart {
	return h.carts.Cart(r.Context(), middleware.SessionFromContext(r.Context()))
}

func shippingMethod(r *http.Request) domain.ShippingMethod {
	return domain.ShippingMethod(r.URL.Query().Get("shipping_method"))
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart := h.cart(r)
	respondJSON(w, h.logger, http.StatusOK, NewCartView(cart.Snapshot(), shippingMethod(r)))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProductID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity > domain.MaxLineQuantity {
		respondError(w, h.logger, http.StatusBadRequest, msgQuantityTooLarge)
		return
	}

	sel, err := h.catalog.Resolve(ctx, req.ProductID, req.Size, req.Color)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "failed to resolve product",
				slog.String("product_id", req.ProductID.String()),
				"err", err)
			respondError(w, h.logger, status, "Failed to add item")
			return
		}
		respondError(w, h.logger, status, err.Error())
		return
	}

	cart := h.cart(r)
	line := cart.Add(ctx, sel.Product, req.Quantity, sel.Size, sel.Color)

	h.logger.DebugContext(ctx, "item added",
		slog.String("product_id", line.ProductID.String()),
		slog.String("line_id", line.LineID.String()),
		slog.Int("quantity", line.Quantity))

	respondJSON(w, h.logger, http.StatusCreated, AddItemResponse{
		Line: line,
		Cart: NewCartView(cart.Snapshot(), shippingMethod(r)),
	})
}

// UpdateItem handles PATCH /api/v1/cart/items/{lineId}. Quantities of zero
// or less remove the line; unknown lines leave the cart unchanged.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity == nil {
		respondError(w, h.logger, http.StatusBadRequest, "quantity is required")
		return
	}
	if *req.Quantity > domain.MaxLineQuantity {
		respondError(w, h.logger, http.StatusBadRequest, msgQuantityTooLarge)
		return
	}

	cart := h.cart(r)
	cart.SetQuantity(r.Context(), domain.ID(r.PathValue("lineId")), *req.Quantity)
	respondJSON(w, h.logger, http.StatusOK, NewCartView(cart.Snapshot(), shippingMethod(r)))
}

// RemoveItem handles DELETE /api/v1/cart/items/{lineId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart := h.cart(r)
	cart.Remove(r.Context(), domain.ID(r.PathValue("lineId")))
	respondJSON(w, h.logger, http.StatusOK, NewCartView(cart.Snapshot(), shippingMethod(r)))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart := h.cart(r)
	cart.Clear(r.Context())
	respondJSON(w, h.logger, http.StatusOK, NewCartView(cart.Snapshot(), shippingMethod(r)))
}
