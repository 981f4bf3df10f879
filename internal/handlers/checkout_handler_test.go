// internal/handlers/checkout_handler_test.go
package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/services"
	"github.com/ammerola/storefront-be/internal/handlers"
	"github.com/ammerola/storefront-be/test/helpers"
	"github.com/ammerola/storefront-be/test/mocks"
)

func TestCheckoutHandler_PlaceOrder(t *testing.T) {
	tests := []struct {
		name           string
		fillCart       bool
		body           interface{}
		setupMocks     func(*mocks.MockOrderPlacer)
		expectedStatus int
		expectedError  string
		cartCleared    bool
	}{
		{
			name:     "placed",
			fillCart: true,
			body:     helpers.CreateCheckoutRequest(),
			setupMocks: func(m *mocks.MockOrderPlacer) {
				m.EXPECT().Place(gomock.Any(), gomock.Any()).Return("CONF-1", nil)
			},
			expectedStatus: http.StatusCreated,
			cartCleared:    true,
		},
		{
			name:           "empty_cart",
			body:           helpers.CreateCheckoutRequest(),
			setupMocks:     func(*mocks.MockOrderPlacer) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "empty",
		},
		{
			name:     "invalid_form",
			fillCart: true,
			body: helpers.CreateCheckoutRequest(func(r *services.CheckoutRequest) {
				r.Shipping.Email = "nope"
			}),
			setupMocks:     func(*mocks.MockOrderPlacer) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "email must be a valid email",
		},
		{
			name:           "malformed_body",
			fillCart:       true,
			body:           "{",
			setupMocks:     func(*mocks.MockOrderPlacer) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "placement_failure_keeps_cart",
			fillCart: true,
			body:     helpers.CreateCheckoutRequest(),
			setupMocks: func(m *mocks.MockOrderPlacer) {
				m.EXPECT().Place(gomock.Any(), gomock.Any()).Return("", errors.New("gateway down"))
			},
			expectedStatus: http.StatusBadGateway,
			expectedError:  "Failed to place order",
		},
		{
			name:     "placement_interrupted",
			fillCart: true,
			body:     helpers.CreateCheckoutRequest(),
			setupMocks: func(m *mocks.MockOrderPlacer) {
				m.EXPECT().Place(gomock.Any(), gomock.Any()).Return("", context.Canceled)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			placer := mocks.NewMockOrderPlacer(ctrl)
			tt.setupMocks(placer)

			api := newTestAPI(t, placer)
			if tt.fillCart {
				rec := api.do(t, http.MethodPost, "/api/v1/cart/items", "buyer", map[string]interface{}{"productId": "2", "quantity": 1})
				require.Equal(t, http.StatusCreated, rec.Code)
			}

			rec := api.do(t, http.MethodPost, "/api/v1/checkout", "buyer", tt.body)
			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedError != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedError)
			}

			cart := decode[handlers.CartView](t, api.do(t, http.MethodGet, "/api/v1/cart", "buyer", nil))
			if tt.cartCleared {
				assert.Zero(t, cart.ItemCount)
			} else if tt.fillCart {
				assert.Equal(t, 1, cart.ItemCount, "cart must survive a failed checkout")
			}

			assert.Equal(t, 1, testutil.CollectAndCount(api.metrics.Registry(), "storefront_checkout_orders_total"))
		})
	}
}

func TestCheckoutHandler_PlaceOrder_ReturnsMaskedOrder(t *testing.T) {
	api := newTestAPI(t, nil)
	api.do(t, http.MethodPost, "/api/v1/cart/items", "buyer", map[string]interface{}{"productId": "4", "quantity": 1})

	rec := api.do(t, http.MethodPost, "/api/v1/checkout", "buyer", helpers.CreateCheckoutRequest(func(r *services.CheckoutRequest) {
		r.ShippingMethod = domain.ShippingExpress
	}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "4242 4242 4242 4242")
	assert.NotContains(t, rec.Body.String(), `"cvv"`)

	order := decode[domain.Order](t, rec)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "**** **** **** 4242", order.Payment.CardNumber)
	assert.Equal(t, domain.ShippingExpress, order.Summary.ShippingMethod)
	assert.Equal(t, "149.99", order.Summary.Subtotal.String())
	require.Len(t, order.Items, 1)
}
