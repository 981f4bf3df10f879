// internal/handlers/setup_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ammerola/storefront-be/internal/adapters/catalog"
	"github.com/ammerola/storefront-be/internal/adapters/memory"
	"github.com/ammerola/storefront-be/internal/adapters/orders"
	"github.com/ammerola/storefront-be/internal/core/ports"
	"github.com/ammerola/storefront-be/internal/core/services"
	"github.com/ammerola/storefront-be/internal/handlers"
	"github.com/ammerola/storefront-be/internal/handlers/middleware"
	"github.com/ammerola/storefront-be/internal/pkg/metrics"
	"github.com/ammerola/storefront-be/test/helpers"
)

type testAPI struct {
	handler  http.Handler
	carts    *services.CartRegistry
	slots    *memory.SlotStore
	metrics  *metrics.Metrics
	checkout *services.CheckoutService
}

// newTestAPI wires the full router over an in-memory slot and the bundled catalog
func newTestAPI(t *testing.T, placer ports.OrderPlacer) *testAPI {
	t.Helper()

	logger := helpers.TestLogger()
	cfg := helpers.LoadTestConfig()
	m := metrics.New()

	repo, err := catalog.NewBundledRepository(logger)
	require.NoError(t, err)
	catalogSvc := services.NewCatalogService(repo, logger)

	slots := memory.NewSlotStore()
	carts := services.NewCartRegistry(slots, cfg.Cart.DefaultSession, m, logger)

	if placer == nil {
		placer = orders.NewSimulatedPlacer(0, logger)
	}
	checkout := services.NewCheckoutService(placer, logger)

	router := &handlers.Router{
		Cart:     handlers.NewCartHandler(carts, catalogSvc, logger),
		Events:   handlers.NewEventsHandler(carts, 50*time.Millisecond, logger),
		Catalog:  handlers.NewCatalogHandler(catalogSvc, logger),
		Checkout: handlers.NewCheckoutHandler(carts, checkout, m, logger),
		Health:   handlers.NewHealthHandler(map[string]handlers.Pinger{"slots": slots}, nil, cfg, logger),
		Metrics:  m,
	}

	return &testAPI{
		handler:  router.Handler(cfg, logger),
		carts:    carts,
		slots:    slots,
		metrics:  m,
		checkout: checkout,
	}
}

func (a *testAPI) do(t *testing.T, method, path, session string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
