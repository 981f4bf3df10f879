// internal/handlers/router.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/storefront-be/internal/handlers/middleware"
	"github.com/ammerola/storefront-be/internal/pkg/config"
	"github.com/ammerola/storefront-be/internal/pkg/metrics"
)

const apiV1 = "/api/v1"

// Router bundles the handlers served by the API
type Router struct {
	Cart     *CartHandler
	Events   *EventsHandler
	Catalog  *CatalogHandler
	Checkout *CheckoutHandler
	Health   *HealthHandler
	Metrics  *metrics.Metrics
}

// Handler builds the mux and wraps it in the global middleware chain
func (rt *Router) Handler(cfg *config.Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// wraps a route with its latency metric and any route-specific middleware
	handle := func(pattern string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
		if rt.Metrics != nil {
			mws = append([]func(http.Handler) http.Handler{middleware.Metrics(rt.Metrics, pattern)}, mws...)
		}
		mux.Handle(pattern, middleware.Chain(h, mws...))
	}

	timeout := middleware.Timeout(cfg.Server.WriteTimeout)
	session := middleware.Session(middleware.SessionConfig{
		CookieName: cfg.Cart.SessionCookie,
		MaxAge:     cfg.Cart.SessionMaxAge,
		Secure:     cfg.Security.SecureCookies,
	})

	// Health and readiness endpoints
	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.Health)
		mux.HandleFunc("GET /ready", rt.Health.Readiness)
	}

	if rt.Metrics != nil && cfg.Server.EnableMetrics {
		mux.Handle("GET /metrics", rt.Metrics.Handler())
	}

	// Catalog
	handle("GET "+apiV1+"/products", rt.Catalog.ListProducts, timeout, middleware.Compression)
	handle("GET "+apiV1+"/products/facets", rt.Catalog.GetFacets, timeout, middleware.Compression)
	handle("GET "+apiV1+"/products/{id}", rt.Catalog.GetProduct, timeout)

	// Cart
	handle("GET "+apiV1+"/cart", rt.Cart.GetCart, session, timeout)
	handle("DELETE "+apiV1+"/cart", rt.Cart.ClearCart, session, timeout)
	handle("POST "+apiV1+"/cart/items", rt.Cart.AddItem, session, timeout)
	handle("PATCH "+apiV1+"/cart/items/{lineId}", rt.Cart.UpdateItem, session, timeout)
	handle("DELETE "+apiV1+"/cart/items/{lineId}", rt.Cart.RemoveItem, session, timeout)
	handle("GET "+apiV1+"/cart/events", rt.Events.Stream, session)

	// Checkout runs past the simulated placement delay, so it gets the
	// server write timeout rather than a tighter one
	handle("POST "+apiV1+"/checkout", rt.Checkout.PlaceOrder, session, timeout)

	var handler http.Handler = mux

	// Apply middleware in reverse order (innermost first)
	handler = middleware.Logger(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	return handler
}
