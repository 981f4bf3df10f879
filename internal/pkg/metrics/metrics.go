// internal/pkg/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics holds the collectors exported on /metrics
type Metrics struct {
	registry *prometheus.Registry

	cartMutations  *prometheus.CounterVec
	slotErrors     *prometheus.CounterVec
	activeCarts    prometheus.Gauge
	ordersPlaced   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	tasksProcessed *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart state changes by operation.",
		}, []string{"op"}),
		slotErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "slot_errors_total",
			Help:      "Failed or rejected slot reads and writes by operation.",
		}, []string{"op"}),
		activeCarts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "sessions",
			Help:      "Carts currently held in memory.",
		}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "orders_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		tasksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "tasks_total",
			Help:      "Background tasks handled by type and result.",
		}, []string{"type", "result"}),
	}

	m.registry.MustRegister(
		m.cartMutations,
		m.slotErrors,
		m.activeCarts,
		m.ordersPlaced,
		m.httpDuration,
		m.tasksProcessed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// CartMutation counts one state change
func (m *Metrics) CartMutation(op string) {
	m.cartMutations.WithLabelValues(op).Inc()
}

// SlotError counts one failed slot operation
func (m *Metrics) SlotError(op string) {
	m.slotErrors.WithLabelValues(op).Inc()
}

// ActiveCarts sets the number of carts in memory
func (m *Metrics) ActiveCarts(n int) {
	m.activeCarts.Set(float64(n))
}

// OrderPlaced records a checkout outcome
func (m *Metrics) OrderPlaced(result string) {
	m.ordersPlaced.WithLabelValues(result).Inc()
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// TaskProcessed records one background task outcome
func (m *Metrics) TaskProcessed(taskType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.tasksProcessed.WithLabelValues(taskType, result).Inc()
}

// Registry exposes the underlying registry for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
