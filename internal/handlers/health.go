// internal/handlers/health.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-be/internal/pkg/config"
)

// Pinger is any dependency that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueInspector is the part of *asynq.Inspector the health check reads
type QueueInspector interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	deps      map[string]Pinger
	asynq     QueueInspector
	config    *config.Config
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler. deps are pinged by name on
// every check; inspector may be nil when order notifications are off.
func NewHealthHandler(deps map[string]Pinger, inspector QueueInspector, cfg *config.Config, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		deps:      deps,
		asynq:     inspector,
		config:    cfg,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}
}

// HealthStatus represents the health status of the application
type HealthStatus struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	CartBackend string                 `json:"cart_backend"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]ServiceInfo `json:"services"`
	System      SystemInfo             `json:"system"`
}

// ServiceInfo represents the status of a service dependency
type ServiceInfo struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SystemInfo represents system-level information
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	MemorySysMB   uint64 `json:"memory_sys_mb"`
	NumGC         uint32 `json:"num_gc"`
}

// Health handles the /health endpoint
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := HealthStatus{
		Status:      "healthy",
		Version:     h.config.App.Version,
		Environment: h.config.App.Environment,
		CartBackend: h.config.Cart.Backend,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now(),
		Services:    make(map[string]ServiceInfo, len(h.deps)+1),
		System:      h.getSystemInfo(),
	}

	for name, dep := range h.deps {
		status := h.checkDependency(ctx, name, dep)
		health.Services[name] = status
		if status.Status != "healthy" {
			health.Status = "degraded"
		}
	}

	if h.asynq != nil {
		asynqStatus := h.checkAsynq(ctx)
		health.Services["asynq"] = asynqStatus
		if asynqStatus.Status != "healthy" {
			health.Status = "degraded"
		}
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respondJSON(w, h.logger, statusCode, health)
}

// Readiness handles the /ready endpoint
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ready := true
	details := make(map[string]string, len(h.deps))

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			ready = false
			details[name] = "not ready"
		} else {
			details[name] = "ready"
		}
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respondJSON(w, h.logger, statusCode, map[string]interface{}{
		"ready":   ready,
		"details": details,
	})
}

func (h *HealthHandler) checkDependency(ctx context.Context, name string, dep Pinger) ServiceInfo {
	start := time.Now()
	if err := dep.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health check failed",
			slog.String("dependency", name),
			"err", err)
		return ServiceInfo{Status: "unhealthy", Message: err.Error()}
	}
	return ServiceInfo{Status: "healthy", ResponseTime: time.Since(start).String()}
}

// checkAsynq reports queue depths for the notification queues
func (h *HealthHandler) checkAsynq(ctx context.Context) ServiceInfo {
	start := time.Now()
	info := ServiceInfo{
		Status:  "healthy",
		Details: make(map[string]interface{}),
	}

	queues, err := h.asynq.Queues()
	if err != nil {
		info.Status = "unhealthy"
		info.Message = err.Error()
		h.logger.ErrorContext(ctx, "asynq health check failed", "err", err)
		return info
	}

	queueStats := make(map[string]interface{}, len(queues))
	for _, queue := range queues {
		qInfo, err := h.asynq.GetQueueInfo(queue)
		if err == nil {
			queueStats[queue] = map[string]interface{}{
				"size":      qInfo.Size,
				"active":    qInfo.Active,
				"pending":   qInfo.Pending,
				"scheduled": qInfo.Scheduled,
				"retry":     qInfo.Retry,
				"archived":  qInfo.Archived,
			}
		}
	}
	info.Details["queues"] = queueStats

	info.ResponseTime = time.Since(start).String()
	return info
}

func (h *HealthHandler) getSystemInfo() SystemInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MemoryAllocMB: memStats.Alloc / 1024 / 1024,
		MemorySysMB:   memStats.Sys / 1024 / 1024,
		NumGC:         memStats.NumGC,
	}
}
