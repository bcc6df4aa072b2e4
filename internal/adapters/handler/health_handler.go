package handler

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/unischedule/dashboard/internal/core/ports"
)

// Pinger is any dependency that can answer a liveness ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	backend   ports.HealthProbe
	cache     Pinger
	startTime time.Time
	version   string
}

// NewHealthHandler builds the probe endpoints. cache may be nil when no
// snapshot cache is configured; it is then left out of readiness.
func NewHealthHandler(backend ports.HealthProbe, cache Pinger) *HealthHandler {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		backend:   backend,
		cache:     cache,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse follows Kubernetes/OpenShift health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is a simple liveness check - just confirms the Go process is running
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Ready reports whether the scheduling backend (and the snapshot cache,
// when configured) can be reached.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := map[string]Check{"scheduling-api": h.checkBackend(r.Context())}
	if h.cache != nil {
		checks["redis"] = h.checkCache(r.Context())
	}

	status := "UP"
	httpStatus := http.StatusOK
	for _, c := range checks {
		if c.Status != "UP" {
			status = "DOWN"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// Live is an alias for Health - simple liveness check
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

func (h *HealthHandler) checkBackend(ctx context.Context) Check {
	if h.backend == nil {
		return Check{Status: "DOWN", Message: "Scheduling API client is not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.backend.Health(ctx); err != nil {
		return Check{Status: "DOWN", Message: "Cannot reach scheduling API"}
	}
	return Check{Status: "UP"}
}

func (h *HealthHandler) checkCache(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.cache.Ping(ctx); err != nil {
		return Check{Status: "DOWN", Message: "Cannot connect to Redis"}
	}
	return Check{Status: "UP"}
}
