package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/staffwise/pkg/metrics"
)

// HealthHandler handles liveness and metrics requests.
type HealthHandler struct {
	serviceName string
	metrics     http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(serviceName string) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		metrics:     promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HandleHealth handles GET /health requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: h.serviceName})
}

// HandleMetrics handles GET /healthz requests with the Prometheus exposition
// of the service registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
