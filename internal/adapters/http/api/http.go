// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/staffwise/internal/domain/types"
	"github.com/okian/staffwise/pkg/logger"
)

const defaultServiceName = "Resource Management System API"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Recommend returns the recommendations of one project.
	Recommend(ctx context.Context, projectID int64) (types.Response, error)

	// RecommendBatch returns the recommendations of several projects in
	// input order.
	RecommendBatch(ctx context.Context, projectIDs []int64) ([]types.ProjectResponse, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recommendHandler *RecommendHandler

	serviceName    string
	allowedOrigins []string
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		serviceName:    defaultServiceName,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}

	s.healthHandler = NewHealthHandler(s.serviceName)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.recommendHandler = NewRecommendHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleMetrics, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	// The literal batch route wins over the {project_id} wildcard.
	mux.HandleFunc("POST /api/recommendations/batch", MetricsMiddleware(s.recommendHandler.HandleBatch, "recommendations_batch"))
	mux.HandleFunc("POST /api/recommendations/{project_id}", MetricsMiddleware(s.recommendHandler.HandleRecommend, "recommendations"))
	mux.HandleFunc("GET /api/recommendations/{project_id}", MetricsMiddleware(s.recommendHandler.HandleRecommend, "recommendations"))
}

// Handler wraps h with request id and CORS middleware.
func (s *Server) Handler(h http.Handler) http.Handler {
	return RequestIDMiddleware(CORSMiddleware(h, s.allowedOrigins), s.logger)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
