// Package site serves the service landing document at /.
package site

import (
	"context"
	"encoding/json"
	"net/http"
)

// Endpoints lists the public routes advertised at /.
var Endpoints = map[string]string{
	"api_docs":        "/api-docs",
	"openapi":         "/openapi.yaml",
	"health":          "/health",
	"metrics":         "/healthz",
	"stats":           "/stats",
	"recommendations": "/api/recommendations/{project_id}",
	"batch":           "/api/recommendations/batch",
}

// Register attaches the landing route to mux. Any other unmatched path is 404.
func Register(_ context.Context, mux *http.ServeMux, serviceName string) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/", NewRootHandler(serviceName).HandleRoot)
}

// RootHandler handles root path requests.
type RootHandler struct {
	serviceName string
}

// NewRootHandler creates a new root handler.
func NewRootHandler(serviceName string) *RootHandler {
	return &RootHandler{serviceName: serviceName}
}

type rootResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(rootResponse{Message: h.serviceName, Endpoints: Endpoints})
}
