package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/staffwise/internal/app"
	"github.com/okian/staffwise/internal/domain/types"
	"github.com/okian/staffwise/pkg/logger"
)

const maxBatchBody = 1 << 20

// RecommendHandler serves project recommendations.
type RecommendHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(deps Dependencies, l logger.Logger) *RecommendHandler {
	return &RecommendHandler{deps: deps, logger: l}
}

// batchRequest mirrors the OpenAPI schema for POST /api/recommendations/batch.
type batchRequest struct {
	ProjectIDs []int64 `json:"project_ids"`
}

// HandleRecommend handles GET|POST /api/recommendations/{project_id}.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseProjectID(r.PathValue("project_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	resp, err := h.deps.Recommend(r.Context(), projectID)
	if err != nil {
		h.fail(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleBatch handles POST /api/recommendations/batch.
func (h *RecommendHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBody))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid JSON body", ErrBadRequest))
		return
	}

	results, err := h.deps.RecommendBatch(r.Context(), body.ProjectIDs)
	if err != nil {
		h.fail(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.BatchResponse{Results: results})
}

func (h *RecommendHandler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyBatch), errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%w: %v", ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", fmt.Errorf("%w: %v", ErrUnavailable, err))
	default:
		h.logger.Error(ctx, "recommendation failed", logger.String("request_id", RequestIDFromContext(ctx)), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
