package handlers

import (
	"context"
	"net/http"
	"time"
)

type HealthHandler struct {
	searchPing func(context.Context) error
}

func NewHealthHandler(searchPing func(context.Context) error) *HealthHandler {
	return &HealthHandler{searchPing: searchPing}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// SearchReadiness handles GET /health/search, checking that the search
// collaborator is reachable.
func (h *HealthHandler) SearchReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	err := h.searchPing(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		respondJSON(w, map[string]any{
			"status":     "unhealthy",
			"error":      err.Error(),
			"latency_ms": latency,
		}, http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, map[string]any{
		"status":     "ok",
		"latency_ms": latency,
	}, http.StatusOK)
}
