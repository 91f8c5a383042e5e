package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/interfaces/rest"
)

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (h *ConsultationHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		rest.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Store: h.storeName})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health(ctx); err != nil {
		rest.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Store:  h.storeName,
			Error:  err.Error(),
		})
		return
	}

	rest.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Store: h.storeName})
}
