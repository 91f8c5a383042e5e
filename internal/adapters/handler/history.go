package handler

import (
	"net/http"

	"github.com/DanielPopoola/consultation-relay/internal/interfaces/rest"
)

func (h *ConsultationHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	requests, err := h.query.History(r.Context())
	if err != nil {
		h.logger.Error("failed to load history", "error", err)
		respondWithError(w, h.localizer(r), err, "Consultation.HistoryFailed")
		return
	}

	out := make([]ConsultationDTO, 0, len(requests))
	for _, req := range requests {
		out = append(out, toDTO(req))
	}

	rest.WriteJSON(w, http.StatusOK, HistoryResponse{Requests: out})
}
