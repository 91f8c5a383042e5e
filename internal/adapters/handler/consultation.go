package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/DanielPopoola/consultation-relay/internal/interfaces/rest"
)

const maxBodyBytes = 1 << 20

type ConsultationRequestBody struct {
	Month any `json:"month"`
	Year  any `json:"year"`
}

// HandleSubmit validates, records and forwards a consultation.
// A body that is not a JSON object is validated as if both fields were missing.
func (h *ConsultationHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	l := h.localizer(r)

	var body ConsultationRequestBody
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		h.logger.Debug("unreadable consultation body", "error", err)
		body = ConsultationRequestBody{}
	}

	result, err := h.dispatch.Submit(r.Context(), domain.Submission{
		Month: body.Month,
		Year:  body.Year,
	})
	if err != nil {
		respondWithError(w, l, err, "Errors.Internal")
		return
	}

	rest.WriteJSON(w, http.StatusOK, SubmitResponse{
		Message: l.T("Consultation.Submitted"),
		Data: SubmitData{
			Month:           result.Request.Month,
			Year:            result.Request.Year,
			RequestID:       result.Request.ID,
			WebhookResponse: result.WebhookResponse,
		},
	})
}

func (h *ConsultationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	l := h.localizer(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		rest.WriteError(w, http.StatusBadRequest, l.T("Consultation.InvalidInput"), "id must be a positive integer")
		return
	}

	req, err := h.query.FindByID(r.Context(), id)
	if err != nil {
		respondWithError(w, l, err, "Errors.Internal")
		return
	}

	rest.WriteJSON(w, http.StatusOK, RequestResponse{Request: toDTO(req)})
}
