package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/DanielPopoola/consultation-relay/internal/intl"
	"github.com/DanielPopoola/consultation-relay/internal/interfaces/rest"
)

type ConsultationDTO struct {
	ID        int64     `json:"id"`
	Month     string    `json:"month"`
	Year      int       `json:"year"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

func toDTO(r *domain.ConsultationRequest) ConsultationDTO {
	return ConsultationDTO{
		ID:        r.ID,
		Month:     r.Month,
		Year:      r.Year,
		Timestamp: r.Timestamp,
		Status:    string(r.Status),
	}
}

type SubmitData struct {
	Month           string `json:"month"`
	Year            int    `json:"year"`
	RequestID       int64  `json:"requestId"`
	WebhookResponse any    `json:"webhookResponse"`
}

type SubmitResponse struct {
	Message string     `json:"message"`
	Data    SubmitData `json:"data"`
}

type ValidationErrorResponse struct {
	Message string              `json:"message"`
	Errors  []domain.FieldIssue `json:"errors"`
}

type HistoryResponse struct {
	Requests []ConsultationDTO `json:"requests"`
}

type RequestResponse struct {
	Request ConsultationDTO `json:"request"`
}

// respondWithError maps an error from the service layer to a status and body.
// fallbackMsg is the message id used for errors that carry no specific meaning.
func respondWithError(w http.ResponseWriter, l *intl.Localizer, err error, fallbackMsg string) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		rest.WriteError(w, http.StatusInternalServerError, l.T(fallbackMsg), err.Error())
		return
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation:
		issues := make([]domain.FieldIssue, 0, len(domainErr.Issues))
		for _, issue := range domainErr.Issues {
			if len(issue.Path) > 0 {
				issue.Message = l.T("Validation." + issue.Path[0])
			}
			issues = append(issues, issue)
		}
		rest.WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Message: l.T("Consultation.InvalidInput"),
			Errors:  issues,
		})
	case domain.ErrCodeWebhookNotConfigured:
		rest.WriteError(w, http.StatusInternalServerError, l.T("Consultation.WebhookNotConfigured"), domainErr.Message)
	case domain.ErrCodeDeliveryFailed:
		rest.WriteError(w, http.StatusInternalServerError, l.T("Consultation.DeliveryFailed"), errorDetail(domainErr))
	case domain.ErrCodeRequestNotFound:
		rest.WriteError(w, http.StatusNotFound, l.T("Consultation.NotFound"), domainErr.Message)
	default:
		rest.WriteError(w, http.StatusInternalServerError, l.T(fallbackMsg), errorDetail(domainErr))
	}
}

// errorDetail prefers the wrapped cause so callers see what actually failed.
func errorDetail(e *domain.DomainError) string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}
