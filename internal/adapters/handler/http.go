package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/DanielPopoola/consultation-relay/internal/core/service"
	"github.com/DanielPopoola/consultation-relay/internal/intl"
)

type DispatchService interface {
	Submit(ctx context.Context, sub domain.Submission) (*service.DispatchResult, error)
}

type QueryService interface {
	History(ctx context.Context) ([]*domain.ConsultationRequest, error)
	FindByID(ctx context.Context, id int64) (*domain.ConsultationRequest, error)
}

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

type ConsultationHandler struct {
	dispatch   DispatchService
	query      QueryService
	translator *intl.Translator
	health     HealthCheck
	storeName  string
	submitMW   func(http.Handler) http.Handler
	logger     *slog.Logger
}

func NewConsultationHandler(
	dispatch DispatchService,
	query QueryService,
	translator *intl.Translator,
	logger *slog.Logger,
) *ConsultationHandler {
	return &ConsultationHandler{
		dispatch:   dispatch,
		query:      query,
		translator: translator,
		logger:     logger,
	}
}

// WithHealthCheck attaches a store probe used by /healthz.
func (h *ConsultationHandler) WithHealthCheck(storeName string, check HealthCheck) *ConsultationHandler {
	h.storeName = storeName
	h.health = check
	return h
}

// WithSubmitMiddleware wraps only the submission route, e.g. with a rate limiter.
func (h *ConsultationHandler) WithSubmitMiddleware(mw func(http.Handler) http.Handler) *ConsultationHandler {
	h.submitMW = mw
	return h
}

func (h *ConsultationHandler) RegisterRoutes(mux *http.ServeMux) {
	var submit http.Handler = http.HandlerFunc(h.HandleSubmit)
	if h.submitMW != nil {
		submit = h.submitMW(submit)
	}

	mux.Handle("POST /api/consultation", submit)
	mux.HandleFunc("GET /api/consultation/history", h.HandleHistory)
	mux.HandleFunc("GET /api/consultation/{id}", h.HandleGet)
	mux.HandleFunc("GET /healthz", h.HandleHealth)
}

// localizer returns the request's localizer, falling back to the default language.
func (h *ConsultationHandler) localizer(r *http.Request) *intl.Localizer {
	if l := intl.UseLocalizer(r.Context()); l != nil {
		return l
	}
	return h.translator.Localizer(intl.DefaultLanguage)
}
