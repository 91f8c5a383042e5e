package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/DanielPopoola/consultation-relay/internal/core/ports"
)

// DispatchResult is what a successful submission returns to the caller.
type DispatchResult struct {
	Request         *domain.ConsultationRequest
	WebhookResponse any
}

type DispatchService struct {
	store      ports.RequestStore
	webhook    ports.WebhookPort
	webhookURL string
	now        func() time.Time
	logger     *slog.Logger
}

// NewDispatchService wires the submission pipeline. An empty webhookURL is allowed:
// submissions are still validated and stored, then rejected as unconfigured.
func NewDispatchService(store ports.RequestStore, webhook ports.WebhookPort, webhookURL string, logger *slog.Logger) *DispatchService {
	return &DispatchService{
		store:      store,
		webhook:    webhook,
		webhookURL: webhookURL,
		now:        time.Now,
		logger:     logger,
	}
}

// Submit validates a submission, records it as pending, delivers it to the webhook
// exactly once and records the outcome.
//
// A missing webhook URL leaves the record pending; a delivery failure marks it failed.
func (s *DispatchService) Submit(ctx context.Context, sub domain.Submission) (*DispatchResult, error) {
	consultation, err := domain.ValidateSubmission(sub)
	if err != nil {
		submissionsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}

	req, err := s.store.Create(ctx, consultation.Month, consultation.Year)
	if err != nil {
		submissionsTotal.WithLabelValues(outcomeError).Inc()
		return nil, domain.NewInternalError(fmt.Errorf("create consultation request: %w", err))
	}

	logger := s.logger.With("request_id", req.ID, "month", req.Month, "year", req.Year)

	if s.webhookURL == "" {
		logger.Warn("webhook destination not configured, request left pending")
		submissionsTotal.WithLabelValues(outcomeUnconfigured).Inc()
		return nil, domain.NewWebhookNotConfiguredError()
	}

	payload := domain.NewWebhookPayload(req, s.now())

	start := time.Now()
	resp, sendErr := s.webhook.Send(ctx, s.webhookURL, payload)
	dispatchDuration.Observe(time.Since(start).Seconds())

	// The outcome is recorded even if the caller has gone away.
	updateCtx := context.WithoutCancel(ctx)

	if sendErr != nil {
		logger.Error("webhook delivery failed", "error", sendErr)
		if err := s.recordOutcome(updateCtx, req, domain.StatusFailed); err != nil {
			submissionsTotal.WithLabelValues(outcomeError).Inc()
			return nil, domain.NewInternalError(err)
		}
		submissionsTotal.WithLabelValues(outcomeFailed).Inc()
		return nil, domain.NewDeliveryFailedError(sendErr)
	}

	if err := s.recordOutcome(updateCtx, req, domain.StatusSuccess); err != nil {
		submissionsTotal.WithLabelValues(outcomeError).Inc()
		return nil, domain.NewInternalError(err)
	}

	var body any = map[string]any{}
	if resp != nil && resp.Body != nil {
		body = resp.Body
	}

	logger.Info("consultation delivered", "webhook_status", statusCodeOf(resp))
	submissionsTotal.WithLabelValues(outcomeSuccess).Inc()

	return &DispatchResult{
		Request:         req,
		WebhookResponse: body,
	}, nil
}

func (s *DispatchService) recordOutcome(ctx context.Context, req *domain.ConsultationRequest, status domain.RequestStatus) error {
	if err := req.TransitionTo(status); err != nil {
		return err
	}
	if err := s.store.UpdateStatus(ctx, req.ID, status); err != nil {
		return fmt.Errorf("update status of request %d to %s: %w", req.ID, status, err)
	}
	return nil
}

func statusCodeOf(resp *domain.WebhookResponse) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
