package ports

import (
	"context"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
)

// WebhookPort delivers a consultation payload to the external receiver.
// A non-2xx reply is returned as an error.
type WebhookPort interface {
	Send(ctx context.Context, url string, payload domain.WebhookPayload) (*domain.WebhookResponse, error)
}
