package ports

import (
	"context"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
)

// RequestStore holds consultation requests and their delivery status.
// Implementations must allocate ids atomically under concurrent Create calls.
type RequestStore interface {
	// Create stores a new pending request with the next sequential id.
	Create(ctx context.Context, month string, year int) (*domain.ConsultationRequest, error)
	// Get returns a copy of the request or domain.ErrRequestNotFound.
	Get(ctx context.Context, id int64) (*domain.ConsultationRequest, error)
	// List returns every stored request. Callers must not depend on the order.
	List(ctx context.Context) ([]*domain.ConsultationRequest, error)
	// UpdateStatus sets the status of an existing request. Unknown ids are a no-op.
	UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error
}
