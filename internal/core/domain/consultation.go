// Package domain holds the consultation request entity, its lifecycle and
// the rules a month/year submission must satisfy.
package domain

import "time"

// RequestStatus represents the delivery state of a consultation request
type RequestStatus string

const (
	StatusPending RequestStatus = "pending"
	StatusSuccess RequestStatus = "success"
	StatusFailed  RequestStatus = "failed"
)

// IsValid reports whether s is one of the known statuses.
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	default:
		return false
	}
}

// ConsultationRequest is the server-held record of one submission attempt.
type ConsultationRequest struct {
	ID        int64
	Month     string
	Year      int
	Timestamp time.Time
	Status    RequestStatus
}

// NewConsultationRequest builds a pending record for an already validated consultation.
func NewConsultationRequest(id int64, month string, year int, now time.Time) *ConsultationRequest {
	return &ConsultationRequest{
		ID:        id,
		Month:     month,
		Year:      year,
		Timestamp: now,
		Status:    StatusPending,
	}
}

// CanTransitionTo validates whether the request can move from its current status to target.
//
// Valid transitions are:
//   - pending → success, failed
//
// Terminal states (success, failed) do not allow any further transitions.
func (r *ConsultationRequest) CanTransitionTo(target RequestStatus) error {
	if !target.IsValid() {
		return NewInvalidStatusError(target)
	}
	if r.Status == StatusPending && (target == StatusSuccess || target == StatusFailed) {
		return nil
	}
	return NewInvalidTransitionError(r.Status, target)
}

// TransitionTo moves the request to target if the transition is allowed.
func (r *ConsultationRequest) TransitionTo(target RequestStatus) error {
	if err := r.CanTransitionTo(target); err != nil {
		return err
	}
	r.Status = target
	return nil
}

func (r *ConsultationRequest) MarkSucceeded() error {
	return r.TransitionTo(StatusSuccess)
}

func (r *ConsultationRequest) MarkFailed() error {
	return r.TransitionTo(StatusFailed)
}

func (r *ConsultationRequest) IsTerminal() bool {
	return r.Status == StatusSuccess || r.Status == StatusFailed
}

// Clone returns a copy that shares no state with r.
func (r *ConsultationRequest) Clone() *ConsultationRequest {
	c := *r
	return &c
}
