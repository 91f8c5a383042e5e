package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
	Issues  []FieldIssue
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// FieldIssue describes one field that failed validation.
type FieldIssue struct {
	Code    string   `json:"code"`
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeInvalidFormat        = "INVALID_FORMAT"
	ErrCodeInvalidRange         = "INVALID_RANGE"
	ErrCodeWebhookNotConfigured = "WEBHOOK_NOT_CONFIGURED"
	ErrCodeDeliveryFailed       = "DELIVERY_FAILED"
	ErrCodeRequestNotFound      = "REQUEST_NOT_FOUND"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// ErrRequestNotFound is returned by stores when no record has the requested id.
var ErrRequestNotFound = &DomainError{
	Code:    ErrCodeRequestNotFound,
	Message: "consultation request not found",
}

func NewValidationError(issues []FieldIssue) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: "invalid consultation input",
		Issues:  issues,
	}
}

func NewWebhookNotConfiguredError() *DomainError {
	return &DomainError{
		Code:    ErrCodeWebhookNotConfigured,
		Message: "webhook destination not configured",
	}
}

func NewDeliveryFailedError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeDeliveryFailed,
		Message: "webhook delivery failed",
		Err:     err,
	}
}

func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "an internal error occurred",
		Err:     err,
	}
}

func NewInvalidTransitionError(from, to RequestStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewInvalidStatusError(status RequestStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidStatus,
		Message: fmt.Sprintf("unknown status %q", status),
	}
}

// IsErrorCode reports whether err is a DomainError with the given code.
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
