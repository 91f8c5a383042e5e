package webhook

import "fmt"

// WebhookError is returned when the destination answers with a non-2xx status.
type WebhookError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("webhook responded with status %d: %s", e.StatusCode, e.Status)
}
