package domain

import "time"

// WebhookTimestampLayout matches the millisecond ISO 8601 form receivers expect.
const WebhookTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// WebhookPayload is the outbound body. Its keys are the receiver's contract and
// intentionally differ from the internal field names.
type WebhookPayload struct {
	Month     string `json:"mes"`
	Year      int    `json:"año"`
	Timestamp string `json:"timestamp"`
	RequestID int64  `json:"requestId"`
}

// WebhookResponse is a successful (2xx) webhook reply.
// Body holds the decoded JSON, or an empty object when it could not be decoded.
type WebhookResponse struct {
	StatusCode int
	Body       any
}

func NewWebhookPayload(r *ConsultationRequest, dispatchedAt time.Time) WebhookPayload {
	return WebhookPayload{
		Month:     r.Month,
		Year:      r.Year,
		Timestamp: dispatchedAt.UTC().Format(WebhookTimestampLayout),
		RequestID: r.ID,
	}
}
