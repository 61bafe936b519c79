package model

import (
	"time"
)

// WebhookEvent is the append-only audit copy of one inbound webhook call,
// persisted before any reconciliation runs. Payload holds the request body
// byte-for-byte and is not required to be valid JSON. Processed flips to true
// exactly once, after the status write commits; an event that never resolved
// stays unprocessed forever and is only removed by the retention sweep.
type WebhookEvent struct {
	ID           string    `json:"id"`
	EventType    string    `json:"event_type"`
	SubmissionID string    `json:"submission_id"`
	Payload      []byte    `json:"payload"`
	Processed    bool      `json:"processed"`
	UserID       *string   `json:"user_id"`
	TemplateID   *string   `json:"template_id"`
	ReceivedAt   time.Time `json:"received_at"`
}
