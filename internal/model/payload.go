package model

import (
	"encoding/json"
	"time"
)

// WebhookPayload is the wire shape of an inbound e-signature provider event.
// Only event_type, timestamp and a handful of data fields are guaranteed;
// everything else is event-type dependent and may be absent.
type WebhookPayload struct {
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      SubmissionData `json:"data"`
}

// SubmissionData is the provider's view of one submission. The provider uses
// numeric ids on the wire; they are carried as json.Number and handled as
// strings everywhere downstream.
type SubmissionData struct {
	ID            json.Number          `json:"id"`
	Email         string               `json:"email"`
	Template      TemplateRef          `json:"template"`
	OpenedAt      *time.Time           `json:"opened_at"`
	StartedAt     *time.Time           `json:"started_at"`
	CreatedAt     *time.Time           `json:"created_at"`
	CompletedAt   *time.Time           `json:"completed_at"`
	DeclinedAt    *time.Time           `json:"declined_at"`
	Documents     []SubmissionDocument `json:"documents"`
	AuditLogURL   string               `json:"audit_log_url"`
	SubmissionURL string               `json:"submission_url"`
}

// TemplateRef identifies the provider-side template a submission belongs to.
type TemplateRef struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// SubmissionDocument is one signed file attached to a completed submission.
type SubmissionDocument struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// SubmissionID returns the provider submission id as a string, or "" when
// the payload carried none.
func (d SubmissionData) SubmissionID() string {
	return d.ID.String()
}
