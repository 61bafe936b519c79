package model

import (
	"encoding/json"
	"time"
)

// Status is the signing progress of one user on one template.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusViewed     Status = "viewed"
	StatusStarted    Status = "started"
	StatusCompleted  Status = "completed"
	StatusDeclined   Status = "declined"
)

// DocumentStatus is the durable per-(user, template) record the webhook
// pipeline maintains. At most one row exists per pair, enforced by a unique
// constraint plus a deterministic id derived from the pair.
//
// Timestamps are pointers: nil means the corresponding event has not been
// observed. Status is not guaranteed monotonic; the provider gives no
// ordering guarantees and the projector applies last-write-wins.
type DocumentStatus struct {
	ID                    string          `json:"id"`
	UserID                string          `json:"user_id"`
	UserName              string          `json:"user_name"`
	TemplateID            string          `json:"template_id"`
	Status                Status          `json:"status"`
	ViewedAt              *time.Time      `json:"viewed_at"`
	StartedAt             *time.Time      `json:"started_at"`
	CompletedAt           *time.Time      `json:"completed_at"`
	DeclinedAt            *time.Time      `json:"declined_at"`
	ExpiresAt             *time.Time      `json:"expires_at"`
	CompletedDocumentURL  string          `json:"completed_document_url"`
	CompletedDocumentName string          `json:"completed_document_name"`
	AuditLogURL           string          `json:"audit_log_url"`
	SubmissionURL         string          `json:"submission_url"`
	SubmissionID          string          `json:"submission_id"`
	LastPayload           json.RawMessage `json:"last_payload,omitempty"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
