package service

import (
	"encoding/json"
	"time"

	"signsync/internal/model"
)

// Event types delivered by the e-signature provider. form.viewed and
// form.opened are aliases across provider versions, as are
// submission.completed and form.completed.
const (
	EventFormViewed          = "form.viewed"
	EventFormOpened          = "form.opened"
	EventFormStarted         = "form.started"
	EventSubmissionCreated   = "submission.created"
	EventSubmissionCompleted = "submission.completed"
	EventFormCompleted       = "form.completed"
	EventFormDeclined        = "form.declined"
)

// RecognizedEvent reports whether the projector has a transition for the
// given event type.
func RecognizedEvent(eventType string) bool {
	switch eventType {
	case EventFormViewed, EventFormOpened, EventFormStarted,
		EventSubmissionCreated, EventSubmissionCompleted,
		EventFormCompleted, EventFormDeclined:
		return true
	}
	return false
}

// ProjectEvent is the event-to-status transition function. It takes the
// current record and one recognized event and returns the merged record;
// it performs no I/O. Unrecognized event types return the record unchanged
// and ok=false.
//
// The projector deliberately applies last-write-wins: a declined or viewed
// event delivered after completion moves status backward. The provider gives
// no ordering guarantee and the originating system never reconciled
// out-of-order delivery; that behavior is preserved and pinned by tests.
func ProjectEvent(current model.DocumentStatus, p model.WebhookPayload, raw json.RawMessage, expiryDays int, now time.Time) (model.DocumentStatus, bool) {
	s := current

	eventTime := p.Timestamp
	if eventTime.IsZero() {
		eventTime = now
	}
	data := p.Data

	switch p.EventType {
	case EventFormViewed, EventFormOpened:
		s.Status = model.StatusViewed
		s.ViewedAt = coalesceTime(data.OpenedAt, &eventTime)

	case EventFormStarted:
		s.Status = model.StatusStarted
		s.StartedAt = &eventTime
		if s.ViewedAt == nil && data.OpenedAt != nil {
			s.ViewedAt = data.OpenedAt
		}

	case EventSubmissionCreated:
		s.Status = model.StatusStarted
		s.StartedAt = coalesceTime(data.CreatedAt, &eventTime)

	case EventSubmissionCompleted, EventFormCompleted:
		s.Status = model.StatusCompleted
		s.CompletedAt = coalesceTime(data.CompletedAt, &eventTime)
		if s.ViewedAt == nil && data.OpenedAt != nil {
			s.ViewedAt = data.OpenedAt
		}
		if s.StartedAt == nil {
			s.StartedAt = coalesceTime(data.StartedAt, data.CreatedAt)
		}
		if len(data.Documents) > 0 {
			s.CompletedDocumentURL = data.Documents[0].URL
			s.CompletedDocumentName = data.Documents[0].Name
		}
		s.AuditLogURL = data.AuditLogURL
		s.SubmissionURL = data.SubmissionURL
		// Expiry only applies when the template configures it; an absent or
		// zero expiry leaves the document valid indefinitely.
		if expiryDays > 0 {
			exp := s.CompletedAt.Add(time.Duration(expiryDays) * 24 * time.Hour)
			s.ExpiresAt = &exp
		}

	case EventFormDeclined:
		s.Status = model.StatusDeclined
		s.DeclinedAt = coalesceTime(data.DeclinedAt, &eventTime)
		if s.ViewedAt == nil && data.OpenedAt != nil {
			s.ViewedAt = data.OpenedAt
		}

	default:
		return current, false
	}

	// Every recognized event stamps the provenance fields.
	s.SubmissionID = data.SubmissionID()
	s.LastPayload = raw
	s.UpdatedAt = now

	return s, true
}

func coalesceTime(ts ...*time.Time) *time.Time {
	for _, t := range ts {
		if t != nil {
			return t
		}
	}
	return nil
}
