package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"signsync/internal/logging"
	"signsync/internal/model"
	"signsync/internal/repository"
)

// Outcome tags the result of reconciling one webhook delivery. Business-rule
// rejections (malformed, unresolvable, unrecognized) are outcomes rather than
// errors so callers and tests can assert on them; only storage faults are
// returned as errors.
type Outcome string

const (
	OutcomeProcessed       Outcome = "processed"
	OutcomeMalformed       Outcome = "malformed"
	OutcomeSubjectNotFound Outcome = "subject_not_found"
	OutcomeUnknownEvent    Outcome = "unknown_event"
	OutcomeError           Outcome = "error"
)

// WebhookService reconciles raw webhook deliveries onto document status rows.
type WebhookService interface {
	// Process persists the raw event, resolves its subject, projects it onto
	// the status record and closes the audit row. The raw-event insert happens
	// unconditionally, before anything can fail.
	Process(ctx context.Context, body []byte) (Outcome, error)
}

// WebhookMetrics counts reconciliation outcomes per event type.
type WebhookMetrics struct {
	events *prometheus.CounterVec
}

// NewWebhookMetrics registers the reconciliation counters on the given registry.
func NewWebhookMetrics(reg prometheus.Registerer) (*WebhookMetrics, error) {
	m := &WebhookMetrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "Webhook deliveries processed, by event type and outcome.",
			},
			[]string{"event_type", "outcome"},
		),
	}
	if err := reg.Register(m.events); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *WebhookMetrics) observe(eventType string, outcome Outcome) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, string(outcome)).Inc()
}

type webhookService struct {
	events   repository.EventRepository
	resolver SubjectResolver
	statuses repository.StatusRepository
	archiver *Archiver
	metrics  *WebhookMetrics
	now      func() time.Time
}

// NewWebhookService constructs the reconciliation service. archiver and
// metrics may be nil, which disables document archiving and outcome counters
// respectively.
func NewWebhookService(
	events repository.EventRepository,
	resolver SubjectResolver,
	statuses repository.StatusRepository,
	archiver *Archiver,
	metrics *WebhookMetrics,
) WebhookService {
	return &webhookService{
		events:   events,
		resolver: resolver,
		statuses: statuses,
		archiver: archiver,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *webhookService) Process(ctx context.Context, body []byte) (Outcome, error) {
	var p model.WebhookPayload
	parseErr := json.Unmarshal(body, &p)

	submissionID := p.Data.SubmissionID()

	// The audit insert is unconditional: every delivery leaves a raw event
	// row, processed=false, even when reconciliation goes nowhere.
	if _, err := s.events.Create(ctx, &model.WebhookEvent{
		EventType:    p.EventType,
		SubmissionID: submissionID,
		Payload:      body,
	}); err != nil {
		s.metrics.observe(p.EventType, OutcomeError)
		return OutcomeError, fmt.Errorf("persist raw event: %w", err)
	}

	if parseErr != nil {
		logging.Warn("webhook_payload_unparseable", map[string]any{
			"error": parseErr.Error(),
		})
		s.metrics.observe(p.EventType, OutcomeMalformed)
		return OutcomeMalformed, nil
	}
	if p.Data.Email == "" || (p.Data.Template.ID.String() == "" && p.Data.Template.Name == "") {
		logging.Warn("webhook_payload_missing_subject", map[string]any{
			"event_type":    p.EventType,
			"submission_id": submissionID,
		})
		s.metrics.observe(p.EventType, OutcomeMalformed)
		return OutcomeMalformed, nil
	}

	subject, ok, err := s.resolver.Resolve(ctx, p.Data.Email, p.Data.Template.ID.String(), p.Data.Template.Name)
	if err != nil {
		s.metrics.observe(p.EventType, OutcomeError)
		return OutcomeError, err
	}
	if !ok {
		// Resolver already logged the miss with full context.
		s.metrics.observe(p.EventType, OutcomeSubjectNotFound)
		return OutcomeSubjectNotFound, nil
	}

	// Checking the event type before touching the status store means an
	// unrecognized event never creates a not_started row as a side effect.
	if !RecognizedEvent(p.EventType) {
		logging.Warn("webhook_event_unrecognized", map[string]any{
			"event_type":    p.EventType,
			"submission_id": submissionID,
			"user_id":       subject.User.ID,
			"template_id":   subject.Template.ID,
		})
		s.metrics.observe(p.EventType, OutcomeUnknownEvent)
		return OutcomeUnknownEvent, nil
	}

	record, err := s.statuses.Upsert(ctx, subject.User.ID, subject.User.DisplayName, subject.Template.ID)
	if err != nil {
		s.metrics.observe(p.EventType, OutcomeError)
		return OutcomeError, fmt.Errorf("upsert status record: %w", err)
	}

	merged, _ := ProjectEvent(*record, p, body, subject.Template.ExpiryDays, s.now())
	if err := s.statuses.Update(ctx, &merged); err != nil {
		s.metrics.observe(p.EventType, OutcomeError)
		return OutcomeError, fmt.Errorf("update status record: %w", err)
	}

	closed, err := s.events.CloseLatest(ctx, submissionID, p.EventType, subject.User.ID, subject.Template.ID)
	if err != nil {
		// The status write has already committed; the audit link is the only
		// thing lost here.
		s.metrics.observe(p.EventType, OutcomeError)
		return OutcomeError, fmt.Errorf("close raw event: %w", err)
	}

	if s.archiver != nil && merged.Status == model.StatusCompleted && merged.CompletedDocumentURL != "" {
		if err := s.archiver.Archive(ctx, merged.SubmissionID, merged.CompletedDocumentURL, merged.CompletedDocumentName); err != nil {
			// Best effort: the archive copy is a convenience, not the record.
			logging.Error("signed_document_archive_failed", err, map[string]any{
				"submission_id": merged.SubmissionID,
				"template_id":   subject.Template.ID,
			})
		}
	}

	logging.Info("webhook_event_processed", map[string]any{
		"event_type":    p.EventType,
		"submission_id": submissionID,
		"user_id":       subject.User.ID,
		"template_id":   subject.Template.ID,
		"status":        string(merged.Status),
		"audit_closed":  closed,
	})
	s.metrics.observe(p.EventType, OutcomeProcessed)
	return OutcomeProcessed, nil
}
