package postgres

import (
	"context"
	"database/sql"
	"time"

	"signsync/internal/model"
	"signsync/internal/repository"
)

// EventPostgres is a PostgreSQL implementation of repository.EventRepository.
type EventPostgres struct {
	db *sql.DB
}

// NewEventPostgres creates a new EventPostgres repository.
func NewEventPostgres(db *sql.DB) *EventPostgres {
	return &EventPostgres{db: db}
}

var _ repository.EventRepository = (*EventPostgres)(nil)

// Create appends a raw webhook event row and returns the stored record.
func (r *EventPostgres) Create(ctx context.Context, ev *model.WebhookEvent) (*model.WebhookEvent, error) {
	const q = `
		INSERT INTO webhook_events (event_type, submission_id, payload)
		VALUES ($1, $2, $3)
		RETURNING id, event_type, submission_id, payload, processed, user_id, template_id, received_at
	`
	row := r.db.QueryRowContext(ctx, q,
		ev.EventType,
		ev.SubmissionID,
		ev.Payload,
	)
	var (
		out            model.WebhookEvent
		payload        []byte
		userID, tmplID sql.NullString
	)
	if err := row.Scan(
		&out.ID,
		&out.EventType,
		&out.SubmissionID,
		&payload,
		&out.Processed,
		&userID,
		&tmplID,
		&out.ReceivedAt,
	); err != nil {
		return nil, err
	}
	out.Payload = payload
	out.UserID = stringPtr(userID)
	out.TemplateID = stringPtr(tmplID)
	return &out, nil
}

// CloseLatest marks the newest unprocessed event for (submissionID, eventType)
// as processed and links the resolved identities. Zero matched rows means the
// event was already closed or never recorded; the caller treats that as a no-op.
func (r *EventPostgres) CloseLatest(ctx context.Context, submissionID, eventType, userID, templateID string) (bool, error) {
	const q = `
		UPDATE webhook_events
		SET processed = true, user_id = $3::uuid, template_id = $4::uuid
		WHERE id = (
			SELECT id
			FROM webhook_events
			WHERE submission_id = $1 AND event_type = $2 AND NOT processed
			ORDER BY received_at DESC
			LIMIT 1
		)
	`
	res, err := r.db.ExecContext(ctx, q, submissionID, eventType, userID, templateID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurgeOlderThan deletes one batch of events received before the cutoff.
// The batch bound keeps individual delete statements small; callers loop
// until the returned count falls below the batch size.
func (r *EventPostgres) PurgeOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	const q = `
		DELETE FROM webhook_events
		WHERE id IN (
			SELECT id
			FROM webhook_events
			WHERE received_at < $1
			ORDER BY received_at ASC
			LIMIT $2
		)
	`
	res, err := r.db.ExecContext(ctx, q, cutoff, batchSize)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
