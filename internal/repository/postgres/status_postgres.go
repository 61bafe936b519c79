package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"signsync/internal/model"
	"signsync/internal/repository"
)

// StatusPostgres is a PostgreSQL implementation of repository.StatusRepository.
type StatusPostgres struct {
	db *sql.DB
}

// NewStatusPostgres creates a new StatusPostgres repository.
func NewStatusPostgres(db *sql.DB) *StatusPostgres {
	return &StatusPostgres{db: db}
}

var _ repository.StatusRepository = (*StatusPostgres)(nil)

// statusIDNamespace seeds the deterministic status row id. The id is a
// UUIDv5 of "userID:templateID", so any two deliveries for the same pair
// compute the same id regardless of which one arrives first.
var statusIDNamespace = uuid.MustParse("9f2f7f56-2c4b-4b8e-9d07-3a1c5d1f0b6e")

// StatusID returns the deterministic row id for a (user, template) pair.
func StatusID(userID, templateID string) string {
	return uuid.NewSHA1(statusIDNamespace, []byte(userID+":"+templateID)).String()
}

const statusColumns = `id, user_id, user_name, template_id, status,
		viewed_at, started_at, completed_at, declined_at, expires_at,
		completed_document_url, completed_document_name, audit_log_url,
		submission_url, submission_id, last_payload, updated_at`

// Upsert returns the status row for the pair, inserting a not_started row if
// none exists. The conflict target is the (user_id, template_id) unique
// constraint, so concurrent inserts converge on one row.
func (r *StatusPostgres) Upsert(ctx context.Context, userID, userName, templateID string) (*model.DocumentStatus, error) {
	const q = `
		INSERT INTO document_statuses (id, user_id, user_name, template_id, status, updated_at)
		VALUES ($1, $2, $3, $4, 'not_started', now())
		ON CONFLICT (user_id, template_id)
		DO UPDATE SET user_name = EXCLUDED.user_name
		RETURNING ` + statusColumns + `
	`
	row := r.db.QueryRowContext(ctx, q, StatusID(userID, templateID), userID, userName, templateID)
	return scanStatus(row)
}

// Update writes all mutable columns of an existing status row in one
// statement. The caller supplies the merged record, so unchanged fields are
// carried over rather than cleared.
func (r *StatusPostgres) Update(ctx context.Context, s *model.DocumentStatus) error {
	const q = `
		UPDATE document_statuses
		SET status = $2,
		    viewed_at = $3,
		    started_at = $4,
		    completed_at = $5,
		    declined_at = $6,
		    expires_at = $7,
		    completed_document_url = $8,
		    completed_document_name = $9,
		    audit_log_url = $10,
		    submission_url = $11,
		    submission_id = $12,
		    last_payload = $13,
		    updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, q,
		s.ID,
		string(s.Status),
		nullTime(s.ViewedAt),
		nullTime(s.StartedAt),
		nullTime(s.CompletedAt),
		nullTime(s.DeclinedAt),
		nullTime(s.ExpiresAt),
		s.CompletedDocumentURL,
		s.CompletedDocumentName,
		s.AuditLogURL,
		s.SubmissionURL,
		s.SubmissionID,
		[]byte(s.LastPayload),
	)
	return err
}

// List returns status rows newest-updated first. Empty filter fields match
// every row.
func (r *StatusPostgres) List(ctx context.Context, f repository.StatusFilter, pq repository.PageQuery) (*repository.PageResult[model.DocumentStatus], error) {
	const qCount = `
		SELECT COUNT(*)
		FROM document_statuses
		WHERE ($1 = '' OR user_id::text = $1)
		  AND ($2 = '' OR template_id::text = $2)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, f.UserID, f.TemplateID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + statusColumns + `
		FROM document_statuses
		WHERE ($1 = '' OR user_id::text = $1)
		  AND ($2 = '' OR template_id::text = $2)
		ORDER BY updated_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, f.UserID, f.TemplateID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentStatus, 0)
	for rows.Next() {
		s, err := scanStatusRows(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.DocumentStatus]{
		Items: items,
		Total: total,
	}, nil
}

func scanStatus(row *sql.Row) (*model.DocumentStatus, error) {
	var (
		s                                             model.DocumentStatus
		viewed, started, completed, declined, expires sql.NullTime
		payload                                       []byte
	)
	if err := row.Scan(
		&s.ID, &s.UserID, &s.UserName, &s.TemplateID, &s.Status,
		&viewed, &started, &completed, &declined, &expires,
		&s.CompletedDocumentURL, &s.CompletedDocumentName, &s.AuditLogURL,
		&s.SubmissionURL, &s.SubmissionID, &payload, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	fillStatus(&s, viewed, started, completed, declined, expires, payload)
	return &s, nil
}

func scanStatusRows(rows *sql.Rows) (*model.DocumentStatus, error) {
	var (
		s                                             model.DocumentStatus
		viewed, started, completed, declined, expires sql.NullTime
		payload                                       []byte
	)
	if err := rows.Scan(
		&s.ID, &s.UserID, &s.UserName, &s.TemplateID, &s.Status,
		&viewed, &started, &completed, &declined, &expires,
		&s.CompletedDocumentURL, &s.CompletedDocumentName, &s.AuditLogURL,
		&s.SubmissionURL, &s.SubmissionID, &payload, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	fillStatus(&s, viewed, started, completed, declined, expires, payload)
	return &s, nil
}

func fillStatus(s *model.DocumentStatus, viewed, started, completed, declined, expires sql.NullTime, payload []byte) {
	s.ViewedAt = timePtr(viewed)
	s.StartedAt = timePtr(started)
	s.CompletedAt = timePtr(completed)
	s.DeclinedAt = timePtr(declined)
	s.ExpiresAt = timePtr(expires)
	s.LastPayload = payload
}
