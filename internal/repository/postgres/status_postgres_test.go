package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"signsync/internal/model"
	"signsync/internal/repository"
)

var statusColumnList = []string{
	"id", "user_id", "user_name", "template_id", "status",
	"viewed_at", "started_at", "completed_at", "declined_at", "expires_at",
	"completed_document_url", "completed_document_name", "audit_log_url",
	"submission_url", "submission_id", "last_payload", "updated_at",
}

func freshStatusRow(id string, updatedAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(statusColumnList).
		AddRow(id, "u1", "Jane Doe", "t1", "not_started",
			nil, nil, nil, nil, nil,
			"", "", "", "", "", []byte(nil), updatedAt)
}

func TestStatusID(t *testing.T) {
	a := StatusID("u1", "t1")

	assert.Equal(t, a, StatusID("u1", "t1"))
	assert.NotEqual(t, a, StatusID("u1", "t2"))
	assert.NotEqual(t, a, StatusID("u2", "t1"))

	// The separator keeps ("ab", "c") and ("a", "bc") apart.
	assert.NotEqual(t, StatusID("ab", "c"), StatusID("a", "bc"))

	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestStatusPostgres_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewStatusPostgres(db)
	ctx := context.Background()

	id := StatusID("u1", "t1")
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO document_statuses").
		WithArgs(id, "u1", "Jane Doe", "t1").
		WillReturnRows(freshStatusRow(id, now))

	s, err := repo.Upsert(ctx, "u1", "Jane Doe", "t1")

	assert.NoError(t, err)
	assert.NotNil(t, s)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, model.StatusNotStarted, s.Status)
	assert.Nil(t, s.ViewedAt)
	assert.Nil(t, s.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewStatusPostgres(db)
	ctx := context.Background()

	completedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expiresAt := completedAt.AddDate(0, 0, 30)
	s := &model.DocumentStatus{
		ID:                    StatusID("u1", "t1"),
		Status:                model.StatusCompleted,
		CompletedAt:           &completedAt,
		ExpiresAt:             &expiresAt,
		CompletedDocumentURL:  "https://provider.example/docs/42.pdf",
		CompletedDocumentName: "handbook-signed.pdf",
		AuditLogURL:           "https://provider.example/audit/42",
		SubmissionURL:         "https://provider.example/s/42",
		SubmissionID:          "42",
		LastPayload:           []byte(`{"event_type":"submission.completed"}`),
	}

	mock.ExpectExec("UPDATE document_statuses").
		WithArgs(
			s.ID,
			"completed",
			nullTime(nil),
			nullTime(nil),
			nullTime(&completedAt),
			nullTime(nil),
			nullTime(&expiresAt),
			s.CompletedDocumentURL,
			s.CompletedDocumentName,
			s.AuditLogURL,
			s.SubmissionURL,
			s.SubmissionID,
			[]byte(s.LastPayload),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(ctx, s)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewStatusPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("filtered page with total", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT(.+) FROM document_statuses").
			WithArgs("u1", "").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		mock.ExpectQuery("SELECT (.+) FROM document_statuses").
			WithArgs("u1", "", 10, 0).
			WillReturnRows(freshStatusRow(StatusID("u1", "t1"), now))

		res, err := repo.List(ctx,
			repository.StatusFilter{UserID: "u1"},
			repository.PageQuery{Limit: 10, Offset: 0},
		)

		assert.NoError(t, err)
		assert.NotNil(t, res)
		assert.Equal(t, 12, res.Total)
		assert.Len(t, res.Items, 1)
		assert.Equal(t, "u1", res.Items[0].UserID)
	})

	t.Run("empty page", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT(.+) FROM document_statuses").
			WithArgs("", "").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT (.+) FROM document_statuses").
			WithArgs("", "", 10, 0).
			WillReturnRows(sqlmock.NewRows(statusColumnList))

		res, err := repo.List(ctx, repository.StatusFilter{}, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.NotNil(t, res)
		assert.Zero(t, res.Total)
		assert.Empty(t, res.Items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
