package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"signsync/internal/model"
)

func TestEventPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewEventPostgres(db)
	ctx := context.Background()

	payload := []byte(`{"event_type":"form.viewed"}`)
	received := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "event_type", "submission_id", "payload", "processed", "user_id", "template_id", "received_at"}).
		AddRow("ev-1", "form.viewed", "42", payload, false, nil, nil, received)

	mock.ExpectQuery("INSERT INTO webhook_events").
		WithArgs("form.viewed", "42", payload).
		WillReturnRows(rows)

	out, err := repo.Create(ctx, &model.WebhookEvent{
		EventType:    "form.viewed",
		SubmissionID: "42",
		Payload:      payload,
	})

	assert.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, "ev-1", out.ID)
	assert.False(t, out.Processed)
	assert.Nil(t, out.UserID)
	assert.Nil(t, out.TemplateID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The audit column is raw bytes, so bodies that never parsed as JSON insert
// exactly like well-formed ones and come back byte-for-byte.
func TestEventPostgres_CreateNonJSONBody(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewEventPostgres(db)
	ctx := context.Background()

	body := []byte(`not-json{{`)

	rows := sqlmock.NewRows([]string{"id", "event_type", "submission_id", "payload", "processed", "user_id", "template_id", "received_at"}).
		AddRow("ev-2", "", "", body, false, nil, nil, time.Now().UTC())

	mock.ExpectQuery("INSERT INTO webhook_events").
		WithArgs("", "", body).
		WillReturnRows(rows)

	out, err := repo.Create(ctx, &model.WebhookEvent{Payload: body})

	assert.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, body, out.Payload)
	assert.False(t, out.Processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventPostgres_CloseLatest(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewEventPostgres(db)
	ctx := context.Background()

	t.Run("closes the newest open row", func(t *testing.T) {
		mock.ExpectExec("UPDATE webhook_events").
			WithArgs("42", "form.viewed", "u1", "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		closed, err := repo.CloseLatest(ctx, "42", "form.viewed", "u1", "t1")

		assert.NoError(t, err)
		assert.True(t, closed)
	})

	t.Run("no open row matches", func(t *testing.T) {
		mock.ExpectExec("UPDATE webhook_events").
			WithArgs("42", "form.viewed", "u1", "t1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		closed, err := repo.CloseLatest(ctx, "42", "form.viewed", "u1", "t1")

		assert.NoError(t, err)
		assert.False(t, closed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventPostgres_PurgeOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewEventPostgres(db)
	ctx := context.Background()
	cutoff := time.Now().UTC().AddDate(0, 0, -90)

	mock.ExpectExec("DELETE FROM webhook_events").
		WithArgs(cutoff, 500).
		WillReturnResult(sqlmock.NewResult(0, 137))

	n, err := repo.PurgeOlderThan(ctx, cutoff, 500)

	assert.NoError(t, err)
	assert.Equal(t, int64(137), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
