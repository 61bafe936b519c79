package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"signsync/internal/model"
	"signsync/internal/repository"
	repoMocks "signsync/internal/repository/mocks"
)

const completedBody = `{
	"event_type": "submission.completed",
	"timestamp": "2024-01-01T10:00:00Z",
	"data": {
		"id": 42,
		"email": "jane@agency.com",
		"template": {"id": 7, "name": "Handbook"},
		"completed_at": "2024-01-01T00:00:00Z",
		"documents": [{"url": "https://provider.example/docs/42.pdf", "name": "handbook-signed.pdf"}],
		"audit_log_url": "https://provider.example/audit/42",
		"submission_url": "https://provider.example/s/42"
	}
}`

type webhookFixture struct {
	events   *repoMocks.MockEventRepository
	users    *repoMocks.MockUserRepository
	tmpls    *repoMocks.MockTemplateRepository
	statuses *repoMocks.MockStatusRepository
	svc      *webhookService
}

func newWebhookFixture(now time.Time) *webhookFixture {
	f := &webhookFixture{
		events:   new(repoMocks.MockEventRepository),
		users:    new(repoMocks.MockUserRepository),
		tmpls:    new(repoMocks.MockTemplateRepository),
		statuses: new(repoMocks.MockStatusRepository),
	}
	f.svc = &webhookService{
		events:   f.events,
		resolver: NewSubjectResolver(f.users, f.tmpls),
		statuses: f.statuses,
		now:      func() time.Time { return now },
	}
	return f
}

func (f *webhookFixture) expectRawInsert() {
	f.events.On("Create", mock.Anything, mock.AnythingOfType("*model.WebhookEvent")).
		Return(&model.WebhookEvent{ID: "ev-1"}, nil)
}

func (f *webhookFixture) expectResolved(expiryDays int) {
	f.users.On("FindByEmail", mock.Anything, "jane@agency.com").
		Return(&model.User{ID: "u1", DisplayName: "Jane Doe", Email: "jane@agency.com"}, nil)
	f.tmpls.On("FindActiveByProviderID", mock.Anything, "7").
		Return(&model.DocumentTemplate{ID: "t1", ProviderTemplateID: "7", Title: "Handbook", Active: true, ExpiryDays: expiryDays}, nil)
}

func TestWebhookService_ProcessCompleted(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC)

	f := newWebhookFixture(now)
	f.expectRawInsert()
	f.expectResolved(30)

	f.statuses.On("Upsert", ctx, "u1", "Jane Doe", "t1").
		Return(&model.DocumentStatus{ID: "rec-1", UserID: "u1", UserName: "Jane Doe", TemplateID: "t1", Status: model.StatusNotStarted}, nil)
	f.statuses.On("Update", ctx, mock.MatchedBy(func(s *model.DocumentStatus) bool {
		return s.Status == model.StatusCompleted &&
			s.SubmissionID == "42" &&
			s.CompletedAt != nil &&
			s.ExpiresAt != nil &&
			s.ExpiresAt.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) &&
			s.CompletedDocumentName == "handbook-signed.pdf"
	})).Return(nil)
	f.events.On("CloseLatest", ctx, "42", "submission.completed", "u1", "t1").
		Return(true, nil)

	outcome, err := f.svc.Process(ctx, []byte(completedBody))

	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)
	f.events.AssertExpectations(t)
	f.statuses.AssertExpectations(t)
}

// statusStoreStub replays the previous write back on the next upsert, the
// way the real store does across two deliveries of the same submission.
type statusStoreStub struct {
	current model.DocumentStatus
	writes  []model.DocumentStatus
}

func (s *statusStoreStub) Upsert(context.Context, string, string, string) (*model.DocumentStatus, error) {
	c := s.current
	return &c, nil
}

func (s *statusStoreStub) Update(_ context.Context, rec *model.DocumentStatus) error {
	s.writes = append(s.writes, *rec)
	s.current = *rec
	return nil
}

func (s *statusStoreStub) List(context.Context, repository.StatusFilter, repository.PageQuery) (*repository.PageResult[model.DocumentStatus], error) {
	return nil, errors.New("not implemented")
}

// Replaying the identical completed payload twice converges on identical
// record field values: the second projection recomputes the same fields from
// the same payload.
func TestWebhookService_ProcessIsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC)

	f := newWebhookFixture(now)
	f.expectRawInsert()
	f.expectResolved(30)
	f.events.On("CloseLatest", ctx, "42", "submission.completed", "u1", "t1").
		Return(true, nil)

	store := &statusStoreStub{
		current: model.DocumentStatus{ID: "rec-1", UserID: "u1", UserName: "Jane Doe", TemplateID: "t1", Status: model.StatusNotStarted},
	}
	f.svc.statuses = store

	for i := 0; i < 2; i++ {
		outcome, err := f.svc.Process(ctx, []byte(completedBody))
		require.NoError(t, err)
		require.Equal(t, OutcomeProcessed, outcome)
	}

	require.Len(t, store.writes, 2)
	assert.Equal(t, store.writes[0], store.writes[1])
}

func TestWebhookService_UnresolvableSubjectLeavesOnlyRawEvent(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(time.Now().UTC())

	f.expectRawInsert()
	f.users.On("FindByEmail", mock.Anything, "ghost@agency.com").
		Return(nil, sql.ErrNoRows)

	body := `{"event_type":"form.viewed","data":{"id":9,"email":"ghost@agency.com","template":{"id":7,"name":"Handbook"}}}`
	outcome, err := f.svc.Process(ctx, []byte(body))

	require.NoError(t, err)
	assert.Equal(t, OutcomeSubjectNotFound, outcome)

	f.events.AssertExpectations(t)
	f.events.AssertNotCalled(t, "CloseLatest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.statuses.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.statuses.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestWebhookService_UnknownEventType(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(time.Now().UTC())

	f.expectRawInsert()
	f.expectResolved(0)

	body := `{"event_type":"submission.archived","data":{"id":9,"email":"jane@agency.com","template":{"id":7,"name":"Handbook"}}}`
	outcome, err := f.svc.Process(ctx, []byte(body))

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownEvent, outcome)
	f.statuses.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookService_MalformedPayload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `not-json{{`},
		{name: "missing email", body: `{"event_type":"form.viewed","data":{"id":9,"template":{"id":7,"name":"Handbook"}}}`},
		{name: "missing template identifiers", body: `{"event_type":"form.viewed","data":{"id":9,"email":"jane@agency.com","template":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWebhookFixture(time.Now().UTC())
			// The audit insert carries the request body byte-for-byte, whether
			// or not it ever parsed.
			f.events.On("Create", mock.Anything, mock.MatchedBy(func(ev *model.WebhookEvent) bool {
				return string(ev.Payload) == tt.body
			})).Return(&model.WebhookEvent{ID: "ev-1"}, nil)

			outcome, err := f.svc.Process(ctx, []byte(tt.body))

			require.NoError(t, err)
			assert.Equal(t, OutcomeMalformed, outcome)
			// The audit row still exists, permanently unprocessed.
			f.events.AssertExpectations(t)
			f.statuses.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWebhookService_StorageFaults(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC)

	t.Run("raw event insert fails", func(t *testing.T) {
		f := newWebhookFixture(now)
		f.events.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("write unavailable"))

		outcome, err := f.svc.Process(ctx, []byte(completedBody))

		assert.Error(t, err)
		assert.Equal(t, OutcomeError, outcome)
	})

	t.Run("status update fails after upsert", func(t *testing.T) {
		f := newWebhookFixture(now)
		f.expectRawInsert()
		f.expectResolved(0)
		f.statuses.On("Upsert", ctx, "u1", "Jane Doe", "t1").
			Return(&model.DocumentStatus{ID: "rec-1", Status: model.StatusNotStarted}, nil)
		f.statuses.On("Update", ctx, mock.Anything).
			Return(errors.New("write unavailable"))

		outcome, err := f.svc.Process(ctx, []byte(completedBody))

		assert.Error(t, err)
		assert.Equal(t, OutcomeError, outcome)
		f.events.AssertNotCalled(t, "CloseLatest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWebhookService_AuditCloseMissIsNoop(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC)

	f := newWebhookFixture(now)
	f.expectRawInsert()
	f.expectResolved(0)
	f.statuses.On("Upsert", ctx, "u1", "Jane Doe", "t1").
		Return(&model.DocumentStatus{ID: "rec-1", Status: model.StatusNotStarted}, nil)
	f.statuses.On("Update", ctx, mock.Anything).Return(nil)
	// Already closed by a racing delivery; not an error.
	f.events.On("CloseLatest", ctx, "42", "submission.completed", "u1", "t1").
		Return(false, nil)

	outcome, err := f.svc.Process(ctx, []byte(completedBody))

	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, outcome)
}
