package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"signsync/internal/model"
)

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, ev *model.WebhookEvent) (*model.WebhookEvent, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WebhookEvent), args.Error(1)
}

func (m *MockEventRepository) CloseLatest(ctx context.Context, submissionID, eventType, userID, templateID string) (bool, error) {
	args := m.Called(ctx, submissionID, eventType, userID, templateID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	args := m.Called(ctx, cutoff, batchSize)
	return args.Get(0).(int64), args.Error(1)
}
