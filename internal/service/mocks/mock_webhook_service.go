package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"signsync/internal/service"
)

type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) Process(ctx context.Context, body []byte) (service.Outcome, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(service.Outcome), args.Error(1)
}
