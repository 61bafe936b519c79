package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"signsync/internal/service"
)

type MockStatusService struct {
	mock.Mock
}

func (m *MockStatusService) List(ctx context.Context, userID, templateID string, limit, offset int) (*service.StatusListResult, error) {
	args := m.Called(ctx, userID, templateID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StatusListResult), args.Error(1)
}
