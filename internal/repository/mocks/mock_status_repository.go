package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"signsync/internal/model"
	"signsync/internal/repository"
)

type MockStatusRepository struct {
	mock.Mock
}

func (m *MockStatusRepository) Upsert(ctx context.Context, userID, userName, templateID string) (*model.DocumentStatus, error) {
	args := m.Called(ctx, userID, userName, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentStatus), args.Error(1)
}

func (m *MockStatusRepository) Update(ctx context.Context, s *model.DocumentStatus) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStatusRepository) List(ctx context.Context, f repository.StatusFilter, pq repository.PageQuery) (*repository.PageResult[model.DocumentStatus], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.DocumentStatus]), args.Error(1)
}
