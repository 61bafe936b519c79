package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"signsync/internal/model"
)

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindActiveByProviderID(ctx context.Context, providerID string) (*model.DocumentTemplate, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindActiveByTitle(ctx context.Context, title string) (*model.DocumentTemplate, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentTemplate), args.Error(1)
}
