package service

import (
	"context"

	"signsync/internal/model"
	"signsync/internal/repository"
)

// StatusListResult is the service-level DTO for paginated status rows.
type StatusListResult struct {
	Items []model.DocumentStatus `json:"data"`
	Total int                    `json:"total"`
}

// StatusService is the portal-facing read surface over document statuses.
type StatusService interface {
	// List returns statuses using limit/offset and a total count, optionally
	// filtered by user and template.
	List(ctx context.Context, userID, templateID string, limit, offset int) (*StatusListResult, error)
}

type statusService struct {
	repo repository.StatusRepository
}

// NewStatusService constructs a new StatusService.
func NewStatusService(repo repository.StatusRepository) StatusService {
	return &statusService{repo: repo}
}

func (s *statusService) List(ctx context.Context, userID, templateID string, limit, offset int) (*StatusListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx,
		repository.StatusFilter{UserID: userID, TemplateID: templateID},
		repository.PageQuery{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}
	return &StatusListResult{Items: res.Items, Total: res.Total}, nil
}
