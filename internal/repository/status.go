package repository

import (
	"context"

	"signsync/internal/model"
)

// StatusFilter narrows a status listing. Empty fields match everything.
type StatusFilter struct {
	UserID     string
	TemplateID string
}

// StatusRepository owns the per-(user, template) document status rows.
type StatusRepository interface {
	// Upsert returns the single status row for (userID, templateID), creating
	// it with status not_started if absent. The row id is derived
	// deterministically from the pair, so two concurrent deliveries converge
	// on the same row instead of racing a lookup-then-create.
	Upsert(ctx context.Context, userID, userName, templateID string) (*model.DocumentStatus, error)

	// Update writes the mutable columns of an existing status row.
	// Last write wins on concurrent updates.
	Update(ctx context.Context, s *model.DocumentStatus) error

	// List returns a page of status rows matching the filter, newest first,
	// along with the total row count.
	List(ctx context.Context, f StatusFilter, pq PageQuery) (*PageResult[model.DocumentStatus], error)
}
