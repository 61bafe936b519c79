package repository

import (
	"context"
	"time"

	"signsync/internal/model"
)

// EventRepository owns the append-only raw webhook event audit log.
type EventRepository interface {
	// Create appends a raw event with processed=false and returns the stored
	// row (id and received_at are assigned by the database).
	Create(ctx context.Context, ev *model.WebhookEvent) (*model.WebhookEvent, error)

	// CloseLatest marks the most recently received unprocessed event matching
	// (submissionID, eventType) as processed, attaching the resolved ids.
	// Returns false when no such event exists, which is not an error.
	CloseLatest(ctx context.Context, submissionID, eventType, userID, templateID string) (bool, error)

	// PurgeOlderThan deletes at most batchSize events received before cutoff
	// and reports how many rows went away.
	PurgeOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}
