package service

import (
	"context"
	"time"

	"signsync/internal/logging"
	"signsync/internal/repository"
)

// RetentionService purges raw webhook events past their retention window.
// Deletion happens in bounded batches so a long backlog never turns into one
// huge statement.
type RetentionService interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type retentionService struct {
	events    repository.EventRepository
	retention time.Duration
	batchSize int
	now       func() time.Time
}

// NewRetentionService constructs a RetentionService keeping retentionDays of
// raw events and deleting at most batchSize rows per statement.
func NewRetentionService(events repository.EventRepository, retentionDays, batchSize int) RetentionService {
	return &retentionService{
		events:    events,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PurgeExpired deletes batches until a batch comes back short, then reports
// the total rows removed.
func (s *retentionService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)

	var total int64
	for {
		n, err := s.events.PurgeOlderThan(ctx, cutoff, s.batchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(s.batchSize) {
			break
		}
	}

	logging.Info("webhook_events_purged", map[string]any{
		"cutoff":  cutoff.Format(time.RFC3339),
		"deleted": total,
	})
	return total, nil
}
