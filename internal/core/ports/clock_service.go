package ports

import (
	"context"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// ClockInput is the DTO passed from the transport layer to ClockService.
type ClockInput struct {
	WorkerID string
	// Action is optional; when empty the worker's status is toggled.
	Action string
	// IdempotencyKey is optional; a repeated key returns the event recorded
	// the first time instead of appending a new one.
	IdempotencyKey string
}

// ClockResult is returned after a clock action was recorded.
type ClockResult struct {
	Event    domain.ClockEvent
	Status   domain.DerivedStatus
	Replayed bool
}

// WorkerStatus joins a roster entry with its derived status.
type WorkerStatus struct {
	domain.Worker
	domain.DerivedStatus
}

// ClockService records clock actions and answers read queries over the log.
type ClockService interface {
	Clock(ctx context.Context, in ClockInput) (*ClockResult, error)
	Statuses(ctx context.Context) ([]WorkerStatus, error)
	// History returns the worker's events of the last days days, most recent
	// first.
	History(ctx context.Context, workerID string, days int) ([]domain.ClockEvent, error)
	// Export returns the pruned log in ascending order, optionally limited to
	// one YYYY-MM calendar month.
	Export(ctx context.Context, month string) ([]domain.ClockEvent, error)
	// Compact applies the retention horizon and returns the number of
	// discarded events.
	Compact(ctx context.Context) (int, error)
}
