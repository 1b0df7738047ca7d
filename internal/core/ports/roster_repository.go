package ports

import (
	"context"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// RosterRepository persists the worker roster.
type RosterRepository interface {
	List(ctx context.Context) ([]domain.Worker, error)
	FindByID(ctx context.Context, id string) (*domain.Worker, error)
	// Create stores w. It returns domain.ErrWorkerExists when the id or the
	// case-folded name is already taken.
	Create(ctx context.Context, w domain.Worker) error
	// Delete removes the roster entry only; events stay in the log.
	Delete(ctx context.Context, id string) error
}
