package ports

import (
	"context"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// RosterService manages roster entries.
type RosterService interface {
	List(ctx context.Context) ([]domain.Worker, error)
	Create(ctx context.Context, name string) (*domain.Worker, error)
	Delete(ctx context.Context, id string) error
}
