package ports

import (
	"context"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

type AttendanceService interface {
	Today(ctx context.Context) (*domain.AttendanceReport, error)
}
