package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightshift/clockin-system/internal/api/metrics"
	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
	"github.com/brightshift/clockin-system/internal/core/presence"
)

// AttendanceService evaluates today's attendance on demand. Results are
// never persisted.
type AttendanceService struct {
	retention
	roster    ports.RosterRepository
	evaluator presence.Evaluator
}

func NewAttendanceService(
	events ports.EventLog,
	roster ports.RosterRepository,
	evaluator presence.Evaluator,
	monthsToKeep int,
	now func() time.Time,
	log zerolog.Logger,
) *AttendanceService {
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		retention: retention{events: events, monthsToKeep: monthsToKeep, now: now, log: log},
		roster:    roster,
		evaluator: evaluator,
	}
}

// Today returns the late and absent sets at the current instant.
func (s *AttendanceService) Today(ctx context.Context) (*domain.AttendanceReport, error) {
	workers, err := s.roster.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("attendance: %w", err)
	}
	events, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("attendance: %w", err)
	}

	report := s.evaluator.Evaluate(workers, events, s.now())
	metrics.AttendanceFlagged.WithLabelValues("late").Set(float64(len(report.Late)))
	metrics.AttendanceFlagged.WithLabelValues("absent").Set(float64(len(report.Absent)))
	return &report, nil
}
