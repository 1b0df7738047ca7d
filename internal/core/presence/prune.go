package presence

import (
	"time"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// DefaultMonthsToKeep is the retention horizon used when none is configured.
const DefaultMonthsToKeep = 12

// PruneResult is the outcome of a retention pass.
type PruneResult struct {
	Retained  []domain.ClockEvent
	Discarded int
}

// Cutoff returns the oldest instant kept by a retention of monthsToKeep
// calendar months.
func Cutoff(now time.Time, monthsToKeep int) time.Time {
	return now.AddDate(0, -monthsToKeep, 0)
}

// Prune drops events older than monthsToKeep months before now. Malformed
// records are always dropped. monthsToKeep <= 0 disables pruning.
func Prune(events []domain.ClockEvent, monthsToKeep int, now time.Time) PruneResult {
	if monthsToKeep <= 0 {
		return PruneResult{Retained: events}
	}

	cutoff := Cutoff(now, monthsToKeep)
	retained := make([]domain.ClockEvent, 0, len(events))
	for _, e := range events {
		if e.Malformed() || e.Timestamp.Before(cutoff) {
			continue
		}
		retained = append(retained, e)
	}
	return PruneResult{Retained: retained, Discarded: len(events) - len(retained)}
}
