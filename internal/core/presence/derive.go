// Package presence derives worker state from the clock event log. Every
// function here is pure: callers pass the events they read from storage and
// nothing is cached between calls.
package presence

import (
	"slices"
	"time"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// Latest returns the index of the most recent well-formed event for
// workerID, or -1 when there is none. Equal timestamps resolve to the later
// position in events, since append order approximates time order.
func Latest(workerID string, events []domain.ClockEvent) int {
	idx := -1
	for i, e := range events {
		if e.WorkerID != workerID || e.Malformed() {
			continue
		}
		if idx == -1 || !e.Timestamp.Before(events[idx].Timestamp) {
			idx = i
		}
	}
	return idx
}

// StatusOf derives the current status of workerID from events.
func StatusOf(workerID string, events []domain.ClockEvent) domain.DerivedStatus {
	idx := Latest(workerID, events)
	if idx == -1 {
		return domain.DerivedStatus{Status: domain.StatusClockedOut}
	}

	last := events[idx]
	action := last.Action
	ts := last.Timestamp
	status := domain.StatusClockedOut
	if action == domain.ActionClockIn {
		status = domain.StatusClockedIn
	}
	return domain.DerivedStatus{Status: status, LastAction: &action, LastTimestamp: &ts}
}

// HistoryOf returns the events of workerID at or after since, most recent
// first.
func HistoryOf(workerID string, events []domain.ClockEvent, since time.Time) []domain.ClockEvent {
	out := make([]domain.ClockEvent, 0)
	for _, e := range events {
		if e.WorkerID != workerID || e.Malformed() || e.Timestamp.Before(since) {
			continue
		}
		out = append(out, e)
	}
	// Reverse first so the stable sort keeps later-appended events ahead of
	// earlier ones sharing a timestamp.
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b domain.ClockEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// NextAction implements toggle semantics for requests without an explicit
// action.
func NextAction(current domain.Status) domain.Action {
	if current == domain.StatusClockedIn {
		return domain.ActionClockOut
	}
	return domain.ActionClockIn
}

// SortChronological orders events by ascending timestamp in place. Events
// sharing a timestamp keep their storage order.
func SortChronological(events []domain.ClockEvent) {
	slices.SortStableFunc(events, func(a, b domain.ClockEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}
