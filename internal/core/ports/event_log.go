package ports

import (
	"context"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// UpdateFunc receives the current log and returns the sequence to persist.
// Existing events must keep their relative order; new events are appended.
type UpdateFunc func(current []domain.ClockEvent) ([]domain.ClockEvent, error)

// EventLog is the durable, append-only sequence of clock events.
//
// Every mutation holds an exclusive lock for the whole read-modify-write
// cycle. Failure to lock or write surfaces as domain.ErrStorageUnavailable.
type EventLog interface {
	// Append adds one event at the end of the log.
	Append(ctx context.Context, event domain.ClockEvent) error
	// ReadAll returns the log in storage order. It may run without the lock.
	ReadAll(ctx context.Context) ([]domain.ClockEvent, error)
	// Replace atomically overwrites the whole log.
	Replace(ctx context.Context, events []domain.ClockEvent) error
	// Update runs fn under the lock and persists its result. An error from
	// fn aborts the cycle without writing.
	Update(ctx context.Context, fn UpdateFunc) error
	// Ping reports whether the backing medium is reachable.
	Ping(ctx context.Context) error
}
