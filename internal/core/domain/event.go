package domain

import (
	"fmt"
	"time"
)

// Action is the kind of clock event a worker records.
type Action string

const (
	ActionClockIn  Action = "clock-in"
	ActionClockOut Action = "clock-out"
)

// ParseAction validates a raw action string.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionClockIn, ActionClockOut:
		return a, nil
	default:
		return "", fmt.Errorf("%w: action must be %q or %q", ErrInvalidInput, ActionClockIn, ActionClockOut)
	}
}

// ClockEvent is a single immutable entry of the event log.
//
// WorkerName is a snapshot of the roster name at the time of the event, so
// history keeps reading correctly after a worker is renamed or removed.
type ClockEvent struct {
	ID         string    `json:"id"`
	WorkerID   string    `json:"workerId"`
	WorkerName string    `json:"workerName"`
	Action     Action    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
}

// Malformed reports whether the event was loaded from a record whose
// timestamp could not be parsed.
func (e ClockEvent) Malformed() bool {
	return e.Timestamp.IsZero()
}
