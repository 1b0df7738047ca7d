// Package file stores the event log and the roster as JSON documents in a
// data directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

const (
	LogFileName    = "logs.json"
	RosterFileName = "workers.json"
)

// record is the on-disk shape of a ClockEvent. The timestamp is kept as a
// string so that a single unparsable entry does not fail the whole decode.
type record struct {
	ID         string `json:"id"`
	WorkerID   string `json:"workerId"`
	WorkerName string `json:"workerName"`
	Action     string `json:"action"`
	Timestamp  string `json:"timestamp"`
}

// EventLog implements ports.EventLog on a single JSON array file.
type EventLog struct {
	path string
	lock *fileLock
	log  zerolog.Logger
}

var _ ports.EventLog = (*EventLog)(nil)

// NewEventLog opens (creating the directory if needed) the log in dir.
func NewEventLog(dir string, lockTimeout time.Duration, log zerolog.Logger) (*EventLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, LogFileName)
	return &EventLog{
		path: path,
		lock: newFileLock(path+".lock", lockTimeout),
		log:  log.With().Str("store", "file").Logger(),
	}, nil
}

func (l *EventLog) Append(ctx context.Context, event domain.ClockEvent) error {
	return l.Update(ctx, func(current []domain.ClockEvent) ([]domain.ClockEvent, error) {
		return append(current, event), nil
	})
}

// ReadAll reads without the lock; writers replace the file atomically.
func (l *EventLog) ReadAll(_ context.Context) ([]domain.ClockEvent, error) {
	return l.read()
}

func (l *EventLog) Replace(ctx context.Context, events []domain.ClockEvent) error {
	return l.Update(ctx, func([]domain.ClockEvent) ([]domain.ClockEvent, error) {
		return events, nil
	})
}

func (l *EventLog) Update(ctx context.Context, fn ports.UpdateFunc) error {
	release, err := l.lock.acquire(ctx)
	if err != nil {
		l.log.Error().Err(err).Msg("event log lock failed")
		return err
	}
	defer release()

	var records []record
	if err := readJSON(l.path, &records); err != nil {
		return err
	}
	current := l.decodeEvents(records)
	next, err := fn(current)
	if err != nil {
		return err
	}

	if err := writeJSON(l.path, encodeEvents(next, unparsedTimestamps(records))); err != nil {
		l.log.Error().Err(err).Msg("event log write failed")
		return err
	}
	return nil
}

func (l *EventLog) Ping(_ context.Context) error {
	if _, err := os.Stat(filepath.Dir(l.path)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (l *EventLog) read() ([]domain.ClockEvent, error) {
	var records []record
	if err := readJSON(l.path, &records); err != nil {
		return nil, err
	}
	return l.decodeEvents(records), nil
}

func (l *EventLog) decodeEvents(records []record) []domain.ClockEvent {
	events := make([]domain.ClockEvent, 0, len(records))
	for _, r := range records {
		e := domain.ClockEvent{
			ID:         r.ID,
			WorkerID:   r.WorkerID,
			WorkerName: r.WorkerName,
			Action:     domain.Action(r.Action),
		}
		ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			l.log.Warn().
				Err(domain.ErrMalformedRecord).
				Str("event_id", r.ID).
				Str("timestamp", r.Timestamp).
				Msg("unparsable timestamp, record will be pruned")
		} else {
			e.Timestamp = ts
		}
		events = append(events, e)
	}
	return events
}

// unparsedTimestamps maps the id of every record whose timestamp did not
// parse to the raw string found on disk.
func unparsedTimestamps(records []record) map[string]string {
	raw := make(map[string]string)
	for _, r := range records {
		if _, err := time.Parse(time.RFC3339Nano, r.Timestamp); err != nil {
			raw[r.ID] = r.Timestamp
		}
	}
	return raw
}

// encodeEvents writes malformed events back with the raw timestamp they were
// read with, so a rewrite never changes a record it could not parse.
func encodeEvents(events []domain.ClockEvent, raw map[string]string) []record {
	records := make([]record, 0, len(events))
	for _, e := range events {
		r := record{
			ID:         e.ID,
			WorkerID:   e.WorkerID,
			WorkerName: e.WorkerName,
			Action:     string(e.Action),
		}
		if !e.Malformed() {
			r.Timestamp = e.Timestamp.Format(time.RFC3339Nano)
		} else {
			r.Timestamp = raw[e.ID]
		}
		records = append(records, r)
	}
	return records
}
