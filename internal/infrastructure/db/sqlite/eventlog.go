package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brightshift/clockin-system/internal/api/metrics"
	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
	"github.com/brightshift/clockin-system/internal/core/presence"
)

// EventLog implements ports.EventLog on the clock_events table.
type EventLog struct {
	s *Store
}

var _ ports.EventLog = (*EventLog)(nil)

func NewEventLog(s *Store) *EventLog {
	return &EventLog{s: s}
}

func (l *EventLog) Append(ctx context.Context, event domain.ClockEvent) error {
	return l.s.withTx(ctx, func(tx *sql.Tx) error {
		return insertEvents(ctx, tx, []domain.ClockEvent{event})
	})
}

func (l *EventLog) ReadAll(ctx context.Context) ([]domain.ClockEvent, error) {
	return l.query(ctx, l.s.db)
}

// Replace rewrites every row, so changed fields of existing ids are kept too.
func (l *EventLog) Replace(ctx context.Context, events []domain.ClockEvent) error {
	return l.s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM clock_events`); err != nil {
			return storageErr("replace", err)
		}
		return insertEvents(ctx, tx, events)
	})
}

func (l *EventLog) Update(ctx context.Context, fn ports.UpdateFunc) error {
	return l.s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := l.query(ctx, tx)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}

		removed, added := presence.Diff(current, next)
		for _, id := range removed {
			if _, err := tx.ExecContext(ctx, `DELETE FROM clock_events WHERE id = ?`, id); err != nil {
				return storageErr("delete event", err)
			}
		}
		return insertEvents(ctx, tx, added)
	})
}

func (l *EventLog) Ping(ctx context.Context) error {
	return l.s.Ping(ctx)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (l *EventLog) query(ctx context.Context, q querier) ([]domain.ClockEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, worker_id, worker_name, action, timestamp
		FROM clock_events
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, storageErr("read events", err)
	}
	defer rows.Close()

	events := []domain.ClockEvent{}
	for rows.Next() {
		var (
			e      domain.ClockEvent
			action string
			ts     string
		)
		if err := rows.Scan(&e.ID, &e.WorkerID, &e.WorkerName, &action, &ts); err != nil {
			return nil, storageErr("scan event", err)
		}
		e.Action = domain.Action(action)
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = parsed
		} else {
			l.s.log.Warn().Err(domain.ErrMalformedRecord).Str("event_id", e.ID).Msg("unparsable timestamp, record will be pruned")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read events", err)
	}
	return events, nil
}

func insertEvents(ctx context.Context, tx *sql.Tx, events []domain.ClockEvent) error {
	if len(events) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO clock_events (id, worker_id, worker_name, action, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return storageErr("prepare insert", err)
	}
	defer stmt.Close()

	for _, e := range events {
		ts := ""
		if !e.Malformed() {
			ts = e.Timestamp.Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.WorkerID, e.WorkerName, string(e.Action), ts); err != nil {
			return storageErr(fmt.Sprintf("insert event %s", e.ID), err)
		}
	}
	return nil
}

func observeLockWait(started time.Time) {
	metrics.StorageLockWait.WithLabelValues("sqlite").Observe(time.Since(started).Seconds())
}
