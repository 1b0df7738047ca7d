package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brightshift/clockin-system/internal/api/metrics"
	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
	"github.com/brightshift/clockin-system/internal/core/presence"
)

// DefaultHistoryDays is the window used by History when none is requested.
const DefaultHistoryDays = 10

// DedupStore abstracts the idempotency store (Redis or in-memory).
type DedupStore interface {
	Lookup(ctx context.Context, key string) (eventID string, found bool, err error)
	Remember(ctx context.Context, key, eventID string) error
}

// ClockOptions tunes a ClockService. Zero values fall back to defaults.
type ClockOptions struct {
	MonthsToKeep int
	// Location is used to interpret YYYY-MM export filters.
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
}

// ClockService implements ports.ClockService on top of an EventLog.
type ClockService struct {
	retention
	roster   ports.RosterRepository
	dedup    DedupStore
	location *time.Location
	newID    func() string
}

// NewClockService returns a ClockService. dedup may be nil.
func NewClockService(
	events ports.EventLog,
	roster ports.RosterRepository,
	dedup DedupStore,
	opts ClockOptions,
	log zerolog.Logger,
) *ClockService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = newEventID
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &ClockService{
		retention: retention{events: events, monthsToKeep: opts.MonthsToKeep, now: opts.Now, log: log},
		roster:    roster,
		dedup:     dedup,
		location:  opts.Location,
		newID:     opts.NewID,
	}
}

// newEventID returns a time-ordered random UUID.
func newEventID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Clock records one clock action for a worker. Status resolution, pruning
// and the append all happen inside a single locked cycle, so concurrent
// toggles for the same worker still alternate.
func (s *ClockService) Clock(ctx context.Context, in ports.ClockInput) (*ports.ClockResult, error) {
	workerID := strings.TrimSpace(in.WorkerID)
	if workerID == "" {
		metrics.ClockErrorsTotal.WithLabelValues("invalid_input").Inc()
		return nil, fmt.Errorf("clock: %w: worker id is required", domain.ErrInvalidInput)
	}

	var explicit domain.Action
	if raw := strings.TrimSpace(in.Action); raw != "" {
		action, err := domain.ParseAction(raw)
		if err != nil {
			metrics.ClockErrorsTotal.WithLabelValues("invalid_input").Inc()
			return nil, fmt.Errorf("clock: %w", err)
		}
		explicit = action
	}

	worker, err := s.roster.FindByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkerNotFound) {
			metrics.ClockErrorsTotal.WithLabelValues("worker_not_found").Inc()
		}
		return nil, fmt.Errorf("clock: %w", err)
	}

	// 1. Idempotency check: a known key replays the original event.
	if in.IdempotencyKey != "" {
		res, err := s.replay(ctx, in.IdempotencyKey, worker.ID)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}

	// 2. Prune, derive and append under the lock.
	var (
		recorded  domain.ClockEvent
		discarded int
	)
	err = s.events.Update(ctx, func(current []domain.ClockEvent) ([]domain.ClockEvent, error) {
		now := s.now().UTC()
		pruned := presence.Prune(current, s.monthsToKeep, now)
		discarded = pruned.Discarded

		action := explicit
		if action == "" {
			action = presence.NextAction(presence.StatusOf(worker.ID, pruned.Retained).Status)
		}

		recorded = domain.ClockEvent{
			ID:         s.newID(),
			WorkerID:   worker.ID,
			WorkerName: worker.Name,
			Action:     action,
			Timestamp:  now,
		}
		return append(pruned.Retained, recorded), nil
	})
	if err != nil {
		metrics.ClockErrorsTotal.WithLabelValues("storage_unavailable").Inc()
		return nil, fmt.Errorf("clock: %w", err)
	}

	if discarded > 0 {
		metrics.EventsPrunedTotal.Add(float64(discarded))
	}
	metrics.ClockEventsTotal.WithLabelValues(string(recorded.Action)).Inc()

	// 3. Remember the key after the write (non-fatal on failure).
	if in.IdempotencyKey != "" && s.dedup != nil {
		if err := s.dedup.Remember(ctx, in.IdempotencyKey, recorded.ID); err != nil {
			s.log.Warn().Err(err).Str("worker_id", worker.ID).Msg("failed to remember idempotency key")
		}
	}

	s.log.Info().
		Str("worker_id", worker.ID).
		Str("action", string(recorded.Action)).
		Str("event_id", recorded.ID).
		Msg("clock event recorded")

	return &ports.ClockResult{
		Event:  recorded,
		Status: presence.StatusOf(worker.ID, []domain.ClockEvent{recorded}),
	}, nil
}

// replay returns the previously recorded result for key, or nil when the key
// is unknown. Dedup store failures are logged and the request proceeds.
func (s *ClockService) replay(ctx context.Context, key, workerID string) (*ports.ClockResult, error) {
	if s.dedup == nil {
		return nil, nil
	}

	eventID, found, err := s.dedup.Lookup(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("worker_id", workerID).Msg("dedup lookup failed, processing anyway")
		return nil, nil
	}
	if !found {
		metrics.ClockDedupTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}

	events, err := s.events.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("clock: replay: %w", err)
	}
	for _, e := range events {
		if e.ID != eventID {
			continue
		}
		if e.WorkerID != workerID {
			return nil, fmt.Errorf("clock: %w: idempotency key already used for another worker", domain.ErrInvalidInput)
		}
		metrics.ClockDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Str("worker_id", workerID).Str("event_id", eventID).Msg("duplicate clock request replayed")
		return &ports.ClockResult{
			Event:    e,
			Status:   presence.StatusOf(workerID, events),
			Replayed: true,
		}, nil
	}

	// The original event was pruned; treat the key as new.
	metrics.ClockDedupTotal.WithLabelValues("miss").Inc()
	return nil, nil
}

// Statuses lists the roster with each worker's derived status.
func (s *ClockService) Statuses(ctx context.Context) ([]ports.WorkerStatus, error) {
	workers, err := s.roster.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("statuses: %w", err)
	}
	events, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("statuses: %w", err)
	}

	out := make([]ports.WorkerStatus, 0, len(workers))
	for _, w := range workers {
		out = append(out, ports.WorkerStatus{Worker: w, DerivedStatus: presence.StatusOf(w.ID, events)})
	}
	return out, nil
}

// History returns the worker's events within the last days days.
func (s *ClockService) History(ctx context.Context, workerID string, days int) ([]domain.ClockEvent, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	worker, err := s.roster.FindByID(ctx, strings.TrimSpace(workerID))
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	events, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return presence.HistoryOf(worker.ID, events, s.now().AddDate(0, 0, -days)), nil
}

// Export returns the pruned log sorted by timestamp, limited to month when
// it is non-empty.
func (s *ClockService) Export(ctx context.Context, month string) ([]domain.ClockEvent, error) {
	var start, end time.Time
	month = strings.TrimSpace(month)
	if month != "" {
		var err error
		if start, end, err = presence.ParseMonth(month, s.location); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}

	events, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	if month != "" {
		return presence.FilterRange(events, start, end), nil
	}
	out := make([]domain.ClockEvent, len(events))
	copy(out, events)
	presence.SortChronological(out)
	return out, nil
}

// Compact applies the retention horizon to the stored log.
func (s *ClockService) Compact(ctx context.Context) (int, error) {
	return s.compact(ctx)
}
