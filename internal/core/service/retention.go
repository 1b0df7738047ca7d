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

// retention reads the full log and keeps it bounded: any read that finds
// expired events persists the pruned sequence before returning.
type retention struct {
	events       ports.EventLog
	monthsToKeep int
	now          func() time.Time
	log          zerolog.Logger
}

// load returns the pruned log in storage order.
func (r *retention) load(ctx context.Context) ([]domain.ClockEvent, error) {
	events, err := r.events.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	res := presence.Prune(events, r.monthsToKeep, r.now())
	if res.Discarded == 0 {
		return res.Retained, nil
	}

	if _, err := r.compact(ctx); err != nil {
		return nil, err
	}
	return res.Retained, nil
}

// compact prunes the log under the exclusive lock. The sequence is pruned
// again as read inside the lock so that concurrent appends survive.
func (r *retention) compact(ctx context.Context) (int, error) {
	var discarded int
	err := r.events.Update(ctx, func(current []domain.ClockEvent) ([]domain.ClockEvent, error) {
		res := presence.Prune(current, r.monthsToKeep, r.now())
		discarded = res.Discarded
		if discarded == 0 {
			return current, nil
		}
		return res.Retained, nil
	})
	if err != nil {
		return 0, fmt.Errorf("compact log: %w", err)
	}

	if discarded > 0 {
		metrics.EventsPrunedTotal.Add(float64(discarded))
		r.log.Info().Int("discarded", discarded).Int("months_to_keep", r.monthsToKeep).Msg("log pruned")
	}
	return discarded, nil
}
