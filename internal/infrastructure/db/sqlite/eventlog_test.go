package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// createTestStore opens a fresh database in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "clockin.db"), 5*time.Second, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func event(id, worker string, action domain.Action, ts time.Time) domain.ClockEvent {
	return domain.ClockEvent{ID: id, WorkerID: worker, WorkerName: worker, Action: action, Timestamp: ts}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clockin.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path, time.Second, zerolog.Nop())
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestEventLog_AppendAndReadAll(t *testing.T) {
	ctx := context.Background()
	l := NewEventLog(createTestStore(t))
	ts := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	events, err := l.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, l.Append(ctx, event("b", "ana", domain.ActionClockIn, ts)))
	require.NoError(t, l.Append(ctx, event("a", "ana", domain.ActionClockOut, ts.Add(-time.Hour))))

	events, err = l.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ID, "storage order is append order, not id or time order")
	assert.Equal(t, "a", events[1].ID)
	assert.True(t, events[0].Timestamp.Equal(ts))
}

func TestEventLog_ReplaceReadAllRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := NewEventLog(createTestStore(t))
	ts := time.Date(2026, 10, 19, 9, 0, 0, 5, time.UTC)

	original := []domain.ClockEvent{
		event("a", "ana", domain.ActionClockIn, ts),
		event("b", "bob", domain.ActionClockIn, ts),
		{ID: "c", WorkerID: "bob", Action: domain.ActionClockOut},
	}
	require.NoError(t, l.Replace(ctx, original))

	first, err := l.ReadAll(ctx)
	require.NoError(t, err)
	require.NoError(t, l.Replace(ctx, first))
	second, err := l.ReadAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, second[2].Malformed())
}

func TestEventLog_UpdateAppliesDiff(t *testing.T) {
	ctx := context.Background()
	l := NewEventLog(createTestStore(t))
	ts := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	require.NoError(t, l.Replace(ctx, []domain.ClockEvent{
		event("a", "ana", domain.ActionClockIn, ts),
		event("b", "ana", domain.ActionClockOut, ts),
	}))

	err := l.Update(ctx, func(current []domain.ClockEvent) ([]domain.ClockEvent, error) {
		return append(current[1:], event("c", "ana", domain.ActionClockIn, ts)), nil
	})
	require.NoError(t, err)

	events, err := l.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ID)
	assert.Equal(t, "c", events[1].ID)
}

func TestEventLog_UpdateFuncErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	l := NewEventLog(createTestStore(t))
	require.NoError(t, l.Append(ctx, event("a", "ana", domain.ActionClockIn, time.Now())))

	boom := errors.New("boom")
	err := l.Update(ctx, func(current []domain.ClockEvent) ([]domain.ClockEvent, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	events, err := l.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventLog_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	l := NewEventLog(createTestStore(t))

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := l.Append(ctx, event(fmt.Sprintf("evt-%02d", i), "ana", domain.ActionClockIn, time.Now())); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	events, err := l.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, events, n)
}

func TestEventLog_DuplicateIDIsStorageError(t *testing.T) {
	ctx := context.Background()
	l := NewEventLog(createTestStore(t))
	require.NoError(t, l.Append(ctx, event("a", "ana", domain.ActionClockIn, time.Now())))

	err := l.Append(ctx, event("a", "ana", domain.ActionClockOut, time.Now()))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
