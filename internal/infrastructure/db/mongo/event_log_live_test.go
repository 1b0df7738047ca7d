package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// mutexLocker stands in for the Redis lock inside one test process.
type mutexLocker struct{ mu sync.Mutex }

func (l *mutexLocker) Acquire(context.Context) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

// createTestLog skips unless CLOCKIN_TEST_MONGO_URI points at a disposable
// replica set. Each test gets its own database, dropped on cleanup.
func createTestLog(t *testing.T) *EventLog {
	t.Helper()
	uri := os.Getenv("CLOCKIN_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CLOCKIN_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	name := fmt.Sprintf("clockin_test_%d", time.Now().UnixNano())
	client, db, err := Connect(ctx, Config{URI: uri, Database: name})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	log := NewEventLog(db, &mutexLocker{})
	require.NoError(t, log.EnsureIndexes(ctx))
	return log
}

func TestEventLog_Live_AppendPreservesOrder(t *testing.T) {
	log := createTestLog(t)
	ctx := context.Background()

	for _, e := range events("a", "b", "c") {
		require.NoError(t, log.Append(ctx, e))
	}

	got, err := log.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestEventLog_Live_ReplaceReadAllRoundTrip(t *testing.T) {
	log := createTestLog(t)
	ctx := context.Background()

	require.NoError(t, log.Replace(ctx, events("a", "b")))
	first, err := log.ReadAll(ctx)
	require.NoError(t, err)

	require.NoError(t, log.Replace(ctx, first))
	second, err := log.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEventLog_Live_UpdateAppliesDiffAndContinuesSeq(t *testing.T) {
	log := createTestLog(t)
	ctx := context.Background()
	require.NoError(t, log.Replace(ctx, events("a", "b")))

	err := log.Update(ctx, func(current []domain.ClockEvent) ([]domain.ClockEvent, error) {
		return append(current[1:], events("c")...), nil
	})
	require.NoError(t, err)

	docs, err := log.readDocs(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	assert.Equal(t, int64(2), docs[0].Seq)
	assert.Equal(t, "c", docs[1].ID)
	assert.Equal(t, int64(3), docs[1].Seq)
}

func TestEventLog_Live_UpdateFuncErrorWritesNothing(t *testing.T) {
	log := createTestLog(t)
	ctx := context.Background()
	require.NoError(t, log.Replace(ctx, events("a")))

	boom := errors.New("boom")
	err := log.Update(ctx, func([]domain.ClockEvent) ([]domain.ClockEvent, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	got, err := log.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestEventLog_Live_FailedReplaceKeepsLog(t *testing.T) {
	log := createTestLog(t)
	ctx := context.Background()
	require.NoError(t, log.Replace(ctx, events("a", "b")))

	// A duplicate id fails the insert after the delete already ran.
	err := log.Replace(ctx, events("x", "x"))
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)

	got, err := log.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestEventLog_Live_ConcurrentAppends(t *testing.T) {
	log := createTestLog(t)
	ctx := context.Background()
	const n = 20

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- log.Append(ctx, domain.ClockEvent{
				ID: fmt.Sprintf("e%02d", i), WorkerID: "ana", WorkerName: "Ana",
				Action: domain.ActionClockIn, Timestamp: time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := log.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, n)
	seen := make(map[string]struct{}, n)
	for _, e := range got {
		seen[e.ID] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func ids(events []domain.ClockEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}
