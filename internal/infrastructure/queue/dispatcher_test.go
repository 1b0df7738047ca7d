package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightshift/clockin-system/internal/core/ports"
)

type recordingClocker struct {
	mu    sync.Mutex
	seen  map[string][]string
	total int
	done  chan struct{}
	want  int
}

func newRecordingClocker(want int) *recordingClocker {
	return &recordingClocker{seen: make(map[string][]string), done: make(chan struct{}), want: want}
}

func (c *recordingClocker) Clock(_ context.Context, in ports.ClockInput) (*ports.ClockResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[in.WorkerID] = append(c.seen[in.WorkerID], in.IdempotencyKey)
	c.total++
	if c.total == c.want {
		close(c.done)
	}
	if in.Action == "fail" {
		return nil, errors.New("boom")
	}
	return &ports.ClockResult{}, nil
}

func TestDispatcher_PreservesPerWorkerOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batch := []ports.ClockInput{
		{WorkerID: "ana", IdempotencyKey: "1"},
		{WorkerID: "bob", IdempotencyKey: "2"},
		{WorkerID: "ana", IdempotencyKey: "3", Action: "fail"},
		{WorkerID: "carl", IdempotencyKey: "4"},
		{WorkerID: "ana", IdempotencyKey: "5"},
		{WorkerID: "bob", IdempotencyKey: "6"},
	}
	clocker := newRecordingClocker(len(batch))
	d := NewDispatcher(3, clocker, zerolog.Nop())
	d.Start(ctx)

	n, err := d.EnqueueBatch(ctx, batch)
	if err != nil || n != len(batch) {
		t.Fatalf("EnqueueBatch = %d, %v", n, err)
	}

	select {
	case <-clocker.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for batch to drain")
	}

	clocker.mu.Lock()
	defer clocker.mu.Unlock()
	want := map[string][]string{"ana": {"1", "3", "5"}, "bob": {"2", "6"}, "carl": {"4"}}
	for worker, keys := range want {
		got := clocker.seen[worker]
		if len(got) != len(keys) {
			t.Fatalf("%s: expected %v, got %v", worker, keys, got)
		}
		for i := range keys {
			if got[i] != keys[i] {
				t.Fatalf("%s: expected %v, got %v", worker, keys, got)
			}
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, nil, zerolog.Nop())
	first := d.shardIndex("ana")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("ana"); got != first {
			t.Fatalf("shard changed: %d != %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard out of range: %d", first)
	}
}

// slowClocker counts calls and sleeps on each one, so requests are still
// queued when Close is called.
type slowClocker struct {
	mu        sync.Mutex
	processed int
	ctxErr    error
}

func (c *slowClocker) Clock(ctx context.Context, _ ports.ClockInput) (*ports.ClockResult, error) {
	time.Sleep(time.Millisecond)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed++
	if err := ctx.Err(); err != nil {
		c.ctxErr = err
	}
	return &ports.ClockResult{}, nil
}

func TestDispatcher_CloseDrainsQueuedRequests(t *testing.T) {
	clocker := &slowClocker{}
	d := NewDispatcher(1, clocker, zerolog.Nop())
	d.Start(context.Background())

	batch := make([]ports.ClockInput, 50)
	for i := range batch {
		batch[i] = ports.ClockInput{WorkerID: "ana"}
	}
	n, err := d.EnqueueBatch(context.Background(), batch)
	if err != nil || n != len(batch) {
		t.Fatalf("EnqueueBatch = %d, %v", n, err)
	}

	d.Close()
	d.Wait()

	clocker.mu.Lock()
	defer clocker.mu.Unlock()
	if clocker.processed != len(batch) {
		t.Fatalf("expected %d processed, got %d", len(batch), clocker.processed)
	}
	if clocker.ctxErr != nil {
		t.Fatalf("clock called with a done context: %v", clocker.ctxErr)
	}
}

func TestDispatcher_EnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(2, newRecordingClocker(-1), zerolog.Nop())
	d.Start(context.Background())
	d.Close()
	d.Close()

	if err := d.Enqueue(context.Background(), ports.ClockInput{WorkerID: "ana"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("workers did not stop")
	}
}
