package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

// memLog is a mutex-guarded EventLog that mirrors the locking contract of the
// real stores.
type memLog struct {
	mu        sync.Mutex
	events    []domain.ClockEvent
	updateErr error
	readErr   error
	updates   int
}

func (l *memLog) Append(ctx context.Context, e domain.ClockEvent) error {
	return l.Update(ctx, func(cur []domain.ClockEvent) ([]domain.ClockEvent, error) {
		return append(cur, e), nil
	})
}

func (l *memLog) ReadAll(_ context.Context) ([]domain.ClockEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readErr != nil {
		return nil, l.readErr
	}
	out := make([]domain.ClockEvent, len(l.events))
	copy(out, l.events)
	return out, nil
}

func (l *memLog) Replace(ctx context.Context, events []domain.ClockEvent) error {
	return l.Update(ctx, func([]domain.ClockEvent) ([]domain.ClockEvent, error) {
		return events, nil
	})
}

func (l *memLog) Update(_ context.Context, fn ports.UpdateFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.updateErr != nil {
		return l.updateErr
	}
	cur := make([]domain.ClockEvent, len(l.events))
	copy(cur, l.events)
	next, err := fn(cur)
	if err != nil {
		return err
	}
	l.events = next
	l.updates++
	return nil
}

func (l *memLog) Ping(context.Context) error { return nil }

func (l *memLog) snapshot() []domain.ClockEvent {
	out, _ := l.ReadAll(context.Background())
	return out
}

type stubRosterRepo struct {
	mu      sync.Mutex
	workers []domain.Worker
	listErr error
}

func newStubRosterRepo(workers ...domain.Worker) *stubRosterRepo {
	return &stubRosterRepo{workers: workers}
}

func (r *stubRosterRepo) List(_ context.Context) ([]domain.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Worker, len(r.workers))
	copy(out, r.workers)
	return out, nil
}

func (r *stubRosterRepo) FindByID(_ context.Context, id string) (*domain.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workers {
		if w.ID == id {
			clone := w
			return &clone, nil
		}
	}
	return nil, domain.ErrWorkerNotFound
}

func (r *stubRosterRepo) Create(_ context.Context, w domain.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.workers {
		if existing.ID == w.ID || SameName(existing.Name, w.Name) {
			return domain.ErrWorkerExists
		}
	}
	r.workers = append(r.workers, w)
	return nil
}

func (r *stubRosterRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, w := range r.workers {
		if w.ID == id {
			r.workers = append(r.workers[:i], r.workers[i+1:]...)
			return nil
		}
	}
	return domain.ErrWorkerNotFound
}

type stubDedup struct {
	mu        sync.Mutex
	keys      map[string]string
	lookupErr error
}

func newStubDedup() *stubDedup {
	return &stubDedup{keys: make(map[string]string)}
}

func (d *stubDedup) Lookup(_ context.Context, key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lookupErr != nil {
		return "", false, d.lookupErr
	}
	id, ok := d.keys[key]
	return id, ok, nil
}

func (d *stubDedup) Remember(_ context.Context, key, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[key] = eventID
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

// fakeClock returns a now function that advances one second per call.
func fakeClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(time.Second)
		return t
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "evt-" + string(rune('0'+n/100%10)) + string(rune('0'+n/10%10)) + string(rune('0'+n%10))
	}
}

var (
	alice = domain.Worker{ID: "alice", Name: "Alice"}
	bob   = domain.Worker{ID: "bob", Name: "Bob"}
)
