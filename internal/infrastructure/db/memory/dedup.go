// Package memory provides process-local fallbacks for stores that are
// normally backed by Redis.
package memory

import (
	"context"
	"sync"
	"time"
)

const defaultTTL = 24 * time.Hour

type dedupEntry struct {
	eventID   string
	expiresAt time.Time
}

// DedupStore is an in-process idempotency store used when no Redis is
// configured. Entries expire after ttl.
type DedupStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]dedupEntry
}

func NewDedupStore(ttl time.Duration) *DedupStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &DedupStore{ttl: ttl, now: time.Now, entries: make(map[string]dedupEntry)}
}

func (d *DedupStore) Lookup(_ context.Context, key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[key]
	if !ok {
		return "", false, nil
	}
	if !d.now().Before(e.expiresAt) {
		delete(d.entries, key)
		return "", false, nil
	}
	return e.eventID, true, nil
}

// Remember records eventID for key unless a live entry already exists.
func (d *DedupStore) Remember(_ context.Context, key, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if e, ok := d.entries[key]; ok && now.Before(e.expiresAt) {
		return nil
	}
	d.entries[key] = dedupEntry{eventID: eventID, expiresAt: now.Add(d.ttl)}
	d.sweep(now)
	return nil
}

// sweep drops expired entries so the map stays bounded by the request rate.
func (d *DedupStore) sweep(now time.Time) {
	for k, e := range d.entries {
		if !now.Before(e.expiresAt) {
			delete(d.entries, k)
		}
	}
}
