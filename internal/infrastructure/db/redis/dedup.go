package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupTTL = 24 * time.Hour

// DedupStore remembers which event an idempotency key produced.
// Key format: clockin:idem:<key>
type DedupStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDedupStore wraps client. Keys expire after ttl (24h when ttl <= 0).
func NewDedupStore(client *redis.Client, ttl time.Duration) *DedupStore {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &DedupStore{client: client, ttl: ttl}
}

// Lookup returns the event id recorded for key, if any.
func (d *DedupStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	id, err := d.client.Get(ctx, d.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("dedup lookup: %w", err)
	}
	return id, true, nil
}

// Remember records eventID for key. An existing entry is kept.
func (d *DedupStore) Remember(ctx context.Context, key, eventID string) error {
	if err := d.client.SetNX(ctx, d.key(key), eventID, d.ttl).Err(); err != nil {
		return fmt.Errorf("dedup remember: %w", err)
	}
	return nil
}

func (d *DedupStore) key(key string) string {
	return "clockin:idem:" + key
}
