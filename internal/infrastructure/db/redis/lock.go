package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

const (
	defaultLockTTL = 30 * time.Second
	lockMinBackoff = 5 * time.Millisecond
	lockMaxBackoff = 200 * time.Millisecond
)

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a single-key mutual exclusion lock shared by every replica that
// talks to the same Redis.
type Lock struct {
	client  *redis.Client
	key     string
	ttl     time.Duration
	timeout time.Duration
}

// NewLock returns a lock on key. ttl bounds how long a crashed holder can
// keep the lock; timeout bounds how long Acquire waits.
func NewLock(client *redis.Client, key string, ttl, timeout time.Duration) *Lock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Lock{client: client, key: key, ttl: ttl, timeout: timeout}
}

// Acquire waits for the lock. It returns domain.ErrStorageUnavailable when
// the lock cannot be taken within the timeout.
func (l *Lock) Acquire(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	token := uuid.NewString()
	backoff := lockMinBackoff
	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: lock %s: %v", domain.ErrStorageUnavailable, l.key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: lock %s: %v", domain.ErrStorageUnavailable, l.key, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, lockMaxBackoff)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{l.key}, token).Err()
	}, nil
}
