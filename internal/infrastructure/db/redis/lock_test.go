package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// connectForTest skips unless CLOCKIN_TEST_REDIS_ADDR points at a disposable
// Redis instance.
func connectForTest(t *testing.T) *Config {
	t.Helper()
	addr := os.Getenv("CLOCKIN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CLOCKIN_TEST_REDIS_ADDR not set")
	}
	return &Config{Addr: addr, DB: 15}
}

func TestLock_ExcludesSecondHolder(t *testing.T) {
	cfg := connectForTest(t)
	ctx := context.Background()
	client, err := Connect(ctx, *cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	key := "clockin:test:lock:" + t.Name()
	first := NewLock(client, key, 5*time.Second, time.Second)
	second := NewLock(client, key, 5*time.Second, 100*time.Millisecond)

	release, err := first.Acquire(ctx)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := second.Acquire(ctx); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable while held, got %v", err)
	}

	release()
	release2, err := second.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestDedupStore_RememberAndLookup(t *testing.T) {
	cfg := connectForTest(t)
	ctx := context.Background()
	client, err := Connect(ctx, *cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	store := NewDedupStore(client, time.Minute)
	key := "test-" + t.Name()
	defer client.Del(ctx, store.key(key))

	if _, found, err := store.Lookup(ctx, key); err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}
	if err := store.Remember(ctx, key, "evt-1"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := store.Remember(ctx, key, "evt-2"); err != nil {
		t.Fatalf("second remember: %v", err)
	}
	id, found, err := store.Lookup(ctx, key)
	if err != nil || !found || id != "evt-1" {
		t.Fatalf("expected evt-1, got %q found=%v err=%v", id, found, err)
	}
}

func TestDedupStore_KeyFormat(t *testing.T) {
	store := NewDedupStore(nil, 0)
	if got := store.key("abc"); got != "clockin:idem:abc" {
		t.Fatalf("unexpected key %q", got)
	}
	if store.ttl != defaultDedupTTL {
		t.Fatalf("expected default ttl, got %s", store.ttl)
	}
}
