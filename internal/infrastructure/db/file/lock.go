package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/brightshift/clockin-system/internal/api/metrics"
	"github.com/brightshift/clockin-system/internal/core/domain"
)

const (
	defaultLockTimeout = 5 * time.Second
	minBackoff         = 2 * time.Millisecond
	maxBackoff         = 100 * time.Millisecond
)

// fileLock serialises writers both inside the process (sem) and across
// processes (flock on a sidecar file). The sidecar is never replaced, so the
// advisory lock survives the atomic rename of the data file.
type fileLock struct {
	path    string
	timeout time.Duration
	sem     chan struct{}
}

func newFileLock(path string, timeout time.Duration) *fileLock {
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	return &fileLock{path: path, timeout: timeout, sem: make(chan struct{}, 1)}
}

// acquire blocks until the lock is held, the timeout elapses or ctx is done.
// The returned func releases the lock.
func (l *fileLock) acquire(ctx context.Context) (func(), error) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: lock %s: %v", domain.ErrStorageUnavailable, l.path, ctx.Err())
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		<-l.sem
		return nil, fmt.Errorf("%w: open lock file: %v", domain.ErrStorageUnavailable, err)
	}

	backoff := minBackoff
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			_ = f.Close()
			<-l.sem
			return nil, fmt.Errorf("%w: flock %s: %v", domain.ErrStorageUnavailable, l.path, err)
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			<-l.sem
			return nil, fmt.Errorf("%w: lock %s: %v", domain.ErrStorageUnavailable, l.path, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}

	metrics.StorageLockWait.WithLabelValues("file").Observe(time.Since(started).Seconds())

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
		<-l.sem
	}, nil
}
