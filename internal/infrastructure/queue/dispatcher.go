package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightshift/clockin-system/internal/api/metrics"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrClosed is returned by Enqueue once Close has been called.
var ErrClosed = errors.New("dispatcher closed")

// Clocker is the subset of ports.ClockService the dispatcher drives.
type Clocker interface {
	Clock(ctx context.Context, in ports.ClockInput) (*ports.ClockResult, error)
}

// Dispatcher routes batch clock requests to a fixed set of workers using
// consistent hashing on the worker id, so requests for one worker are
// processed in submission order.
type Dispatcher struct {
	workers []chan ports.ClockInput
	service Clocker
	log     zerolog.Logger
	wg      sync.WaitGroup

	// mu guards closed and the channel sends against Close.
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service Clocker, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ClockInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ClockInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. ctx is passed to every Clock call;
// workers return only after Close, once their queues are empty.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Close stops accepting requests. Requests already queued are still
// processed; call Wait to block until they are.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue sends a request to the worker responsible for its worker id. It
// blocks while that worker's buffer is full, until ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, in ports.ClockInput) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	idx := d.shardIndex(in.WorkerID)
	select {
	case d.workers[idx] <- in:
		metrics.BatchQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnqueueBatch enqueues requests in order, preserving per-worker ordering.
// It returns the number of accepted requests.
func (d *Dispatcher) EnqueueBatch(ctx context.Context, batch []ports.ClockInput) (int, error) {
	for i, in := range batch {
		if err := d.Enqueue(ctx, in); err != nil {
			return i, err
		}
	}
	return len(batch), nil
}

// shardIndex maps a worker id deterministically to a worker index.
func (d *Dispatcher) shardIndex(workerID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(workerID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ClockInput) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for in := range ch {
		metrics.BatchQueueDepth.WithLabelValues(label).Dec()

		started := time.Now()
		res, err := d.service.Clock(ctx, in)
		result := "ok"
		if err != nil {
			result = "error"
			d.log.Error().Err(err).
				Str("worker_id", in.WorkerID).
				Int("shard", id).
				Msg("batch clock failed")
		} else if res.Replayed {
			d.log.Debug().Str("worker_id", in.WorkerID).Msg("batch clock replayed")
		}
		metrics.BatchProcessingDuration.WithLabelValues(result).Observe(time.Since(started).Seconds())
	}
}
