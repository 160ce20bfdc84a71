package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventhub/events-api/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deleteTimeout  = 30 * time.Second
)

// Deleter removes a stored blob by its public URL.
type Deleter interface {
	Delete(ctx context.Context, url string) error
}

// Dispatcher removes replaced or orphaned images in the background. URLs
// are sharded across a fixed set of workers by hash so repeated deletions
// of the same object are serialized.
type Dispatcher struct {
	workers []chan string
	store   Deleter
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store Deleter, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Deletions outlive ctx cancellation;
// call Stop to drain and end the workers.
func (d *Dispatcher) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(base, i, ch)
	}
}

// Enqueue schedules the deletion of url. It never blocks and reports false
// when the worker queue is full or the dispatcher is stopped.
func (d *Dispatcher) Enqueue(url string) bool {
	if url == "" {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.CleanupTotal.WithLabelValues("dropped").Inc()
		return false
	}
	idx := d.shardIndex(url)
	select {
	case d.workers[idx] <- url:
		metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.CleanupTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("url", url).Int("worker_id", idx).Msg("cleanup queue full, deletion dropped")
		return false
	}
}

// Stop rejects new deletions, waits for queued ones to finish and returns.
// It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a URL deterministically to a worker index.
func (d *Dispatcher) shardIndex(url string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(url))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	depth := metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(id))
	for url := range ch {
		depth.Dec()
		d.process(ctx, id, url)
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, url string) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	err := d.store.Delete(ctx, url)
	metrics.CleanupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CleanupTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("url", url).
			Int("worker_id", id).
			Msg("image cleanup failed")
		return
	}
	metrics.CleanupTotal.WithLabelValues("ok").Inc()
}
