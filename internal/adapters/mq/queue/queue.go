// Package queue carries refresh jobs from the HTTP adapter to the
// worker pool. The in-memory bounded queue rejects rather than blocks
// when full so callers can surface backpressure.
package queue

import (
	"context"
	"sync"

	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/scoring"
	"github.com/entraide/matchd/pkg/metrics"
)

const defaultCapacity = 1024

// RefreshJob asks the workers to regenerate recommendations and alerts
// for one user against a task pool.
type RefreshJob struct {
	JobID    string
	User     *profile.UserProfile
	Tasks    []*profile.TaskProfile
	Limit    int
	RadiusKm float64
	Weights  scoring.Weights
}

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds a job. Returns false when the queue is full or
	// closed and the job was not accepted.
	Enqueue(ctx context.Context, job RefreshJob) bool

	// Dequeue returns a channel delivering jobs as they arrive. The
	// channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan RefreshJob

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close stops the queue. Enqueued jobs already buffered still
	// drain through Dequeue.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	jobs     chan RefreshJob
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan RefreshJob, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a job without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, job RefreshJob) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}
	select {
	case q.jobs <- job:
		metrics.UpdateQueueSize(len(q.jobs))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		metrics.RecordQueueEnqueueError()
		return false
	}
}

// Dequeue returns a channel delivering jobs until the queue closes or
// the context ends.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan RefreshJob {
	out := make(chan RefreshJob)
	go func() {
		defer close(out)
		for job := range q.jobs {
			select {
			case out <- job:
				metrics.UpdateQueueSize(len(q.jobs))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops accepting jobs and lets consumers drain.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
