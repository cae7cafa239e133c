// Package queue holds batch recommendation jobs waiting for a worker.
//
// The queue is an in-memory bounded channel; enqueue never blocks so callers
// can turn a full queue into backpressure.
package queue

import (
	"context"
	"sync"

	"github.com/okian/staffwise/internal/domain/types"
	"github.com/okian/staffwise/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Result is the outcome of one job.
type Result struct {
	JobID     string
	Index     int
	ProjectID int64
	Response  types.Response
	Err       error
}

// Job asks for the recommendations of one project. Reply must have room for
// the result; workers never block on it.
type Job struct {
	ID        string
	Index     int
	ProjectID int64
	Reply     chan<- Result

	// Ctx is the submitter's context. A job whose Ctx is done by the time a
	// worker picks it up is answered with the context error. Nil means the
	// job runs under the worker's context only.
	Ctx context.Context
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. It returns ErrFull or ErrClosed when the job was
	// not accepted.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns the channel workers receive jobs from. The channel is
	// closed when the queue is closed.
	Dequeue() <-chan Job

	// Len returns the current number of queued jobs.
	Len() int

	// Cap returns the configured capacity.
	Cap() int

	// Close stops accepting jobs. Jobs already queued remain readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrClosed
	}

	select {
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return ctx.Err()
	default:
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.jobs))
		return nil
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return ErrFull
	}
}

// Dequeue returns the receive side of the job channel.
func (q *InMemoryQueue) Dequeue() <-chan Job {
	return q.jobs
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len() int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	return size
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close gracefully shuts down the queue.
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

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
