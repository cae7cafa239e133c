// Package worker runs batch recommendation jobs pulled from the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/staffwise/internal/adapters/mq/queue"
	"github.com/okian/staffwise/internal/domain/types"
	"github.com/okian/staffwise/pkg/logger"
	"github.com/okian/staffwise/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Recommender produces the recommendations of one project.
type Recommender interface {
	Recommend(ctx context.Context, projectID int64) (types.Response, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan queue.Job
}

// Worker processes jobs and replies with their results.
type Worker interface {
	// Run processes jobs until the queue is closed or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing jobs.
type InMemoryWorker struct {
	queue       Queue
	recommender Recommender
	name        string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}
	stopOnce atomic.Bool

	processed *atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, r Recommender, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:       q,
		recommender: r,
		name:        "worker",
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		processed:   new(atomic.Int64),
		logger:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. Canceling ctx does not stop the loop; jobs
// received afterwards are answered with the context error, so every job
// taken off the queue gets a reply. Run returns when the queue is closed
// and empty, or after Shutdown once the queued jobs have been drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-w.shutdown:
			w.drain(ctx, jobs)
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

func (w *InMemoryWorker) drain(ctx context.Context, jobs <-chan queue.Job) {
	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		default:
			return
		}
	}
}

// Shutdown gracefully stops the worker. Jobs still queued are answered first.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	if w.stopOnce.CompareAndSwap(false, true) {
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns how many jobs this worker has completed.
func (w *InMemoryWorker) Processed() int64 {
	return w.processed.Load()
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()

	jobCtx, cancel := jobContext(ctx, job)
	defer cancel()

	var (
		resp types.Response
		err  error
	)
	if err = jobCtx.Err(); err != nil {
		resp = types.Empty()
		w.logger.Debug(ctx, "skipping canceled job",
			logger.String("job_id", job.ID),
			logger.Error(err),
		)
		err = fmt.Errorf("project %d: %w", job.ProjectID, err)
	} else if resp, err = w.recommender.Recommend(jobCtx, job.ProjectID); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "recommendation job failed",
			logger.String("job_id", job.ID),
			logger.Int64("project_id", job.ProjectID),
			logger.Error(err),
		)
		err = fmt.Errorf("project %d: %w", job.ProjectID, err)
	}
	w.processed.Add(1)

	if job.Reply == nil {
		return
	}
	res := queue.Result{
		JobID:     job.ID,
		Index:     job.Index,
		ProjectID: job.ProjectID,
		Response:  resp,
		Err:       err,
	}
	select {
	case job.Reply <- res:
	default:
		w.logger.Warn(ctx, "dropping result, reply channel full", logger.String("job_id", job.ID))
	}
}

// jobContext scopes a job to its own context, canceled as well when the
// pool context ends.
func jobContext(ctx context.Context, job queue.Job) (context.Context, context.CancelFunc) {
	if job.Ctx == nil || ctx.Err() != nil {
		return ctx, func() {}
	}
	jobCtx, cancel := context.WithCancel(job.Ctx)
	stop := context.AfterFunc(ctx, cancel)
	return jobCtx, func() {
		stop()
		cancel()
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive count defaults to a
// multiple of the CPU count.
func NewPool(workerCount int, q Queue, r Recommender, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, r, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns the total number of jobs completed by the pool.
func (p *Pool) Processed() int64 {
	var total int64
	for _, w := range p.workers {
		total += w.Processed()
	}
	return total
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, then stops all workers. Jobs accepted before the
// queue closed are answered before the workers exit.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
