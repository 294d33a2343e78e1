// Package worker runs chart refresh jobs off the refresh queue.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/skillmatrix/internal/adapters/mq/queue"
	"github.com/okian/skillmatrix/pkg/logger"
	"github.com/okian/skillmatrix/pkg/metrics"
)

const (
	defaultWorkers      = 2
	poolShutdownTimeout = 5 * time.Second
)

// Refresher rebuilds the chart bound to a canvas.
type Refresher interface {
	Refresh(ctx context.Context, canvas string) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context, canvas string) error

// Refresh calls f.
func (f RefreshFunc) Refresh(ctx context.Context, canvas string) error { return f(ctx, canvas) }

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Pending forgets a canvas once its refresh starts, so that requests made
// during the refresh schedule a new one.
type Pending interface {
	Unrecord(ctx context.Context, key string)
}

// Worker processes refresh jobs.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	refresher Refresher
	pending   Pending
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, r Refresher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		refresher: r,
		name:      "refresh-worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop until ctx is done, Shutdown is called or the
// queue is closed.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "chart refresh failed", logger.String("canvas", job.Canvas), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker and waits for the current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
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

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error {
	if w.pending != nil {
		w.pending.Unrecord(ctx, job.Canvas)
	}
	start := time.Now()
	if err := w.refresher.Refresh(ctx, job.Canvas); err != nil {
		metrics.RecordRefreshError()
		return fmt.Errorf("refresh %s: %w", job.Canvas, err)
	}
	w.logger.Debug(ctx, "chart refreshed",
		logger.String("canvas", job.Canvas),
		logger.Duration("queued", start.Sub(job.RequestedAt)),
		logger.Duration("took", time.Since(start)))
	return nil
}

// Pool manages several workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. opts apply to every worker.
func NewPool(workerCount int, q Queue, r Refresher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkers
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Nop(),
	}
	probe := &InMemoryWorker{logger: p.logger}
	for _, opt := range opts {
		opt(probe)
	}
	p.logger = probe.logger.Named("refresh-pool")

	for i := range p.workers {
		wopts := append([]Option{}, opts...)
		wopts = append(wopts, WithName("refresh-worker-"+strconv.Itoa(i)))
		p.workers[i] = NewInMemoryWorker(q, r, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, if it can be closed, and waits for every
// worker to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
