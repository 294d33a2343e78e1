package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/skillmatrix/internal/adapters/mq/queue"
	"github.com/okian/skillmatrix/internal/domain/dedupe"
	"github.com/okian/skillmatrix/pkg/logger"
	"github.com/okian/skillmatrix/pkg/metrics"
)

const defaultDelay = 300 * time.Millisecond

// Enqueuer accepts refresh jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, j queue.Job) error
}

// Scheduler delays chart refreshes and merges requests for a canvas that
// already has one scheduled or queued.
type Scheduler struct {
	queue   Enqueuer
	pending dedupe.Deduper
	clock   clockwork.Clock
	delay   time.Duration
	logger  logger.Logger

	mu     sync.Mutex
	timers map[string]clockwork.Timer
	closed bool
}

// NewScheduler creates a Scheduler. pending must be shared with the
// workers (see WithPending) so that a started refresh releases its canvas.
func NewScheduler(q Enqueuer, pending dedupe.Deduper, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		queue:   q,
		pending: pending,
		clock:   clockwork.NewRealClock(),
		delay:   defaultDelay,
		logger:  logger.Nop(),
		timers:  make(map[string]clockwork.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule requests a refresh of canvas. It reports false when the request
// was merged into one already pending or the scheduler is closed.
func (s *Scheduler) Schedule(ctx context.Context, canvas string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if s.pending.SeenAndRecord(ctx, canvas) {
		metrics.RecordRefreshCoalesced()
		return false
	}
	bg := context.WithoutCancel(ctx)
	s.timers[canvas] = s.clock.AfterFunc(s.delay, func() { s.fire(bg, canvas) })
	return true
}

// Pending reports whether a refresh of canvas is waiting on its delay.
func (s *Scheduler) Pending(canvas string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[canvas]
	return ok
}

func (s *Scheduler) fire(ctx context.Context, canvas string) {
	s.mu.Lock()
	delete(s.timers, canvas)
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	err := s.queue.Enqueue(ctx, queue.Job{Canvas: canvas, RequestedAt: s.clock.Now()})
	if err != nil {
		s.pending.Unrecord(ctx, canvas)
		metrics.RecordRefreshError()
		s.logger.Warn(ctx, "chart refresh dropped", logger.String("canvas", canvas), logger.Error(err))
	}
}

// Close cancels every refresh still waiting on its delay.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for canvas, t := range s.timers {
		t.Stop()
		s.pending.Unrecord(context.Background(), canvas)
		delete(s.timers, canvas)
	}
}
