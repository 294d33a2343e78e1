package worker

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/skillmatrix/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithPending releases a canvas in p when its refresh starts.
func WithPending(p Pending) Option {
	return func(w *InMemoryWorker) {
		w.pending = p
	}
}

// SchedulerOption applies a configuration option to the Scheduler.
type SchedulerOption func(*Scheduler)

// WithDelay sets how long a refresh waits before it is queued.
func WithDelay(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithClock sets the clock driving the delay.
func WithClock(c clockwork.Clock) SchedulerOption {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSchedulerLogger sets the scheduler logger.
func WithSchedulerLogger(l logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
