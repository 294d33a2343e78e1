package dedupe

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of keys to keep in memory.
// If maxSize > 0: bounded mode, the oldest key is evicted first.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// WithWindow makes a recorded key expire after window. A zero window keeps
// keys until Unrecord is called.
func WithWindow(window time.Duration) Option {
	return func(d *inMemoryDeduper) {
		if window > 0 {
			d.window = window
		}
	}
}

// WithClock sets the clock used for window expiry.
func WithClock(clock clockwork.Clock) Option {
	return func(d *inMemoryDeduper) {
		if clock != nil {
			d.clock = clock
		}
	}
}
