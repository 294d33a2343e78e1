// Package dedupe suppresses repeated keys: identical notifications inside the
// dedup window and chart refreshes already scheduled for a canvas.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen (and not expired), false if it was
	// newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so the next SeenAndRecord reports it as new.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// node is one entry of the insertion-ordered list, newest at head.
type node struct {
	key  string
	at   time.Time
	next *node
}

func (n *node) reset() {
	n.key = ""
	n.at = time.Time{}
	n.next = nil
}

// inMemoryDeduper keeps keys in a map plus a singly linked list ordered by
// insertion. Bounded mode evicts the oldest key; window mode treats keys older
// than window as unseen.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]*node
	head     *node
	maxSize  int
	window   time.Duration
	clock    clockwork.Clock
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 10_000,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*node)
	d.nodePool = sync.Pool{
		New: func() any {
			return &node{}
		},
	}
	return d
}

// SeenAndRecord reports whether key is live and records it otherwise.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if n, ok := d.seen[key]; ok {
		if !d.expired(n, now) {
			return true
		}
		d.remove(n)
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	n := d.nodePool.Get().(*node)
	n.key = key
	n.at = now
	n.next = d.head
	d.head = n
	d.seen[key] = n
	d.size.Add(1)
	return false
}

// Unrecord removes key, allowing it to be recorded again.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.seen[key]; ok {
		d.remove(n)
	}
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

func (d *inMemoryDeduper) expired(n *node, now time.Time) bool {
	return d.window > 0 && now.Sub(n.at) >= d.window
}

// remove unlinks n. Must be called with d.mu held.
func (d *inMemoryDeduper) remove(n *node) {
	delete(d.seen, n.key)
	if d.head == n {
		d.head = n.next
	} else {
		cur := d.head
		for cur != nil && cur.next != n {
			cur = cur.next
		}
		if cur != nil {
			cur.next = n.next
		}
	}
	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}

// evictOldest drops the tail of the list. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	if d.head == nil {
		return
	}
	var prev *node
	cur := d.head
	for cur.next != nil {
		prev = cur
		cur = cur.next
	}
	delete(d.seen, cur.key)
	if prev == nil {
		d.head = nil
	} else {
		prev.next = nil
	}
	cur.reset()
	d.nodePool.Put(cur)
	d.size.Add(-1)
}
