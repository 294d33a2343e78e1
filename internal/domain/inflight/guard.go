// Package inflight serialises work per key. At most one holder runs for a
// key; at most one caller waits behind it, and a newer caller replaces the
// waiting one.
package inflight

import (
	"context"
	"sync"
)

// Release frees the key. It is safe to call more than once.
type Release func()

type ticket struct {
	ch chan error
}

type slot struct {
	waiter *ticket
}

// Guard tracks the outstanding holder of each key.
type Guard struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// New returns an empty Guard.
func New() *Guard {
	return &Guard{slots: make(map[string]*slot)}
}

// Acquire takes key, blocking while another holder has it. waited reports
// whether the caller had to queue. A queued caller gets ErrSuperseded when
// a newer caller queues behind the same key, or ctx.Err() when ctx ends first.
func (g *Guard) Acquire(ctx context.Context, key string) (release Release, waited bool, err error) {
	g.mu.Lock()
	s, busy := g.slots[key]
	if !busy {
		g.slots[key] = &slot{}
		g.mu.Unlock()
		return g.releaser(key), false, nil
	}

	t := &ticket{ch: make(chan error, 1)}
	if s.waiter != nil {
		s.waiter.ch <- ErrSuperseded
	}
	s.waiter = t
	g.mu.Unlock()

	select {
	case err := <-t.ch:
		if err != nil {
			return nil, true, err
		}
		return g.releaser(key), true, nil
	case <-ctx.Done():
		g.mu.Lock()
		if s.waiter == t {
			s.waiter = nil
			g.mu.Unlock()
			return nil, true, ctx.Err()
		}
		g.mu.Unlock()
		// Signalled concurrently with cancellation; pass the key on if we got it.
		if err := <-t.ch; err == nil {
			g.releaser(key)()
		}
		return nil, true, ctx.Err()
	}
}

// Busy reports whether key currently has a holder.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.slots[key]
	return ok
}

// Waiting reports whether a caller is queued behind the holder of key.
func (g *Guard) Waiting(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[key]
	return ok && s.waiter != nil
}

// Len returns the number of held keys.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

func (g *Guard) releaser(key string) Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			s, ok := g.slots[key]
			if !ok {
				return
			}
			if w := s.waiter; w != nil {
				s.waiter = nil
				w.ch <- nil
				return
			}
			delete(g.slots, key)
		})
	}
}
