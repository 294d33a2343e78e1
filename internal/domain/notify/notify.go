// Package notify is the shared toast service: deduplicated, non-blocking,
// auto-dismissed messages rendered through a Surface.
package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/okian/skillmatrix/internal/domain/dedupe"
	"github.com/okian/skillmatrix/pkg/metrics"
)

// Kind is the notification severity.
type Kind string

// Notification kinds.
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// ParseKind validates s.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return k, nil
	default:
		return "", fmt.Errorf("unknown notification kind %q", s)
	}
}

const defaultDuration = 3 * time.Second

// Notification is one visible toast.
type Notification struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Message  string    `json:"message"`
	Position string    `json:"position"`
	ShownAt  time.Time `json:"shown_at"`
}

// Surface draws and removes toasts. It is called with the service lock held
// and must not call back into the Service.
type Surface interface {
	Show(n Notification)
	Hide(id string)
}

// Options is the single configuration of the service.
type Options struct {
	// Duration before auto-dismiss. Zero means 3s.
	Duration time.Duration
	// Position is passed through to the surface.
	Position string
	// DedupWindow suppresses an identical message shown this recently, even
	// if it was already dismissed. Zero only suppresses while visible.
	DedupWindow time.Duration
}

type entry struct {
	n     Notification
	key   string
	timer clockwork.Timer
}

// Service shows notifications.
type Service struct {
	mu      sync.Mutex
	opts    Options
	clock   clockwork.Clock
	surface Surface
	recent  dedupe.Deduper
	byID    map[string]*entry
	byKey   map[string]string
	closed  bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// New returns a Service drawing on surface. A nil surface only tracks state.
func New(surface Surface, opts Options, options ...Option) *Service {
	if opts.Duration <= 0 {
		opts.Duration = defaultDuration
	}
	if opts.Position == "" {
		opts.Position = "top-right"
	}
	s := &Service{
		opts:    opts,
		clock:   clockwork.NewRealClock(),
		surface: surface,
		byID:    make(map[string]*entry),
		byKey:   make(map[string]string),
	}
	for _, o := range options {
		o(s)
	}
	if opts.DedupWindow > 0 {
		s.recent = dedupe.NewInMemoryDeduper(
			dedupe.WithWindow(opts.DedupWindow),
			dedupe.WithClock(s.clock),
			dedupe.WithMaxSize(256),
		)
	}
	return s
}

// Notify shows message unless an identical one is visible or was shown
// within the dedup window. It returns the id of the visible toast and
// whether a new one was created.
func (s *Service) Notify(message string, kind Kind) (string, bool) {
	key := string(kind) + "|" + message

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", false
	}
	if id, ok := s.byKey[key]; ok {
		metrics.RecordNotificationSuppressed(string(kind))
		return id, false
	}
	if s.recent != nil && s.recent.SeenAndRecord(context.Background(), key) {
		metrics.RecordNotificationSuppressed(string(kind))
		return "", false
	}

	e := &entry{
		key: key,
		n: Notification{
			ID:       uuid.NewString(),
			Kind:     kind,
			Message:  message,
			Position: s.opts.Position,
			ShownAt:  s.clock.Now(),
		},
	}
	id := e.n.ID
	e.timer = s.clock.AfterFunc(s.opts.Duration, func() { s.Dismiss(id) })
	s.byID[id] = e
	s.byKey[key] = id
	if s.surface != nil {
		s.surface.Show(e.n)
	}
	metrics.RecordNotificationShown(string(kind))
	metrics.UpdateNotificationsVisible(len(s.byID))
	return id, true
}

// Success is Notify with KindSuccess.
func (s *Service) Success(message string) (string, bool) { return s.Notify(message, KindSuccess) }

// Error is Notify with KindError.
func (s *Service) Error(message string) (string, bool) { return s.Notify(message, KindError) }

// Dismiss removes a visible notification. It reports whether id was visible.
func (s *Service) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dismissLocked(id)
}

// Visible returns the notifications on screen, oldest first.
func (s *Service) Visible() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e.n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ShownAt.Equal(out[j].ShownAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ShownAt.Before(out[j].ShownAt)
	})
	return out
}

// Close dismisses everything and refuses further notifications.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.byID {
		s.dismissLocked(id)
	}
	s.closed = true
}

func (s *Service) dismissLocked(id string) bool {
	e, ok := s.byID[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.byID, id)
	delete(s.byKey, e.key)
	if s.surface != nil {
		s.surface.Hide(id)
	}
	metrics.UpdateNotificationsVisible(len(s.byID))
	return true
}
