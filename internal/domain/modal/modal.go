// Package modal opens and closes dialogs: visibility, background scroll
// lock, field pre-population, unsaved-change confirmation and overlay clicks.
package modal

import (
	"context"
	"fmt"
	"sync"
)

// UnsavedChangesPrompt is the question asked before discarding staged changes.
const UnsavedChangesPrompt = "You have unsaved changes. Close anyway?"

// View is what the controller mutates.
type View interface {
	SetModalVisible(id string, visible bool)
	SetModalField(id, name, value string)
	ClearModalErrors(id string)
	SetScrollLocked(locked bool)
}

// Confirmer asks the user a blocking yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, message string) bool { return f(ctx, message) }

// Target is where a pointer event landed.
type Target int

// Pointer targets.
const (
	TargetDialog Target = iota
	TargetOverlay
)

// Controller tracks open modals. The scroll lock is held while any modal is open.
type Controller struct {
	mu      sync.Mutex
	view    View
	confirm Confirmer
	open    map[string]bool
	down    map[string]Target
	pending map[string]*PendingChanges
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfirmer sets the blocking confirmation used on close.
func WithConfirmer(c Confirmer) Option {
	return func(m *Controller) {
		if c != nil {
			m.confirm = c
		}
	}
}

// NewController returns a Controller. Without a Confirmer every close with
// unsaved changes is refused.
func NewController(view View, opts ...Option) *Controller {
	m := &Controller{
		view:    view,
		confirm: ConfirmFunc(func(context.Context, string) bool { return false }),
		open:    make(map[string]bool),
		down:    make(map[string]Target),
		pending: make(map[string]*PendingChanges),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open shows modal id, locks background scroll, clears old validation errors
// and fills fields from fields.
func (m *Controller) Open(id string, fields map[string]string) error {
	if id == "" {
		return ErrUnknownModal
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	wasLocked := len(m.open) > 0
	m.open[id] = true
	delete(m.down, id)

	m.view.ClearModalErrors(id)
	for name, value := range fields {
		m.view.SetModalField(id, name, value)
	}
	m.view.SetModalVisible(id, true)
	if !wasLocked {
		m.view.SetScrollLocked(true)
	}
	return nil
}

// Close hides modal id. Staged changes require confirmation; a refusal
// returns ErrCloseCancelled and leaves the modal open.
func (m *Controller) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	if !m.open[id] {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotOpen, id)
	}
	p := m.pending[id]
	m.mu.Unlock()

	// Ask without holding the lock; the confirmer may block on the user.
	if p != nil && p.Len() > 0 {
		if !m.confirm.Confirm(ctx, UnsavedChangesPrompt) {
			return ErrCloseCancelled
		}
		p.Discard()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.hideLocked(id)
	return nil
}

// PointerDown records where a press on modal id started.
func (m *Controller) PointerDown(id string, target Target) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open[id] {
		m.down[id] = target
	}
}

// PointerUp closes modal id when both press and release hit the overlay. A
// drag that started inside the dialog never closes it.
func (m *Controller) PointerUp(ctx context.Context, id string, target Target) (bool, error) {
	m.mu.Lock()
	started, ok := m.down[id]
	delete(m.down, id)
	m.mu.Unlock()

	if !ok || started != TargetOverlay || target != TargetOverlay {
		return false, nil
	}
	if err := m.Close(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// IsOpen reports whether modal id is visible.
func (m *Controller) IsOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open[id]
}

// Pending returns the staged changes attached to modal id.
func (m *Controller) Pending(id string) *PendingChanges {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[id]
	if !ok {
		p = NewPendingChanges()
		m.pending[id] = p
	}
	return p
}

// CloseAll hides every modal without asking; used when the session ends.
func (m *Controller) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.open {
		if p := m.pending[id]; p != nil {
			p.Discard()
		}
		m.hideLocked(id)
	}
}

func (m *Controller) hideLocked(id string) {
	if !m.open[id] {
		return
	}
	delete(m.open, id)
	delete(m.down, id)
	m.view.SetModalVisible(id, false)
	if len(m.open) == 0 {
		m.view.SetScrollLocked(false)
	}
}
