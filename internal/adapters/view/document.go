// Package view is the in-memory document a session projects into: skill
// rows with badges and score buttons, counters, selects, tables, sections,
// modals and toasts. The CLI prints it; tests assert on it.
package view

import (
	"sort"
	"sync"

	"github.com/okian/skillmatrix/internal/domain/badge"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/internal/domain/notify"
)

// Option is a select entry.
type Option struct {
	Value string
	Label string
}

type modalState struct {
	visible bool
	fields  map[string]string
	errors  map[string]string
}

// Document is safe for concurrent use.
type Document struct {
	mu           sync.Mutex
	rows         map[int]*Row
	order        []int
	readOnly     bool
	counters     map[string]string
	selects      map[string][]Option
	sections     map[string]bool
	tables       map[string][][]string
	lists        map[string][]string
	modals       map[string]*modalState
	scrollLocked bool
	toasts       []notify.Notification
}

var (
	_ notify.Surface = (*Document)(nil)
	_ badge.Element  = (*Row)(nil)
)

// New returns an empty document.
func New() *Document {
	return &Document{
		rows:     make(map[int]*Row),
		counters: make(map[string]string),
		selects:  make(map[string][]Option),
		sections: make(map[string]bool),
		tables:   make(map[string][][]string),
		lists:    make(map[string][]string),
		modals:   make(map[string]*modalState),
	}
}

// AddRow attaches a row for skill with its score-button block. An existing
// row for the same skill is returned unchanged.
func (d *Document) AddRow(skill model.Skill) *Row {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.rows[skill.ID]; ok {
		return r
	}
	r := &Row{
		doc:      d,
		skill:    skill,
		nodes:    []badge.Node{badge.NodeButtons},
		text:     make(map[badge.Node]string),
		level:    make(map[model.RaterKind]string),
		active:   make(map[model.RaterKind]model.Score),
		attached: true,
	}
	d.rows[skill.ID] = r
	d.order = append(d.order, skill.ID)
	return r
}

// Row returns the attached row of skillID.
func (d *Document) Row(skillID int) (*Row, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.rows[skillID]
	return r, ok
}

// RemoveRow detaches the row of skillID. Handles held elsewhere report
// Attached() == false afterwards.
func (d *Document) RemoveRow(skillID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.rows[skillID]
	if !ok {
		return false
	}
	r.attached = false
	delete(d.rows, skillID)
	for i, id := range d.order {
		if id == skillID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Rows returns the attached rows in insertion order.
func (d *Document) Rows() []*Row {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Row, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.rows[id])
	}
	return out
}

// Clear detaches every row and forgets all other state.
func (d *Document) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.rows {
		r.attached = false
	}
	d.rows = make(map[int]*Row)
	d.order = nil
	clear(d.counters)
	clear(d.selects)
	clear(d.sections)
	clear(d.tables)
	clear(d.lists)
	clear(d.modals)
	d.scrollLocked = false
	d.toasts = nil
}

// SetReadOnly disables every score button.
func (d *Document) SetReadOnly(ro bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readOnly = ro
}

// ReadOnly reports whether score buttons are disabled.
func (d *Document) ReadOnly() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readOnly
}

// SetCounter sets the text of a named counter.
func (d *Document) SetCounter(name, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counters[name] = text
}

// Counter returns the text of a named counter.
func (d *Document) Counter(name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.counters[name]
	return v, ok
}

// SetOptions replaces the entries of a select.
func (d *Document) SetOptions(name string, opts []Option) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selects[name] = append([]Option(nil), opts...)
}

// Options returns the entries of a select.
func (d *Document) Options(name string) []Option {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Option(nil), d.selects[name]...)
}

// SetSectionVisible shows or hides a named section.
func (d *Document) SetSectionVisible(name string, visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sections[name] = visible
}

// SectionVisible reports whether a section is shown. Unknown sections are hidden.
func (d *Document) SectionVisible(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sections[name]
}

// SetTable replaces the rows of a named table.
func (d *Document) SetTable(name string, rows [][]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	d.tables[name] = cp
}

// Table returns the rows of a named table.
func (d *Document) Table(name string) [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tables[name]
}

// SetList replaces the items of a named list.
func (d *Document) SetList(name string, items []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lists[name] = append([]string(nil), items...)
}

// List returns the items of a named list.
func (d *Document) List(name string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.lists[name]...)
}

func (d *Document) modal(id string) *modalState {
	m, ok := d.modals[id]
	if !ok {
		m = &modalState{fields: map[string]string{}, errors: map[string]string{}}
		d.modals[id] = m
	}
	return m
}

// SetModalVisible implements modal.View.
func (d *Document) SetModalVisible(id string, visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modal(id).visible = visible
}

// SetModalField implements modal.View.
func (d *Document) SetModalField(id, name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modal(id).fields[name] = value
}

// ClearModalErrors implements modal.View.
func (d *Document) ClearModalErrors(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.modal(id).errors)
}

// SetScrollLocked implements modal.View.
func (d *Document) SetScrollLocked(locked bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrollLocked = locked
}

// SetFieldError shows an inline validation message next to a modal field.
func (d *Document) SetFieldError(id, field, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modal(id).errors[field] = message
}

// ModalVisible reports whether modal id is shown.
func (d *Document) ModalVisible(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.modals[id]
	return ok && m.visible
}

// ModalField returns a field value of modal id.
func (d *Document) ModalField(id, name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.modals[id]; ok {
		return m.fields[name]
	}
	return ""
}

// FieldErrors returns the inline errors of modal id.
func (d *Document) FieldErrors(id string) map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := map[string]string{}
	if m, ok := d.modals[id]; ok {
		for k, v := range m.errors {
			out[k] = v
		}
	}
	return out
}

// ScrollLocked reports whether background scroll is locked.
func (d *Document) ScrollLocked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scrollLocked
}

// Show implements notify.Surface.
func (d *Document) Show(n notify.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toasts = append(d.toasts, n)
}

// Hide implements notify.Surface.
func (d *Document) Hide(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, t := range d.toasts {
		if t.ID == id {
			d.toasts = append(d.toasts[:i], d.toasts[i+1:]...)
			return
		}
	}
}

// Toasts returns the toasts currently drawn.
func (d *Document) Toasts() []notify.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Notification(nil), d.toasts...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
