package view

import (
	"github.com/okian/skillmatrix/internal/domain/badge"
	"github.com/okian/skillmatrix/internal/domain/model"
)

// Row is one skill element. Its state lives under the document lock.
type Row struct {
	doc      *Document
	skill    model.Skill
	nodes    []badge.Node
	text     map[badge.Node]string
	level    map[model.RaterKind]string
	active   map[model.RaterKind]model.Score
	attached bool
}

// Skill returns the skill shown by the row.
func (r *Row) Skill() model.Skill { return r.skill }

// Nodes implements badge.Element.
func (r *Row) Nodes() []badge.Node {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return append([]badge.Node(nil), r.nodes...)
}

// Insert implements badge.Element.
func (r *Row) Insert(index int, node badge.Node, text string) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	if index < 0 {
		index = 0
	}
	if index > len(r.nodes) {
		index = len(r.nodes)
	}
	r.nodes = append(r.nodes, "")
	copy(r.nodes[index+1:], r.nodes[index:])
	r.nodes[index] = node
	r.text[node] = text
}

// SetText implements badge.Element.
func (r *Row) SetText(node badge.Node, text string) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	r.text[node] = text
}

// Remove implements badge.Element.
func (r *Row) Remove(node badge.Node) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	for i, n := range r.nodes {
		if n == node {
			r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
			break
		}
	}
	delete(r.text, node)
}

// SetLevelText implements badge.Element.
func (r *Row) SetLevelText(kind model.RaterKind, text string) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	r.level[kind] = text
}

// SetActive implements badge.Element. Zero leaves no button active.
func (r *Row) SetActive(kind model.RaterKind, score model.Score) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	r.active[kind] = score
}

// Attached implements badge.Element.
func (r *Row) Attached() bool {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return r.attached
}

// BadgeText returns the text of a badge node and whether it is present.
func (r *Row) BadgeText(node badge.Node) (string, bool) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	for _, n := range r.nodes {
		if n == node {
			return r.text[node], true
		}
	}
	return "", false
}

// LevelText returns the caption for kind.
func (r *Row) LevelText(kind model.RaterKind) string {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return r.level[kind]
}

// Active returns the active score button for kind, zero for none.
func (r *Row) Active(kind model.RaterKind) model.Score {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return r.active[kind]
}

// Buttons returns the active flag of buttons 1..5 for kind.
func (r *Row) Buttons(kind model.RaterKind) [5]bool {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	var b [5]bool
	if s := r.active[kind]; s.Valid() {
		b[s-1] = true
	}
	return b
}

// Disabled reports whether the row's score buttons accept input.
func (r *Row) Disabled() bool {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	return r.doc.readOnly || !r.attached
}
