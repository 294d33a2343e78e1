// Package badge projects known scores onto a skill element: numeric badges,
// level text and the active score button.
package badge

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/okian/skillmatrix/internal/domain/model"
)

// ErrNoBadge is returned for rater kinds that have no badge slot.
var ErrNoBadge = errors.New("rater kind has no badge")

// Node identifies a child of a skill element whose order is fixed.
type Node string

// Nodes in display order.
const (
	NodeSelfBadge    Node = "self-badge"
	NodeManagerBadge Node = "manager-badge"
	NodeButtons      Node = "buttons"
)

var order = map[Node]int{
	NodeSelfBadge:    0,
	NodeManagerBadge: 1,
	NodeButtons:      2,
}

// Element is the part of a skill row the renderer writes to.
type Element interface {
	// Nodes lists the ordered children currently present.
	Nodes() []Node
	// Insert places a node at index, shifting later children right.
	Insert(index int, node Node, text string)
	SetText(node Node, text string)
	Remove(node Node)
	SetLevelText(kind model.RaterKind, text string)
	SetActive(kind model.RaterKind, score model.Score)
	// Attached reports whether the element is still part of the view.
	Attached() bool
}

// Renderer writes badges for one viewer.
type Renderer struct {
	viewer model.Role
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithViewer sets the role of whoever looks at the badges.
func WithViewer(role model.Role) Option {
	return func(r *Renderer) {
		if role != "" {
			r.viewer = role
		}
	}
}

// NewRenderer returns a Renderer for an employee viewer by default.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{viewer: model.RoleEmployee}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render creates, updates or removes the badge of kind so that a badge is
// present exactly when score is set, and refreshes the level text.
func (r *Renderer) Render(el Element, kind model.RaterKind, score model.Score) error {
	node, err := nodeFor(kind)
	if err != nil {
		return err
	}

	present := false
	for _, n := range el.Nodes() {
		if n == node {
			present = true
			break
		}
	}

	switch {
	case !score.IsSet():
		if present {
			el.Remove(node)
		}
	case present:
		el.SetText(node, strconv.Itoa(int(score)))
	default:
		el.Insert(insertIndex(el.Nodes(), node), node, strconv.Itoa(int(score)))
	}

	el.SetLevelText(kind, r.LevelText(kind, score))
	return nil
}

// Project renders the badge and marks the matching score button active.
func (r *Renderer) Project(el Element, kind model.RaterKind, score model.Score) error {
	if err := r.Render(el, kind, score); err != nil {
		return err
	}
	el.SetActive(kind, score)
	return nil
}

// LevelText is the caption under a score, e.g. "Advanced (self-assessment)".
func (r *Renderer) LevelText(kind model.RaterKind, score model.Score) string {
	level := score.Level()
	if !score.IsSet() {
		return level
	}
	switch kind {
	case model.RaterSelf:
		return level + " (self-assessment)"
	case model.RaterManager:
		if r.viewer == model.RoleManager {
			return level + " (your assessment)"
		}
		return level + " (manager assessment)"
	default:
		return level
	}
}

func nodeFor(kind model.RaterKind) (Node, error) {
	switch kind {
	case model.RaterSelf:
		return NodeSelfBadge, nil
	case model.RaterManager:
		return NodeManagerBadge, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNoBadge, kind)
	}
}

// insertIndex is the position after every present node that sorts before node.
func insertIndex(nodes []Node, node Node) int {
	idx := 0
	for i, n := range nodes {
		if rank, ok := order[n]; ok && rank < order[node] {
			idx = i + 1
		}
	}
	return idx
}
