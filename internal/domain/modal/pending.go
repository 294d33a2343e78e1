package modal

import (
	"sort"
	"sync"

	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/pkg/metrics"
)

// PendingChanges stages scores until a batch save or a discard.
type PendingChanges struct {
	mu      sync.Mutex
	changes map[int]model.Score
}

// NewPendingChanges returns an empty staging area.
func NewPendingChanges() *PendingChanges {
	return &PendingChanges{changes: make(map[int]model.Score)}
}

// Stage records score for skillID, replacing an earlier one. An unset score
// unstages the skill.
func (p *PendingChanges) Stage(skillID int, score model.Score) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if score.IsSet() {
		p.changes[skillID] = score
	} else {
		delete(p.changes, skillID)
	}
	metrics.UpdatePendingChanges(len(p.changes))
}

// Get returns the staged score for skillID.
func (p *PendingChanges) Get(skillID int) (model.Score, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.changes[skillID]
	return s, ok
}

// Entries returns the staged changes ordered by skill id.
func (p *PendingChanges) Entries() []model.PendingChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.PendingChange, 0, len(p.changes))
	for id, s := range p.changes {
		out = append(out, model.PendingChange{SkillID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillID < out[j].SkillID })
	return out
}

// Len returns the number of staged changes.
func (p *PendingChanges) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.changes)
}

// Discard drops every staged change.
func (p *PendingChanges) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.changes)
	metrics.UpdatePendingChanges(0)
}
