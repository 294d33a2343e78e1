package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/skillmatrix/internal/domain/model"
)

const defaultShardCount = 8

// record is the mutable state of one skill.
type record struct {
	skill     model.Skill
	order     int
	current   model.ScoreSet
	confirmed model.ScoreSet
	versions  map[model.RaterKind]Version
	// outstanding holds the unsettled optimistic updates per kind, oldest first.
	outstanding map[model.RaterKind][]update
}

type update struct {
	v     Version
	score model.Score
}

// settle removes v from the outstanding updates of kind.
func (r *record) settle(kind model.RaterKind, v Version) {
	ups := r.outstanding[kind]
	for i, u := range ups {
		if u.v == v {
			r.outstanding[kind] = append(ups[:i:i], ups[i+1:]...)
			return
		}
	}
}

type shard struct {
	mu      sync.RWMutex
	records map[int]*record
}

// ScoreStore is an in-memory Store sharded by skill id.
type ScoreStore struct {
	shardCount int
	shards     []*shard

	// seq orders records by load and stamps versions.
	seqMu sync.Mutex
	seq   uint64
}

var _ Store = (*ScoreStore)(nil)

// NewScoreStore returns an empty store.
func NewScoreStore(opts ...Option) *ScoreStore {
	s := &ScoreStore{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[int]*record)}
	}
	return s
}

func (s *ScoreStore) shardFor(skillID int) *shard {
	i := skillID % s.shardCount
	if i < 0 {
		i = -i
	}
	return s.shards[i]
}

func (s *ScoreStore) next() uint64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.seq++
	return s.seq
}

// Load replaces the store content.
func (s *ScoreStore) Load(_ context.Context, skills []model.SkillScores) {
	for _, sh := range s.shards {
		sh.mu.Lock()
		clear(sh.records)
		sh.mu.Unlock()
	}
	for _, ss := range skills {
		sh := s.shardFor(ss.Skill.ID)
		rec := &record{
			skill:     ss.Skill,
			order:     int(s.next()),
			current:   ss.Scores,
			confirmed: ss.Scores,
			versions:  map[model.RaterKind]Version{},

			outstanding: map[model.RaterKind][]update{},
		}
		sh.mu.Lock()
		sh.records[ss.Skill.ID] = rec
		sh.mu.Unlock()
	}
}

// Get returns the entry for skillID.
func (s *ScoreStore) Get(_ context.Context, skillID int) (Entry, error) {
	sh := s.shardFor(skillID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	rec, ok := sh.records[skillID]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, skillID)
	}
	return Entry{Skill: rec.skill, Current: rec.current, Confirmed: rec.confirmed}, nil
}

// Apply performs an optimistic update.
func (s *ScoreStore) Apply(_ context.Context, skillID int, kind model.RaterKind, score model.Score) (model.ScoreSet, Version, error) {
	if !kind.Submittable() {
		return model.ScoreSet{}, 0, fmt.Errorf("%w: %s", ErrReadOnlyKind, kind)
	}
	if !score.Valid() {
		return model.ScoreSet{}, 0, fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}
	v := Version(s.next())

	sh := s.shardFor(skillID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	rec, ok := sh.records[skillID]
	if !ok {
		return model.ScoreSet{}, 0, fmt.Errorf("%w: %d", ErrNotFound, skillID)
	}
	prev := rec.current
	rec.current = rec.current.With(kind, score)
	rec.versions[kind] = v
	rec.outstanding[kind] = append(rec.outstanding[kind], update{v: v, score: score})
	return prev, v, nil
}

// Confirm records an authoritative score.
func (s *ScoreStore) Confirm(_ context.Context, skillID int, kind model.RaterKind, score model.Score, v Version) (model.ScoreSet, bool, error) {
	if !kind.Submittable() {
		return model.ScoreSet{}, false, fmt.Errorf("%w: %s", ErrReadOnlyKind, kind)
	}
	sh := s.shardFor(skillID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	rec, ok := sh.records[skillID]
	if !ok {
		return model.ScoreSet{}, false, fmt.Errorf("%w: %d", ErrNotFound, skillID)
	}
	rec.confirmed = rec.confirmed.With(kind, score)
	rec.settle(kind, v)
	if rec.versions[kind] != v {
		return rec.current, false, nil
	}
	rec.current = rec.current.With(kind, score)
	return rec.current, true, nil
}

// Rollback undoes update v of kind.
func (s *ScoreStore) Rollback(_ context.Context, skillID int, kind model.RaterKind, v Version) (model.ScoreSet, bool, error) {
	if !kind.Submittable() {
		return model.ScoreSet{}, false, fmt.Errorf("%w: %s", ErrReadOnlyKind, kind)
	}
	sh := s.shardFor(skillID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	rec, ok := sh.records[skillID]
	if !ok {
		return model.ScoreSet{}, false, fmt.Errorf("%w: %d", ErrNotFound, skillID)
	}
	rec.settle(kind, v)
	if rec.versions[kind] != v {
		return rec.current, false, nil
	}
	// An older update still in flight owns the display again.
	if ups := rec.outstanding[kind]; len(ups) > 0 {
		last := ups[len(ups)-1]
		rec.versions[kind] = last.v
		rec.current = rec.current.With(kind, last.score)
		return rec.current, true, nil
	}
	rec.current = rec.current.With(kind, rec.confirmed.Get(kind))
	return rec.current, true, nil
}

// Abandon drops update v of kind without changing the display.
func (s *ScoreStore) Abandon(_ context.Context, skillID int, kind model.RaterKind, v Version) {
	sh := s.shardFor(skillID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if rec, ok := sh.records[skillID]; ok {
		rec.settle(kind, v)
	}
}

// Snapshot returns current scores in load order.
func (s *ScoreStore) Snapshot(_ context.Context) []model.SkillScores {
	type ordered struct {
		order int
		ss    model.SkillScores
	}
	var all []ordered
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, rec := range sh.records {
			all = append(all, ordered{order: rec.order, ss: model.SkillScores{Skill: rec.skill, Scores: rec.current}})
		}
		sh.mu.RUnlock()
	}
	sort.Slice(all, func(i, j int) bool { return all[i].order < all[j].order })
	out := make([]model.SkillScores, len(all))
	for i, o := range all {
		out[i] = o.ss
	}
	return out
}

// Delete forgets skillID.
func (s *ScoreStore) Delete(_ context.Context, skillID int) {
	sh := s.shardFor(skillID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.records, skillID)
}

// Count returns the number of skills tracked.
func (s *ScoreStore) Count(_ context.Context) int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.records)
		sh.mu.RUnlock()
	}
	return n
}
