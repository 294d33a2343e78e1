// Package repository holds the keyed score store: the single source of
// truth for the scores shown in a session.
package repository

import (
	"context"

	"github.com/okian/skillmatrix/internal/domain/model"
)

// Entry is the stored state of one skill.
type Entry struct {
	Skill model.Skill
	// Current is what the view shows, including optimistic updates.
	Current model.ScoreSet
	// Confirmed is the last state acknowledged by the server.
	Confirmed model.ScoreSet
}

// Version identifies one optimistic update of a (skill, kind) pair.
type Version uint64

// Store provides read/write access to session scores.
type Store interface {
	// Load replaces the store content with server data.
	Load(ctx context.Context, skills []model.SkillScores)

	// Get returns the entry for skillID or ErrNotFound.
	Get(ctx context.Context, skillID int) (Entry, error)

	// Apply sets kind optimistically and returns the prior current state and
	// a version identifying this update.
	Apply(ctx context.Context, skillID int, kind model.RaterKind, score model.Score) (model.ScoreSet, Version, error)

	// Confirm records the authoritative score. The current state follows it
	// only when v is still the latest update of the pair; applied reports that.
	Confirm(ctx context.Context, skillID int, kind model.RaterKind, score model.Score, v Version) (current model.ScoreSet, applied bool, err error)

	// Rollback undoes update v when it is still the latest update of the
	// pair. The display falls back to the newest older update that is still
	// outstanding, or to the confirmed score when none is.
	Rollback(ctx context.Context, skillID int, kind model.RaterKind, v Version) (current model.ScoreSet, applied bool, err error)

	// Abandon drops update v without touching the display. It is for
	// updates that were replaced before being sent.
	Abandon(ctx context.Context, skillID int, kind model.RaterKind, v Version)

	// Snapshot returns the current scores in load order.
	Snapshot(ctx context.Context) []model.SkillScores

	// Delete forgets skillID.
	Delete(ctx context.Context, skillID int)

	// Count returns the number of skills tracked.
	Count(ctx context.Context) int
}
