// Package model contains domain models passed between layers.
package model

import "fmt"

// Score is a rating on the 1..5 scale. Zero means unset.
type Score int

// Score bounds.
const (
	ScoreUnset Score = 0
	ScoreMin   Score = 1
	ScoreMax   Score = 5
)

var levelNames = [...]string{"Unrated", "Beginner", "Basic", "Intermediate", "Advanced", "Expert"}

// Valid reports whether s is a submittable score.
func (s Score) Valid() bool { return s >= ScoreMin && s <= ScoreMax }

// IsSet reports whether s carries a rating.
func (s Score) IsSet() bool { return s.Valid() }

// Level returns the level name for s, "Unrated" for anything outside 1..5.
func (s Score) Level() string {
	if !s.Valid() {
		return levelNames[0]
	}
	return levelNames[s]
}

// RaterKind is the role context a score was recorded under.
type RaterKind string

// Rater kinds. Final is derived by the server and never submitted.
const (
	RaterSelf    RaterKind = "self"
	RaterManager RaterKind = "manager"
	RaterFinal   RaterKind = "final"
)

// Submittable reports whether the client may send scores of this kind.
func (k RaterKind) Submittable() bool { return k == RaterSelf || k == RaterManager }

// ParseRaterKind converts s into a RaterKind.
func ParseRaterKind(s string) (RaterKind, error) {
	switch k := RaterKind(s); k {
	case RaterSelf, RaterManager, RaterFinal:
		return k, nil
	default:
		return "", fmt.Errorf("unknown rater kind %q", s)
	}
}

// ScoreSet holds the known scores of one skill for one employee.
type ScoreSet struct {
	Self    Score
	Manager Score
}

// Final is the manager score when set, otherwise the self score.
func (s ScoreSet) Final() Score {
	if s.Manager.IsSet() {
		return s.Manager
	}
	return s.Self
}

// Get returns the score for kind.
func (s ScoreSet) Get(kind RaterKind) Score {
	switch kind {
	case RaterSelf:
		return s.Self
	case RaterManager:
		return s.Manager
	case RaterFinal:
		return s.Final()
	default:
		return ScoreUnset
	}
}

// With returns a copy of s with kind set to score. Final cannot be set.
func (s ScoreSet) With(kind RaterKind, score Score) ScoreSet {
	switch kind {
	case RaterSelf:
		s.Self = score
	case RaterManager:
		s.Manager = score
	}
	return s
}
