package app

import (
	"errors"
	"sort"
	"strings"
)

// Messages shown to the user for client-side refusals.
const (
	SelfFirstMessage = "employee must self-assess first"
	ReadOnlyMessage  = "read-only access: assessments cannot be changed"
)

var (
	// ErrSelfFirst blocks a manager score on a skill without a self score.
	ErrSelfFirst = errors.New(SelfFirstMessage)
	// ErrReadOnly blocks submissions from accounts that may not rate.
	ErrReadOnly = errors.New("read-only session")
	// ErrNoEmployee means a manager action has no employee selected.
	ErrNoEmployee = errors.New("no employee selected")
	// ErrInvalidScore rejects scores outside 1..5.
	ErrInvalidScore = errors.New("score must be between 1 and 5")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
	// ErrQueryTooShort is returned for searches below the minimum length.
	ErrQueryTooShort = errors.New("search query too short")
	// ErrNothingToSave means the batch has no staged changes.
	ErrNothingToSave = errors.New("no pending changes")
	// ErrUnknownCanvas is returned when a refresh names a canvas the session does not draw.
	ErrUnknownCanvas = errors.New("unknown chart canvas")
	// ErrNotLoaded means the skill is not part of the loaded profile.
	ErrNotLoaded = errors.New("skill not loaded")
)

// ValidationError lists per-field problems found before any request is sent.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
