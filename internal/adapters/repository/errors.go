package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("skill not found")
	ErrReadOnlyKind = errors.New("rater kind is read-only")
	ErrInvalidScore = errors.New("score out of range")
)
