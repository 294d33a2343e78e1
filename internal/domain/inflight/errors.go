package inflight

import "errors"

// ErrSuperseded is returned to a waiting caller when a newer caller queued
// behind the same key before the key became free.
var ErrSuperseded = errors.New("superseded by a newer submission")
