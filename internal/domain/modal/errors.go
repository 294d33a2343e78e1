package modal

import "errors"

// Sentinel errors for modal handling.
var (
	ErrCloseCancelled = errors.New("close cancelled: unsaved changes kept")
	ErrNotOpen        = errors.New("modal is not open")
	ErrUnknownModal   = errors.New("unknown modal")
)
