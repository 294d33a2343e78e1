package chart

import "errors"

// Sentinel errors for chart construction and the instance registry.
var (
	ErrNotEnoughData  = errors.New("not enough data")
	ErrNoData         = errors.New("no data")
	ErrLengthMismatch = errors.New("series length does not match labels")
	ErrNoInstance     = errors.New("no chart bound to canvas")
	ErrOutOfRange     = errors.New("dataset or index out of range")
	ErrNoRenderer     = errors.New("chart renderer is nil")
)
