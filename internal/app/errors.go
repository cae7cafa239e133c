package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrEmptyBatch    = errors.New("batch has no project ids")
	ErrBatchTooLarge = errors.New("batch too large")
	ErrBackpressure  = errors.New("batch queue is full")
)
