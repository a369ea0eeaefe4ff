package model

import "errors"

// Sentinel kinds shared by the service, the job store and the HTTP layer.
var (
	ErrJobNotFound    = errors.New("valuation job not found")
	ErrJobExists      = errors.New("valuation job already exists")
	ErrItemOutOfRange = errors.New("item index out of range")
	ErrStaleItem      = errors.New("item belongs to an earlier job generation")
	ErrEmptyBatch     = errors.New("batch has no items")
	ErrBatchTooLarge  = errors.New("batch too large")
	ErrBackpressure   = errors.New("valuation queue is full")
	ErrNotStarted     = errors.New("service not started")
)
