// Package repository keeps batch valuation jobs and their per-item outcomes.
package repository

import (
	"context"

	"github.com/okian/houseprice/internal/domain/model"
)

// Store provides read/write access to valuation jobs.
type Store interface {
	// Create registers a job with size pending items and a fresh generation.
	// Returns model.ErrJobExists if id is already tracked.
	Create(ctx context.Context, id string, size int) (model.Job, error)

	// Record stores the outcome of one item. Recording the same item twice
	// overwrites the first outcome without double counting. An item whose
	// generation differs from the job's returns model.ErrStaleItem.
	Record(ctx context.Context, id string, index int, item model.Item) error

	// Get returns a copy of the job. Returns model.ErrJobNotFound if unknown.
	Get(ctx context.Context, id string) (model.Job, error)

	Delete(ctx context.Context, id string) error

	// Count returns the number of jobs tracked.
	Count(ctx context.Context) int
}
