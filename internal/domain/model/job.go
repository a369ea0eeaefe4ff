// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/houseprice/internal/domain/pricing"
)

// Task is one batch item waiting for a worker. Generation is the one of the
// job it was queued for.
type Task struct {
	JobID      string
	Generation uint64
	Index      int
	Features   pricing.Features
	Enqueued   time.Time
}

// ItemState tracks a batch item through the pipeline.
type ItemState string

// Item states.
const (
	ItemPending ItemState = "pending"
	ItemDone    ItemState = "done"
	ItemFailed  ItemState = "failed"
)

// Item is the stored outcome of one batch item. Generation comes from the
// task that produced it; zero skips the generation check.
type Item struct {
	State      ItemState
	Price      float64
	Clamped    bool
	Err        string
	Generation uint64
}

// Job is a batch valuation and the outcome of each of its items. Generation
// tells it apart from an earlier job that had the same id.
type Job struct {
	ID         string
	Generation uint64
	CreatedAt  time.Time
	Items      []Item
	Completed  int
	Failed     int
}

// Done reports whether every item has an outcome.
func (j Job) Done() bool {
	return j.Completed+j.Failed == len(j.Items)
}

// Clone returns a copy that shares no memory with j.
func (j Job) Clone() Job {
	out := j
	out.Items = append([]Item(nil), j.Items...)
	return out
}
