package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/houseprice/internal/domain/model"
	"github.com/okian/houseprice/pkg/metrics"
)

const defaultMaxJobs = 1_000

// MemoryStore is an in-memory Store with bounded, oldest-first eviction.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]*model.Job
	order   []string // creation order, oldest first
	maxJobs int
	gen     uint64
	now     func() time.Time
}

// NewMemoryStore creates an empty job store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		jobs:    make(map[string]*model.Job),
		maxJobs: defaultMaxJobs,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateJobsTracked(0)
	return s
}

// Create registers a new job with every item pending.
func (s *MemoryStore) Create(_ context.Context, id string, size int) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; ok {
		return model.Job{}, fmt.Errorf("%w: %s", ErrExists, id)
	}

	for len(s.order) >= s.maxJobs {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.jobs, oldest)
		metrics.RecordJobEvicted()
	}

	s.gen++
	job := &model.Job{
		ID:         id,
		Generation: s.gen,
		CreatedAt:  s.now().UTC(),
		Items:      make([]model.Item, size),
	}
	for i := range job.Items {
		job.Items[i].State = model.ItemPending
	}
	s.jobs[id] = job
	s.order = append(s.order, id)
	metrics.UpdateJobsTracked(len(s.jobs))
	return job.Clone(), nil
}

// Record stores the outcome of one item.
func (s *MemoryStore) Record(_ context.Context, id string, index int, item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if index < 0 || index >= len(job.Items) {
		return fmt.Errorf("%w: %d of %d", model.ErrItemOutOfRange, index, len(job.Items))
	}
	if item.Generation != 0 && item.Generation != job.Generation {
		return fmt.Errorf("%w: %s item %d", model.ErrStaleItem, id, index)
	}

	switch job.Items[index].State {
	case model.ItemDone:
		job.Completed--
	case model.ItemFailed:
		job.Failed--
	}
	switch item.State {
	case model.ItemDone:
		job.Completed++
	case model.ItemFailed:
		job.Failed++
	}
	job.Items[index] = item
	return nil
}

// Get returns a copy of the job.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return job.Clone(), nil
}

// Delete removes a job. Deleting an unknown job is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return nil
	}
	delete(s.jobs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	metrics.UpdateJobsTracked(len(s.jobs))
	return nil
}

// Count returns the number of tracked jobs.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
