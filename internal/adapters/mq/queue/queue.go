// Package queue carries valuation tasks from the service to the worker pool.
package queue

import (
	"context"
	"sync"

	"github.com/okian/houseprice/internal/domain/model"
	"github.com/okian/houseprice/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a task without blocking. It returns ErrFull or ErrClosed
	// when the task was not accepted.
	Enqueue(ctx context.Context, t model.Task) error

	// Dequeue returns the channel workers read from. It is closed, after
	// draining, once the queue is closed.
	Dequeue() <-chan model.Task

	Len() int
	Free() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	tasks    chan model.Task
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan model.Task, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a task to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t model.Task) error { //nolint:gocritic // hugeParam: tasks travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueRejected("context_cancelled")
		return err
	}

	select {
	case q.tasks <- t:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.tasks))
		return nil
	default:
		metrics.RecordQueueRejected("full")
		return ErrFull
	}
}

// Dequeue returns the receive side of the task channel.
func (q *InMemoryQueue) Dequeue() <-chan model.Task {
	return q.tasks
}

// Len returns the number of queued tasks.
func (q *InMemoryQueue) Len() int {
	n := len(q.tasks)
	metrics.UpdateQueueSize(n)
	return n
}

// Free returns how many more tasks fit right now.
func (q *InMemoryQueue) Free() int {
	return q.capacity - len(q.tasks)
}

// Close stops accepting tasks. Queued tasks stay readable until drained.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
