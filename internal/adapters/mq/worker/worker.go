// Package worker values queued batch items and records their outcomes.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/houseprice/internal/domain/model"
	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/pkg/logger"
	"github.com/okian/houseprice/pkg/metrics"
)

// Pricer values one house.
type Pricer interface {
	Price(ctx context.Context, f pricing.Features) (pricing.Prediction, error)
}

// Recorder stores the outcome of one batch item.
type Recorder interface {
	Record(ctx context.Context, jobID string, index int, item model.Item) error
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue() <-chan model.Task
}

// InMemoryWorker pulls tasks until the queue is drained or ctx is cancelled.
type InMemoryWorker struct {
	queue    Queue
	pricer   Pricer
	recorder Recorder
	name     string
	done     chan struct{}
	logger   logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(queue Queue, pricer Pricer, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		pricer:   pricer,
		recorder: recorder,
		name:     "worker",
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes tasks until the queue channel closes or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, t); err != nil {
				metrics.RecordWorkerFailure()
				w.logger.Warn(ctx, "dropping valuation outcome",
					logger.String("worker", w.name),
					logger.String("job_id", t.JobID),
					logger.Int("index", t.Index),
					logger.Error(err),
				)
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, t model.Task) error { //nolint:gocritic // hugeParam: tasks travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	item := model.Item{State: model.ItemDone, Generation: t.Generation}
	p, err := w.pricer.Price(ctx, t.Features)
	if err != nil {
		item = model.Item{State: model.ItemFailed, Err: err.Error(), Generation: t.Generation}
		w.logger.Debug(ctx, "batch item rejected",
			logger.String("job_id", t.JobID),
			logger.Int("index", t.Index),
			logger.Error(err),
		)
	} else {
		item.Price = p.Price
		item.Clamped = p.Clamped()
	}

	if err := w.recorder.Record(ctx, t.JobID, t.Index, item); err != nil {
		if errors.Is(err, model.ErrStaleItem) {
			w.logger.Debug(ctx, "dropped outcome of a replaced job",
				logger.String("job_id", t.JobID),
				logger.Int("index", t.Index),
			)
			return nil
		}
		return fmt.Errorf("record item %d of %s: %w", t.Index, t.JobID, err)
	}
	return nil
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
	once    sync.Once
}

// NewPool creates workerCount workers; a count below one means one per CPU.
func NewPool(workerCount int, queue Queue, pricer Pricer, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(queue, pricer, recorder, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	var closeErr error
	p.once.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			closeErr = closer.Close()
		}
	})
	if closeErr != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(closeErr))
	}

	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return errors.Join(closeErr, fmt.Errorf("shutdown timed out: %w", ctx.Err()))
		}
	}
	metrics.UpdateWorkerCount(0)
	return closeErr
}
