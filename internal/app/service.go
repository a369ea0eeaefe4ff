// Package service wires the pricing model, range checks and the batch
// pipeline into the dependencies the HTTP API needs.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	taskqueue "github.com/okian/houseprice/internal/adapters/mq/queue"
	workerpool "github.com/okian/houseprice/internal/adapters/mq/worker"
	"github.com/okian/houseprice/internal/adapters/repository"
	"github.com/okian/houseprice/internal/domain/dedupe"
	"github.com/okian/houseprice/internal/domain/limits"
	"github.com/okian/houseprice/internal/domain/model"
	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/pkg/logger"
	"github.com/okian/houseprice/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// Service prices houses synchronously and in batches.
type Service struct {
	mu sync.RWMutex

	model         pricing.Model
	limits        limits.Limits
	enforceLimits bool

	jobs    repository.Store
	deduper dedupe.Deduper
	queue   *taskqueue.InMemoryQueue
	pool    *workerpool.Pool

	workerCount  int
	queueSize    int
	dedupeSize   int
	maxJobs      int
	maxBatchSize int

	started bool
	logger  logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		model:         pricing.Default(),
		limits:        limits.Default(),
		enforceLimits: true,
		workerCount:   runtime.NumCPU(),
		queueSize:     10_000,
		dedupeSize:    50_000,
		maxJobs:       1_000,
		maxBatchSize:  500,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start creates the batch pipeline and launches the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.jobs = repository.NewMemoryStore(repository.WithMaxJobs(s.maxJobs))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = taskqueue.NewInMemoryQueue(taskqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, pricer{s}, s.jobs)
	// workers outlive the request that started the service
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "valuation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("max_jobs", s.maxJobs),
		logger.Bool("enforce_limits", s.enforceLimits),
	)
	return nil
}

// Stop drains the queue and waits for the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "valuation service stopped")
}

// Model returns the coefficients in use.
func (s *Service) Model() pricing.Model { return s.model }

// Limits returns the accepted attribute ranges.
func (s *Service) Limits() limits.Limits { return s.limits }

// Predict values one house, enforcing ranges when configured to.
func (s *Service) Predict(ctx context.Context, f pricing.Features) (pricing.Prediction, error) {
	return s.price(ctx, f, s.enforceLimits)
}

// Evaluate values one house without range checks.
func (s *Service) Evaluate(ctx context.Context, f pricing.Features) (pricing.Prediction, error) {
	return s.price(ctx, f, false)
}

func (s *Service) price(ctx context.Context, f pricing.Features, checkLimits bool) (pricing.Prediction, error) {
	p, err := s.model.Predict(f)
	if err != nil {
		var invalid *pricing.InvalidInputError
		if errors.As(err, &invalid) {
			metrics.RecordInvalidInput(invalid.Attribute, string(invalid.Reason))
		}
		return pricing.Prediction{}, err
	}

	// missing or malformed values are invalid input, never range violations
	if checkLimits {
		if err := s.limits.Check(f); err != nil {
			var vs limits.Violations
			if errors.As(err, &vs) {
				for _, v := range vs {
					metrics.RecordLimitViolation(v.Attribute)
				}
			}
			return pricing.Prediction{}, err
		}
	}

	metrics.RecordPrediction(p.Price, p.Clamped())
	if p.Clamped() {
		s.logger.Debug(ctx, "negative estimate clamped to zero", logger.Float64("raw_price", p.RawPrice))
	}
	return p, nil
}

// Report renders the text report for a prediction.
func (s *Service) Report(_ context.Context, p pricing.Prediction) string {
	metrics.RecordReport()
	return s.model.Report(p)
}

// Importance ranks the attributes by coefficient magnitude.
func (s *Service) Importance(_ context.Context) []pricing.Importance {
	return s.model.Importance()
}

// SubmitValuation queues a batch. The job id is requestID when given,
// otherwise a fresh UUID. duplicate is true when requestID was already submitted.
func (s *Service) SubmitValuation(ctx context.Context, requestID string, items []pricing.Features) (jobID string, duplicate bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return "", false, model.ErrNotStarted
	}
	switch {
	case len(items) == 0:
		metrics.RecordJobSubmitted("invalid")
		return "", false, model.ErrEmptyBatch
	case len(items) > s.maxBatchSize:
		metrics.RecordJobSubmitted("invalid")
		return "", false, fmt.Errorf("%w: %d items, at most %d", model.ErrBatchTooLarge, len(items), s.maxBatchSize)
	}

	jobID = requestID
	if jobID == "" {
		jobID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, jobID) {
		metrics.RecordJobSubmitted("duplicate")
		s.logger.Debug(ctx, "duplicate batch submission", logger.String("job_id", jobID))
		return jobID, true, nil
	}

	if free := s.queue.Free(); free < len(items) {
		s.deduper.Unrecord(ctx, jobID)
		metrics.RecordJobSubmitted("rejected")
		return "", false, fmt.Errorf("%w: %d free slots for %d items", model.ErrBackpressure, free, len(items))
	}

	job, err := s.jobs.Create(ctx, jobID, len(items))
	if err != nil {
		if errors.Is(err, model.ErrJobExists) {
			metrics.RecordJobSubmitted("duplicate")
			return jobID, true, nil
		}
		s.deduper.Unrecord(ctx, jobID)
		return "", false, err
	}

	now := time.Now()
	for i, f := range items {
		task := model.Task{JobID: jobID, Generation: job.Generation, Index: i, Features: f, Enqueued: now}
		if err := s.queue.Enqueue(ctx, task); err != nil {
			// tasks already queued still run; the store drops their outcomes by generation
			_ = s.jobs.Delete(ctx, jobID)
			s.deduper.Unrecord(ctx, jobID)
			metrics.RecordJobSubmitted("rejected")
			s.logger.Warn(ctx, "batch rejected mid-enqueue",
				logger.String("job_id", jobID),
				logger.Int("enqueued", i),
				logger.Error(err),
			)
			return "", false, fmt.Errorf("%w: %w", model.ErrBackpressure, err)
		}
	}

	metrics.RecordJobSubmitted("accepted")
	s.logger.Info(ctx, "batch accepted", logger.String("job_id", jobID), logger.Int("items", len(items)))
	return jobID, false, nil
}

// Valuation returns the current state of a batch job.
func (s *Service) Valuation(ctx context.Context, jobID string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.Job{}, model.ErrNotStarted
	}
	return s.jobs.Get(ctx, jobID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"maxJobs":       s.maxJobs,
		"maxBatchSize":  s.maxBatchSize,
		"enforceLimits": s.enforceLimits,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["jobsTracked"] = s.jobs.Count(ctx)
		stats["requestIdsSeen"] = s.deduper.Size()
	}
	return stats
}

// pricer adapts the service to the worker's Pricer.
type pricer struct{ s *Service }

func (p pricer) Price(ctx context.Context, f pricing.Features) (pricing.Prediction, error) {
	return p.s.price(ctx, f, p.s.enforceLimits)
}
