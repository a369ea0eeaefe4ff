package service

import (
	"github.com/okian/houseprice/internal/domain/limits"
	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModel replaces the default coefficients.
func WithModel(m pricing.Model) Option {
	return func(s *Service) {
		s.model = m
	}
}

// WithLimits sets the accepted attribute ranges.
func WithLimits(l limits.Limits) Option {
	return func(s *Service) {
		s.limits = l
	}
}

// WithEnforceLimits toggles range checks on Predict and batch items.
func WithEnforceLimits(enforce bool) Option {
	return func(s *Service) {
		s.enforceLimits = enforce
	}
}

// WithWorkerCount sets the number of batch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued batch items.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many batch request ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxJobs sets how many batch jobs are kept before the oldest is evicted.
func WithMaxJobs(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxJobs = n
		}
	}
}

// WithMaxBatchSize sets the largest accepted batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
