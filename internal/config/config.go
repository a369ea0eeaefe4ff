// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns defaults; Load layers a YAML file and env vars on top.
// - Validation errors wrap ErrInvalidConfig, loading errors wrap ErrLoadConfig.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory valuation task queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of valuation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many batch request ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxJobs caps the valuation jobs kept in memory; the oldest is evicted.
	MaxJobs int `koanf:"max_jobs"`

	// MaxBatchSize caps the items accepted by one POST /valuations.
	MaxBatchSize int `koanf:"max_batch_size"`

	// EnforceLimits applies the form ranges before POST /predict and /report.
	EnforceLimits bool `koanf:"enforce_limits"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":9080",
		QueueSize:     10_000,
		WorkerCount:   runtime.NumCPU(),
		DedupeSize:    50_000,
		MaxJobs:       1_000,
		MaxBatchSize:  500,
		EnforceLimits: true,
	}
}
