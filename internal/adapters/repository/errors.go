package repository

import "github.com/okian/houseprice/internal/domain/model"

// Re-exported so callers of the store need not import the domain package for lookups.
var (
	ErrNotFound = model.ErrJobNotFound
	ErrExists   = model.ErrJobExists
)
