package storage

import (
	"context"
)

// ListOptions provides filtering options for run listings.
type ListOptions struct {
	// SweepID restricts results to one sweep (empty = all)
	SweepID string

	// ModelID and AlgorithmID restrict results (empty = all)
	ModelID     string
	AlgorithmID string

	// Outcomes to filter by (empty = all)
	Outcomes []string

	// Pagination
	Limit  int
	Offset int
}

// ModelRepository provides access to feature model storage.
type ModelRepository interface {
	// Create creates a new Model.
	Create(ctx context.Context, m *Model) error

	// Get retrieves a Model by ID.
	Get(ctx context.Context, id string) (*Model, error)

	// GetByName retrieves a Model by its unique name.
	GetByName(ctx context.Context, name string) (*Model, error)

	// List lists all models ordered by name.
	List(ctx context.Context) ([]*Model, error)
}

// AlgorithmRepository provides access to algorithm configuration storage.
type AlgorithmRepository interface {
	// Create creates a new Algorithm.
	Create(ctx context.Context, a *Algorithm) error

	// Get retrieves an Algorithm by ID.
	Get(ctx context.Context, id string) (*Algorithm, error)

	// List lists all algorithms in creation order.
	List(ctx context.Context) ([]*Algorithm, error)
}

// RunRepository provides access to run storage.
type RunRepository interface {
	// Create creates a new Run.
	Create(ctx context.Context, run *Run) error

	// Get retrieves a Run by ID.
	Get(ctx context.Context, id string) (*Run, error)

	// List lists runs with optional filtering.
	List(ctx context.Context, opts ListOptions) ([]*Run, error)

	// Delete deletes a Run and its statistics.
	Delete(ctx context.Context, id string) error
}

// StatisticRepository provides access to per-iteration statistics.
type StatisticRepository interface {
	// CreateBatch stores the statistics of one run.
	CreateBatch(ctx context.Context, runID string, rows []*StatisticRow) error

	// ListByRun retrieves the statistics of a run in iteration order.
	ListByRun(ctx context.Context, runID string) ([]*StatisticRow, error)
}

// UnitOfWork provides transactional access to all repositories.
type UnitOfWork interface {
	// Repository accessors
	Models() ModelRepository
	Algorithms() AlgorithmRepository
	Runs() RunRepository
	Statistics() StatisticRepository

	// Transaction control
	Commit() error
	Rollback() error
}

// Storage provides the main entry point for storage operations.
type Storage interface {
	// Begin starts a new transaction and returns a UnitOfWork.
	Begin(ctx context.Context) (UnitOfWork, error)

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate(ctx context.Context) error
}
