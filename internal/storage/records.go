package storage

import (
	"time"

	"github.com/example/faultloc-lite/interaction/domain"
)

// Model is a feature model a sweep runs against.
type Model struct {
	ID         string
	Name       string
	NumVars    int
	NumClauses int
	CreatedAt  time.Time
}

// Algorithm is one configured search strategy of a sweep.
type Algorithm struct {
	ID        string
	Name      string
	Config    domain.FinderConfig
	CreatedAt time.Time
}

// Run is the persisted outcome of one search invocation.
type Run struct {
	ID          string
	SweepID     string
	ModelID     string
	AlgorithmID string

	// Scenario indexes the fault scenario of the model the run searched.
	Scenario int

	// Iteration distinguishes repeated runs of the same model and algorithm.
	Iteration int
	T         int
	Outcome   string

	Faulty        []domain.Assignment
	FaultyUpdated []domain.Assignment
	Found         []domain.Assignment
	Merged        *domain.Assignment
	MergedUpdated *domain.Assignment

	VerifyCount   int
	CreationCount int
	Elapsed       time.Duration
	TimedOut      bool
	Errored       bool
	ErrorMessage  string

	CreatedAt time.Time
}

// StatisticRow is one persisted per-iteration snapshot.
type StatisticRow struct {
	ID    int64
	RunID string
	domain.Statistic
}
