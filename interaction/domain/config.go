package domain

import "fmt"

// NoLimit disables a creation or verification limit.
const NoLimit = -1

// MaxT is the largest interaction size a finder accepts.
const MaxT = 10

// FinderConfig holds configuration for an interaction finder invocation.
type FinderConfig struct {
	// T is the interaction size to search for. Iterative strategies treat it
	// as the upper bound and search t = 1..T.
	// Default: 2
	T int

	// CreationLimit caps the number of configurations the completer may
	// produce. 0 forbids any completion, NoLimit removes the cap.
	// WithDefaults leaves it alone since 0 is meaningful.
	// Default: NoLimit
	CreationLimit int

	// VerificationLimit caps the number of oracle calls. 0 forbids any
	// call, NoLimit removes the cap.
	// WithDefaults leaves it alone since 0 is meaningful.
	// Default: NoLimit
	VerificationLimit int

	// LimitFactor scales the verification budget derived from the number
	// of candidates.
	// Default: 1.0
	LimitFactor float64

	// FalsePositiveRate is the probability that a failing configuration
	// is reported as passing by the oracle.
	// Default: 0
	FalsePositiveRate float64

	// FalseNegativeRate is the probability that a passing configuration
	// is reported as failing by the oracle.
	// Default: 0
	FalseNegativeRate float64

	// RandomSeed seeds the completer and the oracle noise a run is built
	// with. The finder itself only carries it.
	// Use 0 for a time based seed, or a specific value for reproducibility.
	// Default: 0
	RandomSeed int64

	// RepeatRounds is the number of rounds the Repeat strategy runs.
	// Default: 3
	RepeatRounds int

	// MaxCandidates caps the number of generated candidate interactions.
	// Default: 2,000,000
	MaxCandidates int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() FinderConfig {
	return FinderConfig{
		T:                 2,
		CreationLimit:     NoLimit,
		VerificationLimit: NoLimit,
		LimitFactor:       1.0,
		FalsePositiveRate: 0,
		FalseNegativeRate: 0,
		RandomSeed:        0,
		RepeatRounds:      3,
		MaxCandidates:     2_000_000,
	}
}

// Validate checks that the configuration is valid.
func (c *FinderConfig) Validate() error {
	if c.T < 1 {
		return fmt.Errorf("%w: T must be at least 1, got %d",
			ErrInvalidConfig, c.T)
	}
	if c.T > MaxT {
		return fmt.Errorf("%w: T must be at most %d, got %d",
			ErrInvalidConfig, MaxT, c.T)
	}
	if c.CreationLimit < NoLimit {
		return fmt.Errorf("%w: CreationLimit must be >= %d, got %d",
			ErrInvalidConfig, NoLimit, c.CreationLimit)
	}
	if c.VerificationLimit < NoLimit {
		return fmt.Errorf("%w: VerificationLimit must be >= %d, got %d",
			ErrInvalidConfig, NoLimit, c.VerificationLimit)
	}
	if c.LimitFactor <= 0 {
		return fmt.Errorf("%w: LimitFactor must be positive, got %f",
			ErrInvalidConfig, c.LimitFactor)
	}
	if c.FalsePositiveRate < 0 || c.FalsePositiveRate > 1 {
		return fmt.Errorf("%w: FalsePositiveRate must be between 0 and 1, got %f",
			ErrInvalidConfig, c.FalsePositiveRate)
	}
	if c.FalseNegativeRate < 0 || c.FalseNegativeRate > 1 {
		return fmt.Errorf("%w: FalseNegativeRate must be between 0 and 1, got %f",
			ErrInvalidConfig, c.FalseNegativeRate)
	}
	if c.RepeatRounds < 1 {
		return fmt.Errorf("%w: RepeatRounds must be at least 1, got %d",
			ErrInvalidConfig, c.RepeatRounds)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("%w: MaxCandidates must be at least 1, got %d",
			ErrInvalidConfig, c.MaxCandidates)
	}
	return nil
}

// WithDefaults returns a new config with defaults applied for zero values.
func (c FinderConfig) WithDefaults() FinderConfig {
	defaults := DefaultConfig()
	if c.T == 0 {
		c.T = defaults.T
	}
	if c.LimitFactor == 0 {
		c.LimitFactor = defaults.LimitFactor
	}
	if c.RepeatRounds == 0 {
		c.RepeatRounds = defaults.RepeatRounds
	}
	if c.MaxCandidates == 0 {
		c.MaxCandidates = defaults.MaxCandidates
	}
	return c
}

// WithinLimit reports whether count is still below limit.
func WithinLimit(count, limit int) bool {
	return limit == NoLimit || count < limit
}
