// Package generator builds synthetic fault scenarios: faulty interactions
// drawn from valid configurations, plus a sample of configurations to start
// the search from.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/example/faultloc-lite/interaction/completer"
	"github.com/example/faultloc-lite/interaction/domain"
)

// Config controls scenario generation.
type Config struct {
	// Interactions is the number of faulty interactions.
	// Default: 1
	Interactions int

	// Size is the number of literals per faulty interaction.
	// Default: 2
	Size int

	// SampleSize is the number of distinct configurations in the sample.
	// Default: 20
	SampleSize int

	// EnsureFailing makes the first sample configuration contain the first
	// faulty interaction, so the sample holds at least one failure.
	EnsureFailing bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Interactions:  1,
		Size:          2,
		SampleSize:    20,
		EnsureFailing: true,
	}
}

// WithDefaults returns a new config with defaults applied for zero values.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()
	if c.Interactions == 0 {
		c.Interactions = defaults.Interactions
	}
	if c.Size == 0 {
		c.Size = defaults.Size
	}
	if c.SampleSize == 0 {
		c.SampleSize = defaults.SampleSize
	}
	return c
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Interactions < 1 {
		return fmt.Errorf("%w: Interactions must be at least 1, got %d",
			domain.ErrInvalidConfig, c.Interactions)
	}
	if c.Size < 1 || c.Size > domain.MaxT {
		return fmt.Errorf("%w: Size must be between 1 and %d, got %d",
			domain.ErrInvalidConfig, domain.MaxT, c.Size)
	}
	if c.SampleSize < 0 {
		return fmt.Errorf("%w: SampleSize must not be negative, got %d",
			domain.ErrInvalidConfig, c.SampleSize)
	}
	return nil
}

// Scenario is a generated fault setup.
type Scenario struct {
	// Faulty are the ground truth interactions.
	Faulty []domain.Assignment

	// FaultyUpdated are the faulty interactions closed under the model.
	FaultyUpdated []domain.Assignment

	// Core holds the core and dead literals of the model.
	Core domain.Assignment

	// Sample are distinct valid configurations.
	Sample []domain.Assignment
}

// Generator creates scenarios for one model.
type Generator struct {
	completer *completer.SATCompleter
	rng       *rand.Rand
}

// New creates a generator. The completer decides the random solutions,
// seed decides which of their literals become faulty.
func New(c *completer.SATCompleter, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		completer: c,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Generate builds a scenario.
func (g *Generator) Generate(ctx context.Context, cfg Config) (*Scenario, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	core, err := g.completer.CoreDead(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing core: %w", err)
	}

	s := &Scenario{Core: core}
	for i := 0; i < cfg.Interactions; i++ {
		inter, err := g.Interaction(ctx, core, cfg.Size)
		if err != nil {
			return nil, err
		}
		updated, err := g.completer.Update(ctx, inter)
		if err != nil {
			return nil, fmt.Errorf("updating interaction %v: %w", inter, err)
		}
		s.Faulty = append(s.Faulty, inter)
		s.FaultyUpdated = append(s.FaultyUpdated, updated)
	}

	var failing domain.Assignment
	if cfg.EnsureFailing {
		failing = s.Faulty[0]
	}
	s.Sample, err = g.Sample(ctx, failing, cfg.SampleSize)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Sample returns up to size distinct valid configurations. A non-empty
// failing interaction is contained in the first one. Fewer configurations
// are returned when the model has no more.
func (g *Generator) Sample(ctx context.Context, failing domain.Assignment, size int) ([]domain.Assignment, error) {
	var sample []domain.Assignment
	for len(sample) < size {
		partial := domain.Assignment{}
		if len(sample) == 0 {
			partial = failing
		}
		config, err := g.completer.Complete(ctx, partial, sample)
		if errors.Is(err, domain.ErrInfeasible) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("completing sample: %w", err)
		}
		sample = append(sample, config)
	}
	return sample, nil
}

// Interaction picks size distinct non-core literals of a random valid
// configuration.
func (g *Generator) Interaction(ctx context.Context, core domain.Assignment, size int) (domain.Assignment, error) {
	solution, err := g.completer.Complete(ctx, domain.Assignment{}, nil)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("completing solution: %w", err)
	}
	free := solution.RemoveVariables(core).Literals()
	if len(free) < size {
		return domain.Assignment{}, fmt.Errorf("%w: only %d non-core literals for size %d",
			domain.ErrInvalidConfig, len(free), size)
	}
	g.rng.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})
	return domain.NewAssignment(free[:size]...)
}
