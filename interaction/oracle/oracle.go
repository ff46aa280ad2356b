// Package oracle decides whether a configuration triggers a failure.
package oracle

import (
	"context"
	"math/rand"

	"github.com/example/faultloc-lite/interaction/domain"
)

// Verifier tests a complete configuration.
type Verifier interface {
	// Test returns 0 if the configuration passes, or k >= 1 naming the
	// first failure-inducing interaction it contains.
	Test(ctx context.Context, config domain.Assignment) (int, error)
}

// NoisyOracle is a Verifier backed by known faulty interactions.
// Its noise is derived from a hash of the configuration, so the same
// configuration always gets the same answer. It is safe for concurrent use
// once built.
type NoisyOracle struct {
	interactions []domain.Assignment

	// FalsePositiveRate is the probability that a failing configuration
	// reads as passing.
	FalsePositiveRate float64

	// FalseNegativeRate is the probability that a passing configuration
	// reads as failing.
	FalseNegativeRate float64

	// Seed is mixed into the per-configuration hash.
	Seed int64
}

// NewNoisyOracle creates a noiseless oracle for the given faulty interactions.
func NewNoisyOracle(interactions ...domain.Assignment) *NoisyOracle {
	return &NoisyOracle{interactions: interactions}
}

// WithFalsePositiveRate sets the probability of hiding a failure.
func (o *NoisyOracle) WithFalsePositiveRate(rate float64) *NoisyOracle {
	o.FalsePositiveRate = rate
	return o
}

// WithFalseNegativeRate sets the probability of reporting a spurious failure.
func (o *NoisyOracle) WithFalseNegativeRate(rate float64) *NoisyOracle {
	o.FalseNegativeRate = rate
	return o
}

// WithSeed sets the noise seed.
func (o *NoisyOracle) WithSeed(seed int64) *NoisyOracle {
	o.Seed = seed
	return o
}

// Interactions returns the faulty interactions in registration order.
func (o *NoisyOracle) Interactions() []domain.Assignment {
	out := make([]domain.Assignment, len(o.interactions))
	copy(out, o.interactions)
	return out
}

// Truth returns the noiseless answer for config.
func (o *NoisyOracle) Truth(config domain.Assignment) int {
	for i, inter := range o.interactions {
		if config.ContainsAll(inter) {
			return i + 1
		}
	}
	return 0
}

// Test implements Verifier.
func (o *NoisyOracle) Test(ctx context.Context, config domain.Assignment) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result := o.Truth(config)
	if o.FalsePositiveRate == 0 && o.FalseNegativeRate == 0 {
		return result, nil
	}

	rng := rand.New(rand.NewSource(config.Hash() ^ o.Seed))
	if result == 0 {
		if len(o.interactions) > 0 && rng.Float64() < o.FalseNegativeRate {
			return rng.Intn(len(o.interactions)) + 1, nil
		}
		return 0, nil
	}
	if rng.Float64() < o.FalsePositiveRate {
		return 0, nil
	}
	return result, nil
}

// Label tests every configuration and splits them by outcome.
func Label(ctx context.Context, v Verifier, configs []domain.Assignment) (passing, failing []domain.Assignment, err error) {
	for _, c := range configs {
		res, err := v.Test(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		if res == 0 {
			passing = append(passing, c)
		} else {
			failing = append(failing, c)
		}
	}
	return passing, failing, nil
}
