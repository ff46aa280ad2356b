package finder

import (
	"context"
	"fmt"

	"github.com/example/faultloc-lite/interaction/domain"
)

// RepeatFinder re-runs an inner strategy for several rounds over one pool
// and one budget, then takes the majority answer.
type RepeatFinder struct {
	*Finder
}

// NewRepeat wraps the prober of inner.
func NewRepeat(inner *Finder) *RepeatFinder {
	return &RepeatFinder{
		Finder: newFinder("repeat", inner.derived, inner.newProber),
	}
}

// Find implements InteractionFinder. Every round's probes join the pool,
// so later rounds start from a smaller candidate set.
func (f *RepeatFinder) Find(ctx context.Context, t int) (*domain.FindResult, error) {
	if err := f.begin(t); err != nil {
		return nil, err
	}

	rounds := f.cfg.RepeatRounds
	results := make([]*domain.FindResult, 0, rounds)
	for round := 0; round < rounds; round++ {
		r, err := f.searchLevel(ctx, t, f.newProber())
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round+1, err)
		}
		results = append(results, r)
		f.logger.Debug("round finished",
			"finder", f.name,
			"round", round+1,
			"outcome", r.Outcome.String(),
			"interactions", len(r.Interactions))
		if r.State == domain.StateBudgetExhausted || r.Outcome == domain.OutcomeNoResult {
			break
		}
	}

	winner, _ := AggregateByMajority(results)
	if winner < 0 {
		winner = len(results) - 1
	}
	r := results[winner]
	r.VerifyCount = f.budget.Verifications()
	r.CreationCount = f.budget.Creations()
	return r, nil
}
