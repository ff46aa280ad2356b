package finder

import (
	"context"

	"github.com/example/faultloc-lite/interaction/domain"
)

// IterativeFinder runs a strategy for t = 1..T against one budget.
// A level that converges is confirmed with one more configuration
// containing the interaction; a confirming failure ends the sweep.
type IterativeFinder struct {
	*Finder
}

// NewIterative wraps the prober of inner.
func NewIterative(name string, inner *Finder) *IterativeFinder {
	return &IterativeFinder{
		Finder: newFinder(name, inner.derived, inner.newProber),
	}
}

// Find implements InteractionFinder. t is the largest size searched.
func (f *IterativeFinder) Find(ctx context.Context, t int) (*domain.FindResult, error) {
	if err := f.begin(t); err != nil {
		return nil, err
	}

	var last *domain.FindResult
	for size := 1; size <= t; size++ {
		r, err := f.searchLevel(ctx, size, f.newProber())
		if err != nil {
			return nil, err
		}
		if r.Found() || last == nil {
			last = r
		}
		if r.State == domain.StateBudgetExhausted {
			break
		}
		if r.Outcome != domain.OutcomeConverged {
			continue
		}

		failed, ok, err := f.confirm(ctx, r.Interactions[0])
		if err != nil {
			return nil, err
		}
		f.logger.Debug("level confirmed",
			"finder", f.name,
			"t", size,
			"tested", ok,
			"failed", failed)
		if !ok {
			// Out of budget or no configuration left: keep the answer.
			break
		}
		if failed {
			break
		}
	}
	last.VerifyCount = f.budget.Verifications()
	last.CreationCount = f.budget.Creations()
	return last, nil
}
