// Package completer turns partial assignments into valid configurations
// of a feature model.
package completer

import (
	"context"

	"github.com/example/faultloc-lite/interaction/domain"
)

// Completer produces valid configurations and reasons about the model.
type Completer interface {
	// Complete extends partial to a valid configuration that contains no
	// exclusion entirely. Returns domain.ErrInfeasible when none exists.
	Complete(ctx context.Context, partial domain.Assignment, exclusions []domain.Assignment) (domain.Assignment, error)

	// CompleteBest returns a valid configuration covering about half of
	// the candidates.
	CompleteBest(ctx context.Context, candidates []domain.Assignment, exclusions []domain.Assignment) (domain.Assignment, error)

	// Update returns the interaction together with every literal the
	// model implies from it.
	Update(ctx context.Context, interaction domain.Assignment) (domain.Assignment, error)

	// Merge returns the union of the interactions.
	Merge(interactions []domain.Assignment) (domain.Assignment, error)
}
