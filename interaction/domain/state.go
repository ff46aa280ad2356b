package domain

import "fmt"

// SearchState represents the progress of a single search level.
type SearchState int

const (
	StateSeeded          SearchState = iota // Pool and collaborators are set
	StateGenerating                         // Candidates are being built
	StateTesting                            // Probe configurations are being tested
	StateConverged                          // At most one candidate left
	StateBudgetExhausted                    // A creation or verification limit was hit
	StateInfeasible                         // The completer can't produce another probe
	StateNoResult                           // Nothing to search or nothing left
)

func (s SearchState) String() string {
	switch s {
	case StateSeeded:
		return "SEEDED"
	case StateGenerating:
		return "GENERATING"
	case StateTesting:
		return "TESTING"
	case StateConverged:
		return "CONVERGED"
	case StateBudgetExhausted:
		return "BUDGET_EXHAUSTED"
	case StateInfeasible:
		return "INFEASIBLE"
	case StateNoResult:
		return "NO_RESULT"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal returns true if this is a final state.
func (s SearchState) IsTerminal() bool {
	switch s {
	case StateConverged, StateBudgetExhausted, StateInfeasible, StateNoResult:
		return true
	default:
		return false
	}
}

var allowedTransitions = map[SearchState][]SearchState{
	StateSeeded:     {StateGenerating},
	StateGenerating: {StateTesting, StateNoResult},
	StateTesting:    {StateConverged, StateBudgetExhausted, StateInfeasible, StateNoResult},
}

// CanTransition reports whether moving from s to next is allowed.
func (s SearchState) CanTransition(next SearchState) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition moves s to next or returns ErrInvalidState.
func (s *SearchState) Transition(next SearchState) error {
	if s.IsTerminal() {
		return fmt.Errorf("%w: cannot transition from terminal state %s",
			ErrInvalidState, *s)
	}
	if !s.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, *s, next)
	}
	*s = next
	return nil
}
