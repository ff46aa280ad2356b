package domain

// Outcome describes how a search level ended.
type Outcome int

const (
	OutcomeUnknown         Outcome = iota
	OutcomeConverged               // Exactly one candidate remains
	OutcomeAmbiguous               // More than one candidate remains, no further probe possible
	OutcomeBudgetExhausted         // A limit was hit with more than one candidate left
	OutcomeEmpty                   // Every candidate was eliminated
	OutcomeNoResult                // Nothing to search (no failure, no candidate)
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConverged:
		return "CONVERGED"
	case OutcomeAmbiguous:
		return "AMBIGUOUS"
	case OutcomeBudgetExhausted:
		return "BUDGET_EXHAUSTED"
	case OutcomeEmpty:
		return "EMPTY"
	case OutcomeNoResult:
		return "NO_RESULT"
	default:
		return "UNKNOWN"
	}
}

// ParseOutcome is the inverse of Outcome.String. Unknown names map to
// OutcomeUnknown.
func ParseOutcome(s string) Outcome {
	for o := OutcomeConverged; o <= OutcomeNoResult; o++ {
		if o.String() == s {
			return o
		}
	}
	return OutcomeUnknown
}

// HasInteractions returns true if the outcome carries remaining candidates.
func (o Outcome) HasInteractions() bool {
	return o == OutcomeConverged || o == OutcomeAmbiguous || o == OutcomeBudgetExhausted
}

// FindResult is what a finder returns for one call to Find.
type FindResult struct {
	// T is the interaction size of the level that produced the result.
	T int

	// Outcome tells a singleton apart from an ambiguous or empty remainder.
	Outcome Outcome

	// State is the terminal state of the search.
	State SearchState

	// Interactions are the remaining candidates, in candidate order.
	Interactions []Assignment

	// Merged is the union of Interactions. It is nil when there are no
	// interactions or when they contradict each other.
	Merged *Assignment

	// VerifyCount is the number of oracle calls made.
	VerifyCount int

	// CreationCount is the number of configurations the completer produced.
	CreationCount int
}

// Found returns true if the result names at least one interaction.
func (r *FindResult) Found() bool {
	return r != nil && r.Outcome.HasInteractions() && len(r.Interactions) > 0
}

// NewFindResult computes the outcome and merged interaction for the
// remaining candidates. A level that stopped on a limit passes
// StateBudgetExhausted.
func NewFindResult(t int, remaining []Assignment, state SearchState) *FindResult {
	r := &FindResult{
		T:            t,
		State:        state,
		Interactions: remaining,
	}
	switch {
	case len(remaining) == 0:
		r.Outcome = OutcomeEmpty
	case len(remaining) == 1:
		r.Outcome = OutcomeConverged
	case state == StateBudgetExhausted:
		r.Outcome = OutcomeBudgetExhausted
	default:
		r.Outcome = OutcomeAmbiguous
	}
	if len(remaining) > 0 {
		if merged, err := Merge(remaining); err == nil {
			r.Merged = &merged
		}
	}
	return r
}

// NoResult returns the result of a search that had nothing to test.
func NoResult(t int) *FindResult {
	return &FindResult{
		T:       t,
		Outcome: OutcomeNoResult,
		State:   StateNoResult,
	}
}
