package finder

import (
	"math"

	"github.com/example/faultloc-lite/interaction/domain"
)

// budgetConstant is the number of tests per halving of the candidate set.
var budgetConstant = 10.0 / math.Ln2

// Budget tracks completer and oracle calls against their limits.
// Counters only grow.
type Budget struct {
	CreationLimit     int
	VerificationLimit int

	creations     int
	verifications int
}

// NewBudget creates a budget. Use domain.NoLimit to disable a limit.
func NewBudget(creationLimit, verificationLimit int) *Budget {
	return &Budget{
		CreationLimit:     creationLimit,
		VerificationLimit: verificationLimit,
	}
}

// CanCreate reports whether another configuration may be completed.
func (b *Budget) CanCreate() bool {
	return domain.WithinLimit(b.creations, b.CreationLimit)
}

// CanVerify reports whether the oracle may be called again.
func (b *Budget) CanVerify() bool {
	return domain.WithinLimit(b.verifications, b.VerificationLimit)
}

// Created records one completed configuration.
func (b *Budget) Created() {
	b.creations++
}

// Verified records one oracle call.
func (b *Budget) Verified() {
	b.verifications++
}

// Creations returns the number of completed configurations.
func (b *Budget) Creations() int {
	return b.creations
}

// Verifications returns the number of oracle calls.
func (b *Budget) Verifications() int {
	return b.verifications
}

// DerivedLimit returns the verification limit for a level that starts
// with the given number of candidates: ceil(factor * 10/ln2 * ln(candidates)),
// capped by configured unless that is domain.NoLimit.
func DerivedLimit(configured int, factor float64, candidates int) int {
	if candidates < 1 {
		return 0
	}
	derived := int(math.Ceil(factor * budgetConstant * math.Log(float64(candidates))))
	if configured != domain.NoLimit && configured < derived {
		return configured
	}
	return derived
}
