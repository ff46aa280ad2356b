// Package candidates builds and narrows the set of interactions that may
// explain an observed failure.
package candidates

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/example/faultloc-lite/interaction/domain"
)

// DefaultMaxCandidates caps generation when no limit is given.
const DefaultMaxCandidates = 2_000_000

// Pool holds labeled configurations.
type Pool struct {
	Passing []domain.Assignment
	Failing []domain.Assignment
}

// Add labels a configuration. failed is true for a failing result.
func (p *Pool) Add(config domain.Assignment, failed bool) {
	if failed {
		p.Failing = append(p.Failing, config)
	} else {
		p.Passing = append(p.Passing, config)
	}
}

// Len returns the number of labeled configurations.
func (p *Pool) Len() int {
	return len(p.Passing) + len(p.Failing)
}

// Clone returns an independent copy of the pool.
func (p *Pool) Clone() *Pool {
	return &Pool{
		Passing: append([]domain.Assignment(nil), p.Passing...),
		Failing: append([]domain.Assignment(nil), p.Failing...),
	}
}

// Generate enumerates every size-t subset of the non-core literals of each
// failing configuration, deduplicated, and drops those contained in a
// passing configuration. maxCandidates <= 0 uses DefaultMaxCandidates.
func Generate(pool *Pool, core domain.Assignment, t, maxCandidates int) ([]domain.Assignment, error) {
	if t < 1 {
		return nil, fmt.Errorf("%w: t must be at least 1, got %d", domain.ErrInvalidConfig, t)
	}
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	seen := make(map[string]struct{})
	var out []domain.Assignment
	for _, config := range pool.Failing {
		lits := config.RemoveVariables(core).Literals()
		err := combinations(lits, t, func(combo []domain.Literal) error {
			cand := domain.MustAssignment(combo...)
			key := cand.Key()
			if _, ok := seen[key]; ok {
				return nil
			}
			if len(seen) >= maxCandidates {
				return fmt.Errorf("%w: more than %d", domain.ErrTooManyCandidates, maxCandidates)
			}
			seen[key] = struct{}{}
			out = append(out, cand)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return lo.Filter(out, func(cand domain.Assignment, _ int) bool {
		return !lo.ContainsBy(pool.Passing, func(p domain.Assignment) bool {
			return p.ContainsAll(cand)
		})
	}), nil
}

// combinations calls fn with every size-t subset of lits, in lexicographic
// index order. The slice passed to fn is reused between calls.
func combinations(lits []domain.Literal, t int, fn func([]domain.Literal) error) error {
	n := len(lits)
	if t > n {
		return nil
	}
	idx := make([]int, t)
	for i := range idx {
		idx[i] = i
	}
	combo := make([]domain.Literal, t)
	for {
		for i, j := range idx {
			combo[i] = lits[j]
		}
		if err := fn(combo); err != nil {
			return err
		}
		i := t - 1
		for i >= 0 && idx[i] == n-t+i {
			i--
		}
		if i < 0 {
			return nil
		}
		idx[i]++
		for j := i + 1; j < t; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// Set is an ordered collection of distinct candidate interactions.
// It only ever shrinks.
type Set struct {
	items []domain.Assignment
}

// NewSet creates a set, dropping duplicates while keeping the first occurrence.
func NewSet(items []domain.Assignment) *Set {
	return &Set{items: lo.UniqBy(items, domain.Assignment.Key)}
}

// Len returns the number of candidates.
func (s *Set) Len() int {
	return len(s.items)
}

// Items returns a copy of the candidates.
func (s *Set) Items() []domain.Assignment {
	return append([]domain.Assignment(nil), s.items...)
}

// Partition splits the candidates into those contained in config and the rest.
func (s *Set) Partition(config domain.Assignment) (include, exclude []domain.Assignment) {
	return lo.FilterReject(s.items, func(c domain.Assignment, _ int) bool {
		return config.ContainsAll(c)
	})
}

// Apply narrows the set by one test result. A failing config keeps the
// candidates it contains, a passing one removes them. It returns the
// number of removed candidates.
func (s *Set) Apply(config domain.Assignment, failed bool) int {
	include, exclude := s.Partition(config)
	before := len(s.items)
	if failed {
		s.items = include
	} else {
		s.items = exclude
	}
	return before - len(s.items)
}

// Retain keeps only candidates for which keep returns true.
func (s *Set) Retain(keep func(domain.Assignment) bool) int {
	before := len(s.items)
	s.items = lo.Filter(s.items, func(c domain.Assignment, _ int) bool {
		return keep(c)
	})
	return before - len(s.items)
}

// LiteralCount is a literal with the number of candidates that hold it.
type LiteralCount struct {
	Literal domain.Literal
	Count   int
}

// Frequencies returns every literal used by a candidate, most frequent
// first. Ties are broken by variable, then by polarity.
func (s *Set) Frequencies() []LiteralCount {
	counts := make(map[domain.Literal]int)
	for _, c := range s.items {
		for _, l := range c.Literals() {
			counts[l]++
		}
	}
	out := make([]LiteralCount, 0, len(counts))
	for l, n := range counts {
		out = append(out, LiteralCount{Literal: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Literal.Var() != out[j].Literal.Var() {
			return out[i].Literal.Var() < out[j].Literal.Var()
		}
		return out[i].Literal < out[j].Literal
	})
	return out
}

// Literals returns the distinct literals of all candidates, ordered by
// variable.
func (s *Set) Literals() []domain.Literal {
	lits := lo.Uniq(lo.FlatMap(s.items, func(c domain.Assignment, _ int) []domain.Literal {
		return c.Literals()
	}))
	sort.Slice(lits, func(i, j int) bool {
		if lits[i].Var() != lits[j].Var() {
			return lits[i].Var() < lits[j].Var()
		}
		return lits[i] < lits[j]
	})
	return lits
}
