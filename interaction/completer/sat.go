package completer

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/example/faultloc-lite/interaction/domain"
)

// SATCompleter completes configurations with the gini SAT solver.
// Completions are randomized from a seeded PRNG, so a completer built with
// the same seed produces the same sequence of configurations.
type SATCompleter struct {
	mu    sync.Mutex
	model *Model
	base  *gini.Gini
	rng   *rand.Rand
	unsat bool
}

// NewSATCompleter loads the model into a solver.
// Use seed 0 for a time based seed.
func NewSATCompleter(model *Model, seed int64) *SATCompleter {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := gini.NewV(model.NumVars)
	for _, c := range model.Clauses {
		for _, l := range c {
			g.Add(z.Dimacs2Lit(l))
		}
		g.Add(z.LitNull)
	}
	// Variables that no clause mentions still need solver values.
	top := z.Var(model.NumVars)
	g.Add(top.Pos())
	g.Add(top.Neg())
	g.Add(z.LitNull)

	s := &SATCompleter{
		model: model,
		base:  g,
		rng:   rand.New(rand.NewSource(seed)),
	}
	s.unsat = g.Copy().Solve() != 1
	return s
}

// Model returns the underlying feature model.
func (s *SATCompleter) Model() *Model {
	return s.model
}

func toLits(a domain.Assignment) []z.Lit {
	out := make([]z.Lit, a.Len())
	for i, l := range a.Literals() {
		out[i] = z.Dimacs2Lit(int(l))
	}
	return out
}

// solver returns a copy of the base solver with a blocking clause for
// every exclusion.
func (s *SATCompleter) solver(exclusions []domain.Assignment) (*gini.Gini, error) {
	if s.unsat {
		return nil, domain.ErrInfeasible
	}
	g := s.base.Copy()
	for _, e := range exclusions {
		if e.IsEmpty() {
			return nil, domain.ErrInfeasible
		}
		for _, l := range e.Literals() {
			g.Add(z.Dimacs2Lit(int(l.Negate())))
		}
		g.Add(z.LitNull)
	}
	return g, nil
}

func (s *SATCompleter) checkRange(a domain.Assignment) error {
	for _, l := range a.Literals() {
		if l.Var() > s.model.NumVars {
			return fmt.Errorf("%w: %d outside model with %d variables",
				domain.ErrInvalidLiteral, l, s.model.NumVars)
		}
	}
	return nil
}

func solveUnder(g *gini.Gini, assumptions []z.Lit) bool {
	g.Assume(assumptions...)
	return g.Solve() == 1
}

// complete extends the fixed literals one random variable at a time.
// A literal that agrees with the last model is kept without solving.
func (s *SATCompleter) complete(ctx context.Context, g *gini.Gini, fixed []z.Lit) (domain.Assignment, error) {
	if !solveUnder(g, fixed) {
		return domain.Assignment{}, domain.ErrInfeasible
	}

	n := s.model.NumVars
	values := make([]bool, n+1)
	for v := 1; v <= n; v++ {
		values[v] = g.Value(z.Var(v).Pos())
	}
	assigned := make([]bool, n+1)
	for _, m := range fixed {
		assigned[int(m.Var())] = true
	}

	for _, idx := range s.rng.Perm(n) {
		v := idx + 1
		if assigned[v] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return domain.Assignment{}, err
		}
		want := s.rng.Intn(2) == 0
		lit := z.Var(v).Pos()
		if !want {
			lit = lit.Not()
		}
		assigned[v] = true
		if values[v] == want {
			fixed = append(fixed, lit)
			continue
		}
		if solveUnder(g, append(fixed, lit)) {
			fixed = append(fixed, lit)
			for u := 1; u <= n; u++ {
				values[u] = g.Value(z.Var(u).Pos())
			}
			continue
		}
		fixed = append(fixed, lit.Not())
	}

	lits := make([]domain.Literal, n)
	for v := 1; v <= n; v++ {
		if values[v] {
			lits[v-1] = domain.Literal(v)
		} else {
			lits[v-1] = domain.Literal(-v)
		}
	}
	return domain.NewAssignment(lits...)
}

// Complete implements Completer.
func (s *SATCompleter) Complete(ctx context.Context, partial domain.Assignment, exclusions []domain.Assignment) (domain.Assignment, error) {
	if err := s.checkRange(partial); err != nil {
		return domain.Assignment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.solver(exclusions)
	if err != nil {
		return domain.Assignment{}, err
	}
	return s.complete(ctx, g, toLits(partial))
}

// CompleteBest implements Completer. Candidates are visited in random
// order and kept while the model stays satisfiable, until half of them
// are covered.
func (s *SATCompleter) CompleteBest(ctx context.Context, candidates []domain.Assignment, exclusions []domain.Assignment) (domain.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.solver(exclusions)
	if err != nil {
		return domain.Assignment{}, err
	}

	target := (len(candidates) + 1) / 2
	covered := 0
	var partial domain.Assignment
	for _, i := range s.rng.Perm(len(candidates)) {
		if covered >= target {
			break
		}
		if err := ctx.Err(); err != nil {
			return domain.Assignment{}, err
		}
		cand := candidates[i]
		if partial.ConflictsWith(cand) {
			continue
		}
		next, err := domain.Merge([]domain.Assignment{partial, cand})
		if err != nil {
			continue
		}
		if solveUnder(g, toLits(next)) {
			partial = next
			covered++
		}
	}
	return s.complete(ctx, g, toLits(partial))
}

// Update implements Completer. It returns ErrInfeasible if the interaction
// has no valid configuration.
func (s *SATCompleter) Update(ctx context.Context, interaction domain.Assignment) (domain.Assignment, error) {
	if err := s.checkRange(interaction); err != nil {
		return domain.Assignment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.solver(nil)
	if err != nil {
		return domain.Assignment{}, err
	}
	assumed := toLits(interaction)
	if !solveUnder(g, assumed) {
		return domain.Assignment{}, domain.ErrInfeasible
	}

	n := s.model.NumVars
	model := make([]z.Lit, n+1)
	for v := 1; v <= n; v++ {
		model[v] = z.Var(v).Pos()
		if !g.Value(model[v]) {
			model[v] = model[v].Not()
		}
	}

	implied := interaction.Literals()
	for v := 1; v <= n; v++ {
		if interaction.ContainsVariable(v) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return domain.Assignment{}, err
		}
		// v is implied iff flipping it is unsatisfiable.
		if !solveUnder(g, append(assumed, model[v].Not())) {
			implied = append(implied, domain.Literal(model[v].Dimacs()))
		}
	}
	return domain.NewAssignment(implied...)
}

// CoreDead returns the literals fixed in every valid configuration.
func (s *SATCompleter) CoreDead(ctx context.Context) (domain.Assignment, error) {
	return s.Update(ctx, domain.Assignment{})
}

// Merge implements Completer.
func (s *SATCompleter) Merge(interactions []domain.Assignment) (domain.Assignment, error) {
	return domain.Merge(interactions)
}

// IsValid reports whether config satisfies the model.
func (s *SATCompleter) IsValid(ctx context.Context, config domain.Assignment) bool {
	if s.checkRange(config) != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.solver(nil)
	if err != nil {
		return false
	}
	return solveUnder(g, toLits(config))
}
