package finder

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"github.com/example/faultloc-lite/interaction/domain"
)

// randomProber asks the completer for a configuration covering about half
// of the remaining candidates.
type randomProber struct{}

func (randomProber) next(ctx context.Context, s *level) (domain.Assignment, error) {
	return s.completeBest(ctx, s.set.Items(), s.tested)
}

func (randomProber) observe(*level, domain.Assignment, bool, int) {}

// naiveProber tests uniformly random valid configurations.
type naiveProber struct{}

func (naiveProber) next(ctx context.Context, s *level) (domain.Assignment, error) {
	return s.complete(ctx, domain.Assignment{}, s.tested)
}

func (naiveProber) observe(*level, domain.Assignment, bool, int) {}

// completeOrRelax completes required with the given extra exclusions and
// falls back to the tested configurations alone when that is infeasible.
func completeOrRelax(ctx context.Context, s *level, required domain.Assignment, extra []domain.Assignment) (domain.Assignment, error) {
	if len(extra) > 0 {
		exclusions := append(append([]domain.Assignment(nil), s.tested...), extra...)
		config, err := s.complete(ctx, required, exclusions)
		if !errors.Is(err, domain.ErrInfeasible) {
			return config, err
		}
	}
	return s.complete(ctx, required, s.tested)
}

// restrict returns the literals of lits that ref contains.
func restrict(ref domain.Assignment, lits []domain.Literal) domain.Assignment {
	return domain.MustAssignment(lo.Filter(lits, func(l domain.Literal, _ int) bool {
		return ref.Contains(l)
	})...)
}

// singleProber toggles one literal of a reference failing configuration
// at a time.
type singleProber struct {
	tried map[domain.Literal]bool
}

func newSingleProber() *singleProber {
	return &singleProber{tried: make(map[domain.Literal]bool)}
}

func (p *singleProber) next(ctx context.Context, s *level) (domain.Assignment, error) {
	ref, ok := s.referenceFailure()
	if !ok {
		return domain.Assignment{}, domain.ErrInfeasible
	}
	lits := s.set.Literals()
	for _, l := range lits {
		if p.tried[l] || !ref.Contains(l) || s.core.ContainsVariable(l.Var()) {
			continue
		}
		p.tried[l] = true
		config, err := s.complete(ctx, ref.Toggle(l), s.tested)
		if errors.Is(err, domain.ErrInfeasible) {
			// Keep the other candidate literals and let the completer
			// repair everything else.
			config, err = s.complete(ctx, restrict(ref, lits).Toggle(l), s.tested)
		}
		if errors.Is(err, domain.ErrInfeasible) {
			continue
		}
		return config, err
	}
	return domain.Assignment{}, domain.ErrInfeasible
}

func (p *singleProber) observe(*level, domain.Assignment, bool, int) {}

// forwardProber grows a seed interaction one literal at a time.
type forwardProber struct {
	seed  domain.Assignment
	tried map[domain.Literal]bool
	last  domain.Literal
}

func newForwardProber() *forwardProber {
	return &forwardProber{tried: make(map[domain.Literal]bool)}
}

func (p *forwardProber) next(ctx context.Context, s *level) (domain.Assignment, error) {
	for _, fc := range s.set.Frequencies() {
		l := fc.Literal
		if p.tried[l] || p.seed.Contains(l) || p.seed.Contains(l.Negate()) {
			continue
		}
		required, err := p.seed.With(l)
		if err != nil {
			p.tried[l] = true
			continue
		}
		var lacking []domain.Assignment
		for _, c := range s.set.Items() {
			if !c.Contains(l) {
				lacking = append(lacking, c)
			}
		}
		config, err := completeOrRelax(ctx, s, required, lacking)
		if errors.Is(err, domain.ErrInfeasible) {
			p.tried[l] = true
			continue
		}
		if err != nil {
			return domain.Assignment{}, err
		}
		p.last = l
		return config, nil
	}
	return domain.Assignment{}, domain.ErrInfeasible
}

func (p *forwardProber) observe(s *level, _ domain.Assignment, failed bool, removed int) {
	if failed && allContain(s, p.last) {
		p.seed, _ = p.seed.With(p.last)
		return
	}
	if removed == 0 {
		p.tried[p.last] = true
	}
}

func allContain(s *level, l domain.Literal) bool {
	for _, c := range s.set.Items() {
		if !c.Contains(l) {
			return false
		}
	}
	return s.set.Len() > 0
}

// backwardProber shrinks a seed taken from a reference failing
// configuration, negating one literal at a time.
type backwardProber struct {
	seed   domain.Assignment
	seeded bool
	tried  map[domain.Literal]bool
	last   domain.Literal
}

func newBackwardProber() *backwardProber {
	return &backwardProber{tried: make(map[domain.Literal]bool)}
}

func (p *backwardProber) next(ctx context.Context, s *level) (domain.Assignment, error) {
	if !p.seeded {
		ref, ok := s.referenceFailure()
		if !ok {
			return domain.Assignment{}, domain.ErrInfeasible
		}
		p.seed = restrict(ref, s.set.Literals())
		p.seeded = true
	}
	for _, l := range p.seed.Literals() {
		if p.tried[l] {
			continue
		}
		required, err := p.seed.Without(l).With(l.Negate())
		if err != nil {
			p.tried[l] = true
			continue
		}
		config, err := s.complete(ctx, required, s.tested)
		if errors.Is(err, domain.ErrInfeasible) {
			p.tried[l] = true
			continue
		}
		if err != nil {
			return domain.Assignment{}, err
		}
		p.last = l
		return config, nil
	}
	return domain.Assignment{}, domain.ErrInfeasible
}

func (p *backwardProber) observe(_ *level, _ domain.Assignment, failed bool, _ int) {
	if failed {
		p.seed = p.seed.Without(p.last)
		return
	}
	p.tried[p.last] = true
}

// forwardBackwardProber alternates forward and backward probes over one
// candidate set.
type forwardBackwardProber struct {
	forward  *forwardProber
	backward *backwardProber
	useBack  bool
	lastBack bool
}

func newForwardBackwardProber() *forwardBackwardProber {
	return &forwardBackwardProber{
		forward:  newForwardProber(),
		backward: newBackwardProber(),
	}
}

func (p *forwardBackwardProber) next(ctx context.Context, s *level) (domain.Assignment, error) {
	order := []bool{p.useBack, !p.useBack}
	for _, back := range order {
		var (
			config domain.Assignment
			err    error
		)
		if back {
			config, err = p.backward.next(ctx, s)
		} else {
			config, err = p.forward.next(ctx, s)
		}
		if errors.Is(err, domain.ErrInfeasible) {
			continue
		}
		if err != nil {
			return domain.Assignment{}, err
		}
		p.lastBack = back
		p.useBack = !back
		return config, nil
	}
	return domain.Assignment{}, domain.ErrInfeasible
}

func (p *forwardBackwardProber) observe(s *level, config domain.Assignment, failed bool, removed int) {
	if p.lastBack {
		p.backward.observe(s, config, failed, removed)
	} else {
		p.forward.observe(s, config, failed, removed)
	}
}
