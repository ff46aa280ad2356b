// Package finder implements the adaptive interaction search strategies.
//
// Every strategy shares one loop: generate candidates from the labeled pool,
// then repeatedly obtain a probe configuration, test it, and narrow the
// candidates. A failing probe keeps the candidates it contains, a passing
// probe removes them. Strategies only differ in how they pick the probe.
package finder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/faultloc-lite/interaction/candidates"
	"github.com/example/faultloc-lite/interaction/completer"
	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/interaction/oracle"
)

// InteractionFinder locates failure-inducing interactions.
// A finder is not safe for concurrent use; give every invocation its own.
type InteractionFinder interface {
	// Name returns the registry name of the strategy.
	Name() string

	// Reset clears the pool, core, statistics and counters.
	Reset()

	// SetConfig replaces the finder configuration.
	SetConfig(cfg domain.FinderConfig)

	// SetCore sets the literals fixed in every valid configuration.
	SetCore(core domain.Assignment)

	// SetVerifier sets the oracle.
	SetVerifier(v oracle.Verifier)

	// SetUpdater sets the configuration completer.
	SetUpdater(c completer.Completer)

	// SetLogger sets the logger. A nil logger uses slog.Default().
	SetLogger(l *slog.Logger)

	// AddConfigurations labels configurations with the verifier and adds
	// them to the pool. Labeling does not count against the budget.
	AddConfigurations(ctx context.Context, configs []domain.Assignment) error

	// Find searches for interactions of size t.
	Find(ctx context.Context, t int) (*domain.FindResult, error)

	// Statistics returns the snapshots recorded by the last Find.
	Statistics() domain.Statistics
}

// prober picks the next configuration to test within one level.
type prober interface {
	// next returns a configuration, or domain.ErrInfeasible when the
	// strategy has nothing left to try.
	next(ctx context.Context, s *level) (domain.Assignment, error)

	// observe reports the result of the configuration returned by next.
	observe(s *level, config domain.Assignment, failed bool, removed int)
}

// level is the state of one search level, shared with the prober.
type level struct {
	t         int
	set       *candidates.Set
	pool      *candidates.Pool
	core      domain.Assignment
	completer completer.Completer
	budget    *Budget
	tested    []domain.Assignment
}

// errBudgetExhausted stops a prober when no completer call is left.
var errBudgetExhausted = errors.New("budget exhausted")

// complete asks the completer for one configuration. Every call counts
// as a creation, including infeasible ones.
func (s *level) complete(ctx context.Context, partial domain.Assignment, exclusions []domain.Assignment) (domain.Assignment, error) {
	if !s.budget.CanCreate() || !s.budget.CanVerify() {
		return domain.Assignment{}, errBudgetExhausted
	}
	s.budget.Created()
	return s.completer.Complete(ctx, partial, exclusions)
}

// completeBest is complete for CompleteBest.
func (s *level) completeBest(ctx context.Context, cands, exclusions []domain.Assignment) (domain.Assignment, error) {
	if !s.budget.CanCreate() || !s.budget.CanVerify() {
		return domain.Assignment{}, errBudgetExhausted
	}
	s.budget.Created()
	return s.completer.CompleteBest(ctx, cands, exclusions)
}

// referenceFailure returns the first failing configuration that contains
// a remaining candidate.
func (s *level) referenceFailure() (domain.Assignment, bool) {
	items := s.set.Items()
	for _, f := range s.pool.Failing {
		for _, c := range items {
			if f.ContainsAll(c) {
				return f, true
			}
		}
	}
	return domain.Assignment{}, false
}

// Finder runs the shared search loop with a strategy specific prober.
type Finder struct {
	name      string
	newProber func() prober
	derived   bool

	cfg       domain.FinderConfig
	core      domain.Assignment
	verifier  oracle.Verifier
	completer completer.Completer
	logger    *slog.Logger

	pool   *candidates.Pool
	budget *Budget
	stats  domain.Statistics
	tested []domain.Assignment
}

func newFinder(name string, derived bool, newProber func() prober) *Finder {
	f := &Finder{
		name:      name,
		newProber: newProber,
		derived:   derived,
		cfg:       domain.DefaultConfig(),
		logger:    slog.Default(),
	}
	f.Reset()
	return f
}

// Name implements InteractionFinder.
func (f *Finder) Name() string {
	return f.name
}

// Reset implements InteractionFinder.
func (f *Finder) Reset() {
	f.core = domain.Assignment{}
	f.pool = &candidates.Pool{}
	f.stats = nil
	f.tested = nil
	f.budget = NewBudget(f.cfg.CreationLimit, f.cfg.VerificationLimit)
}

// SetConfig implements InteractionFinder.
func (f *Finder) SetConfig(cfg domain.FinderConfig) {
	f.cfg = cfg.WithDefaults()
	f.budget = NewBudget(f.cfg.CreationLimit, f.cfg.VerificationLimit)
}

// Config returns the current configuration.
func (f *Finder) Config() domain.FinderConfig {
	return f.cfg
}

// SetCore implements InteractionFinder.
func (f *Finder) SetCore(core domain.Assignment) {
	f.core = core
}

// SetVerifier implements InteractionFinder.
func (f *Finder) SetVerifier(v oracle.Verifier) {
	f.verifier = v
}

// SetUpdater implements InteractionFinder.
func (f *Finder) SetUpdater(c completer.Completer) {
	f.completer = c
}

// SetLogger implements InteractionFinder.
func (f *Finder) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	f.logger = l
}

// AddConfigurations implements InteractionFinder.
func (f *Finder) AddConfigurations(ctx context.Context, configs []domain.Assignment) error {
	if f.verifier == nil {
		return fmt.Errorf("%w: no verifier set", domain.ErrInvalidConfig)
	}
	for _, c := range configs {
		res, err := f.verifier.Test(ctx, c)
		if err != nil {
			return fmt.Errorf("labeling configuration %v: %w", c, err)
		}
		f.pool.Add(c, res != 0)
	}
	return nil
}

// AddLabeled adds an already labeled configuration to the pool.
func (f *Finder) AddLabeled(config domain.Assignment, failed bool) {
	f.pool.Add(config, failed)
}

// Pool returns the labeled pool, including every tested configuration.
func (f *Finder) Pool() *candidates.Pool {
	return f.pool
}

// Statistics implements InteractionFinder.
func (f *Finder) Statistics() domain.Statistics {
	return append(domain.Statistics(nil), f.stats...)
}

// Budget returns the budget of the current invocation.
func (f *Finder) Budget() *Budget {
	return f.budget
}

// Find implements InteractionFinder.
func (f *Finder) Find(ctx context.Context, t int) (*domain.FindResult, error) {
	if err := f.begin(t); err != nil {
		return nil, err
	}
	return f.searchLevel(ctx, t, f.newProber())
}

// begin validates the collaborators and starts a new invocation.
func (f *Finder) begin(t int) error {
	if f.verifier == nil || f.completer == nil {
		return fmt.Errorf("%w: verifier and updater must be set", domain.ErrInvalidConfig)
	}
	if t < 1 || t > domain.MaxT {
		return fmt.Errorf("%w: t must be between 1 and %d, got %d",
			domain.ErrInvalidConfig, domain.MaxT, t)
	}
	f.stats = nil
	f.tested = nil
	f.budget = NewBudget(f.cfg.CreationLimit, f.cfg.VerificationLimit)
	return nil
}

func (f *Finder) record(t, iteration, remaining int) {
	f.stats = append(f.stats, domain.Statistic{
		T:             t,
		Iteration:     iteration,
		Candidates:    remaining,
		VerifyCount:   f.budget.Verifications(),
		CreationCount: f.budget.Creations(),
	})
}

func (f *Finder) finish(t int, remaining []domain.Assignment, state domain.SearchState) *domain.FindResult {
	r := domain.NewFindResult(t, remaining, state)
	r.VerifyCount = f.budget.Verifications()
	r.CreationCount = f.budget.Creations()
	return r
}

func (f *Finder) noResult(t int) *domain.FindResult {
	r := domain.NoResult(t)
	r.VerifyCount = f.budget.Verifications()
	r.CreationCount = f.budget.Creations()
	return r
}

// searchLevel runs the partition-and-test loop for interactions of size t.
func (f *Finder) searchLevel(ctx context.Context, t int, p prober) (*domain.FindResult, error) {
	state := domain.StateSeeded
	if err := state.Transition(domain.StateGenerating); err != nil {
		return nil, err
	}

	if len(f.pool.Failing) == 0 {
		f.logger.Debug("no failing configurations", "finder", f.name, "t", t)
		return f.noResult(t), nil
	}

	generated, err := candidates.Generate(f.pool, f.core, t, f.cfg.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("generating candidates: %w", err)
	}
	set := candidates.NewSet(generated)
	if set.Len() == 0 {
		f.logger.Debug("no candidate interactions", "finder", f.name, "t", t)
		return f.noResult(t), nil
	}
	f.record(t, 0, set.Len())
	if err := state.Transition(domain.StateTesting); err != nil {
		return nil, err
	}

	levelLimit := domain.NoLimit
	if f.derived {
		levelLimit = DerivedLimit(domain.NoLimit, f.cfg.LimitFactor, set.Len())
	}
	levelVerifications := 0

	lv := &level{
		t:         t,
		set:       set,
		pool:      f.pool,
		core:      f.core,
		completer: f.completer,
		budget:    f.budget,
		tested:    f.tested,
	}

	end := domain.StateTesting
	iteration := 0
	for set.Len() > 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !f.budget.CanCreate() || !f.budget.CanVerify() ||
			!domain.WithinLimit(levelVerifications, levelLimit) {
			end = domain.StateBudgetExhausted
			break
		}

		config, err := p.next(ctx, lv)
		if errors.Is(err, errBudgetExhausted) {
			end = domain.StateBudgetExhausted
			break
		}
		if errors.Is(err, domain.ErrInfeasible) {
			end = domain.StateInfeasible
			break
		}
		if err != nil {
			return nil, fmt.Errorf("completing configuration: %w", err)
		}

		if !f.budget.CanVerify() {
			end = domain.StateBudgetExhausted
			break
		}
		res, err := f.verifier.Test(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("testing configuration %v: %w", config, err)
		}
		f.budget.Verified()
		levelVerifications++

		failed := res != 0
		f.pool.Add(config, failed)
		lv.tested = append(lv.tested, config)
		removed := set.Apply(config, failed)
		p.observe(lv, config, failed, removed)

		iteration++
		f.record(t, iteration, set.Len())
		f.logger.Debug("probe tested",
			"finder", f.name,
			"t", t,
			"iteration", iteration,
			"failed", failed,
			"removed", removed,
			"remaining", set.Len())
	}
	f.tested = lv.tested

	if end == domain.StateTesting {
		if set.Len() == 1 {
			end = domain.StateConverged
		} else {
			end = domain.StateNoResult
		}
	}
	if err := state.Transition(end); err != nil {
		return nil, err
	}
	return f.finish(t, set.Items(), state), nil
}

// confirm tests one more configuration containing interaction.
// It reports whether that configuration failed. ok is false when no
// configuration could be tested.
func (f *Finder) confirm(ctx context.Context, interaction domain.Assignment) (failed, ok bool, err error) {
	if !f.budget.CanCreate() || !f.budget.CanVerify() {
		return false, false, nil
	}
	f.budget.Created()
	config, err := f.completer.Complete(ctx, interaction, f.tested)
	if errors.Is(err, domain.ErrInfeasible) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("completing confirmation: %w", err)
	}
	res, err := f.verifier.Test(ctx, config)
	if err != nil {
		return false, false, fmt.Errorf("testing confirmation %v: %w", config, err)
	}
	f.budget.Verified()
	f.pool.Add(config, res != 0)
	f.tested = append(f.tested, config)
	return res != 0, true, nil
}
