package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/example/faultloc-lite/interaction/completer"
	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/interaction/finder"
	"github.com/example/faultloc-lite/interaction/generator"
	"github.com/example/faultloc-lite/interaction/oracle"
	"github.com/example/faultloc-lite/internal/observability"
	"github.com/example/faultloc-lite/internal/storage"
	"github.com/example/faultloc-lite/pkg/id"
)

var tracer = otel.Tracer("faultloc.harness")

// scenario is one fault setup of a system, shared read-only by its jobs.
type scenario struct {
	system        System
	index         int
	model         *completer.Model
	modelID       string
	core          domain.Assignment
	faulty        []domain.Assignment
	faultyUpdated []domain.Assignment
	sample        []domain.Assignment
}

type job struct {
	scenario    *scenario
	algorithm   string
	algorithmID string
	t           int
	fp, fn      float64
	iteration   int
	seed        int64
}

// SweepResult holds the records of a sweep in grid order.
type SweepResult struct {
	ID      string
	Records []*RunRecord
}

// Sweep runs a grid of independent search invocations concurrently.
type Sweep struct {
	cfg     SweepConfig
	store   storage.Storage
	metrics *observability.Metrics
	logger  *slog.Logger

	progressMu sync.Mutex
	progress   func(done, total int)
}

// NewSweep creates a sweep. store and metrics may be nil.
func NewSweep(cfg SweepConfig, store storage.Storage, metrics *observability.Metrics, logger *slog.Logger) *Sweep {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweep{cfg: cfg.WithDefaults(), store: store, metrics: metrics, logger: logger}
}

// OnProgress registers fn to be called after each run finishes. Calls are
// serialized and done counts up to total.
func (s *Sweep) OnProgress(fn func(done, total int)) *Sweep {
	s.progress = fn
	return s
}

func (s *Sweep) reportProgress(done *int, total int) {
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	*done++
	if s.progress != nil {
		s.progress(*done, total)
	}
}

// Run executes every grid point. A failing or timed out run is recorded, not
// returned; the error return is for setup, storage and cancellation.
func (s *Sweep) Run(ctx context.Context) (*SweepResult, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	sweepID := id.Sweep()

	ctx, span := tracer.Start(ctx, "harness.Sweep",
		trace.WithAttributes(
			attribute.String("sweep.id", sweepID),
			attribute.Int("sweep.systems", len(s.cfg.Systems)),
			attribute.StringSlice("sweep.algorithms", s.cfg.Algorithms),
			attribute.Int("sweep.parallelism", s.cfg.Parallelism),
		),
	)
	defer span.End()

	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var scenarios []*scenario
	for _, system := range s.cfg.Systems {
		list, err := s.prepare(ctx, system, seed)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("preparing %s: %w", system.Name, err)
		}
		scenarios = append(scenarios, list...)
	}

	jobs, err := s.plan(ctx, scenarios, seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.logger.Info("sweep started", "sweep", sweepID, "runs", len(jobs), "parallelism", s.cfg.Parallelism)

	records := make([]*RunRecord, len(jobs))
	done := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for i, j := range jobs {
		g.Go(func() error {
			rec, err := s.runJob(gctx, sweepID, j)
			if err != nil {
				return err
			}
			records[i] = rec
			s.reportProgress(&done, len(jobs))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	s.logger.Info("sweep finished", "sweep", sweepID, "runs", len(records))
	return &SweepResult{ID: sweepID, Records: records}, nil
}

// prepare loads a system and builds its scenarios.
func (s *Sweep) prepare(ctx context.Context, system System, seed int64) ([]*scenario, error) {
	model, err := completer.ReadModelFile(system.Model)
	if err != nil {
		return nil, err
	}
	c := completer.NewSATCompleter(model, seed)
	gen := generator.New(c, seed)

	core, err := c.CoreDead(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing core: %w", err)
	}

	var faulty []domain.Assignment
	if system.Interactions != "" {
		if _, faulty, err = completer.ReadAssignmentsFile(system.Interactions); err != nil {
			return nil, err
		}
	} else {
		for i := 0; i < s.cfg.Scenarios; i++ {
			inter, err := gen.Interaction(ctx, core, s.cfg.InteractionSize)
			if err != nil {
				return nil, err
			}
			faulty = append(faulty, inter)
		}
	}

	var shared []domain.Assignment
	if system.Sample != "" {
		if _, shared, err = completer.ReadAssignmentsFile(system.Sample); err != nil {
			return nil, err
		}
	}

	scenarios := make([]*scenario, 0, len(faulty))
	for i, f := range faulty {
		updated, err := c.Update(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("updating interaction %v: %w", f, err)
		}
		sample := shared
		if sample == nil {
			if sample, err = gen.Sample(ctx, f, s.cfg.SampleSize); err != nil {
				return nil, err
			}
		}
		scenarios = append(scenarios, &scenario{
			system:        system,
			index:         i,
			model:         model,
			modelID:       id.Named("model", system.Name),
			core:          core,
			faulty:        []domain.Assignment{f},
			faultyUpdated: []domain.Assignment{updated},
			sample:        sample,
		})
	}
	return scenarios, nil
}

// plan registers models and algorithms and expands the grid.
func (s *Sweep) plan(ctx context.Context, scenarios []*scenario, seed int64) ([]job, error) {
	var jobs []job
	registered := make(map[string]bool)

	for _, sc := range scenarios {
		if !registered[sc.modelID] {
			if err := s.registerModel(ctx, sc); err != nil {
				return nil, err
			}
			registered[sc.modelID] = true
		}
		for _, fp := range s.cfg.FalsePositiveRates {
			for _, fn := range s.cfg.FalseNegativeRates {
				for _, name := range s.cfg.Algorithms {
					for _, t := range s.cfg.T {
						cfg := s.cfg.FinderConfig(t, fp, fn)
						algID := id.Named("algorithm", algorithmKey(name, cfg))
						if !registered[algID] {
							if err := s.registerAlgorithm(ctx, algID, name, cfg); err != nil {
								return nil, err
							}
							registered[algID] = true
						}
						for it := 0; it < s.cfg.Iterations; it++ {
							jobs = append(jobs, job{
								scenario:    sc,
								algorithm:   name,
								algorithmID: algID,
								t:           t,
								fp:          fp,
								fn:          fn,
								iteration:   it,
								seed:        seed + int64(sc.index)*1_000_003 + int64(it) + 1,
							})
						}
					}
				}
			}
		}
	}
	return jobs, nil
}

func algorithmKey(name string, cfg domain.FinderConfig) string {
	return fmt.Sprintf("%s|t=%d|fp=%g|fn=%g|cl=%d|vl=%d|lf=%g",
		name, cfg.T, cfg.FalsePositiveRate, cfg.FalseNegativeRate,
		cfg.CreationLimit, cfg.VerificationLimit, cfg.LimitFactor)
}

func (s *Sweep) registerModel(ctx context.Context, sc *scenario) error {
	if s.store == nil {
		return nil
	}
	return s.inTx(ctx, "models", func(uow storage.UnitOfWork) error {
		_, err := uow.Models().Get(ctx, sc.modelID)
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return uow.Models().Create(ctx, &storage.Model{
			ID:         sc.modelID,
			Name:       sc.system.Name,
			NumVars:    sc.model.NumVars,
			NumClauses: len(sc.model.Clauses),
			CreatedAt:  time.Now().UTC(),
		})
	})
}

func (s *Sweep) registerAlgorithm(ctx context.Context, algID, name string, cfg domain.FinderConfig) error {
	if s.store == nil {
		return nil
	}
	return s.inTx(ctx, "algorithms", func(uow storage.UnitOfWork) error {
		_, err := uow.Algorithms().Get(ctx, algID)
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return uow.Algorithms().Create(ctx, &storage.Algorithm{
			ID:        algID,
			Name:      name,
			Config:    cfg,
			CreatedAt: time.Now().UTC(),
		})
	})
}

func (s *Sweep) runJob(ctx context.Context, sweepID string, j job) (*RunRecord, error) {
	sc := j.scenario
	ctx, span := tracer.Start(ctx, "harness.Run",
		trace.WithAttributes(
			attribute.String("run.system", sc.system.Name),
			attribute.Int("run.scenario", sc.index),
			attribute.String("run.algorithm", j.algorithm),
			attribute.Int("run.t", j.t),
			attribute.Float64("run.fp_noise", j.fp),
			attribute.Float64("run.fn_noise", j.fn),
			attribute.Int("run.iteration", j.iteration),
		),
	)
	defer span.End()

	cfg := s.cfg.FinderConfig(j.t, j.fp, j.fn)
	cfg.RandomSeed = j.seed
	f, err := finder.New(j.algorithm, cfg)
	if err != nil {
		return nil, err
	}
	verifier, comp := collaborators(sc, cfg)

	s.metrics.RunStarted()
	rec, err := RunWithTimeout(ctx, &Request{
		Finder:    f,
		Verifier:  verifier,
		Completer: comp,
		Core:      sc.core,
		Sample:    sc.sample,
		T:         j.t,
		Timeout:   s.cfg.Timeout,
		Logger:    s.logger.With("system", sc.system.Name, "scenario", sc.index, "iteration", j.iteration),
	})
	if err != nil {
		s.metrics.RunAborted()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rec.ID = id.Run()
	rec.SweepID = sweepID
	rec.System = sc.system.Name
	rec.Scenario = sc.index
	rec.Iteration = j.iteration
	rec.FalsePositiveRate = j.fp
	rec.FalseNegativeRate = j.fn
	rec.Faulty = sc.faulty
	rec.FaultyUpdated = sc.faultyUpdated
	EvaluateRecord(rec)

	s.metrics.RunFinished(j.algorithm, rec.Status(), rec.Elapsed, rec.VerifyCount, rec.CreationCount)
	span.SetAttributes(
		attribute.String("run.status", rec.Status()),
		attribute.Int("run.verifications", rec.VerifyCount),
	)
	if rec.Errored {
		span.RecordError(rec.Err)
		span.SetStatus(codes.Error, rec.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if err := s.persist(ctx, rec, sc.modelID, j.algorithmID); err != nil {
		return nil, fmt.Errorf("storing run %s: %w", rec.ID, err)
	}
	return rec, nil
}

// collaborators builds the oracle and completer of one run, both seeded
// from cfg.RandomSeed.
func collaborators(sc *scenario, cfg domain.FinderConfig) (*oracle.NoisyOracle, *completer.SATCompleter) {
	verifier := oracle.NewNoisyOracle(sc.faulty...).
		WithFalsePositiveRate(cfg.FalsePositiveRate).
		WithFalseNegativeRate(cfg.FalseNegativeRate).
		WithSeed(cfg.RandomSeed)
	return verifier, completer.NewSATCompleter(sc.model, cfg.RandomSeed)
}

func (s *Sweep) persist(ctx context.Context, rec *RunRecord, modelID, algorithmID string) error {
	if s.store == nil {
		return nil
	}
	run := ToStoredRun(rec, modelID, algorithmID)
	rows := make([]*storage.StatisticRow, len(rec.Statistics))
	for i, st := range rec.Statistics {
		rows[i] = &storage.StatisticRow{Statistic: st}
	}
	return s.inTx(ctx, "runs", func(uow storage.UnitOfWork) error {
		if err := uow.Runs().Create(ctx, run); err != nil {
			return err
		}
		return uow.Statistics().CreateBatch(ctx, run.ID, rows)
	})
}

func (s *Sweep) inTx(ctx context.Context, table string, fn func(uow storage.UnitOfWork) error) error {
	start := time.Now()
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}
	s.metrics.ObserveStore(table, time.Since(start))
	return nil
}
