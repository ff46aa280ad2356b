// Package harness runs interaction finders under a timeout, evaluates their
// answers against the known faulty interactions, and drives parameter
// sweeps over models, strategies and noise levels.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/example/faultloc-lite/interaction/completer"
	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/interaction/finder"
	"github.com/example/faultloc-lite/interaction/oracle"
)

// Request contains everything one search invocation needs.
type Request struct {
	// Finder is a fresh strategy instance owned by this invocation.
	Finder finder.InteractionFinder

	// Verifier answers the probes.
	Verifier oracle.Verifier

	// Completer builds probe configurations and closes found interactions.
	Completer completer.Completer

	// Core holds literals fixed in every valid configuration.
	Core domain.Assignment

	// Sample are the initial configurations, labeled before the search.
	Sample []domain.Assignment

	// T is the interaction size passed to Find.
	T int

	// Timeout bounds the whole invocation. Zero means no timeout.
	Timeout time.Duration

	// Logger receives one line per run. Nil uses slog.Default().
	Logger *slog.Logger
}

// Validate checks that the request is complete.
func (r *Request) Validate() error {
	if r.Finder == nil || r.Verifier == nil || r.Completer == nil {
		return fmt.Errorf("%w: finder, verifier and completer are required", domain.ErrInvalidConfig)
	}
	if r.T < 1 || r.T > domain.MaxT {
		return fmt.Errorf("%w: T must be between 1 and %d, got %d",
			domain.ErrInvalidConfig, domain.MaxT, r.T)
	}
	if r.Timeout < 0 {
		return fmt.Errorf("%w: Timeout must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// RunRecord is the outcome of one invocation. Result and Statistics are nil
// when the run timed out or failed.
type RunRecord struct {
	ID        string
	SweepID   string
	System    string
	Scenario  int
	Algorithm string
	Iteration int
	T         int

	FalsePositiveRate float64
	FalseNegativeRate float64

	Faulty        []domain.Assignment
	FaultyUpdated []domain.Assignment

	Result        *domain.FindResult
	MergedUpdated *domain.Assignment
	Statistics    domain.Statistics

	// VerifyCount counts oracle calls made during Find, including the
	// calls of a run that timed out.
	VerifyCount int

	// CreationCount is -1 when the run produced no result.
	CreationCount int

	Elapsed  time.Duration
	TimedOut bool
	Errored  bool
	Err      error

	Evaluation Evaluation
}

// Found returns the found interactions, or nil without a result.
func (r *RunRecord) Found() []domain.Assignment {
	if r.Result == nil {
		return nil
	}
	return r.Result.Interactions
}

// Status names how the run ended: the outcome, TIMEOUT or ERROR.
func (r *RunRecord) Status() string {
	switch {
	case r.TimedOut:
		return "TIMEOUT"
	case r.Errored:
		return "ERROR"
	case r.Result == nil:
		return domain.OutcomeUnknown.String()
	default:
		return r.Result.Outcome.String()
	}
}

// countingVerifier counts oracle calls so that a timed out run still
// reports how many verifications it spent.
type countingVerifier struct {
	inner oracle.Verifier
	calls atomic.Int64
}

func (v *countingVerifier) Test(ctx context.Context, config domain.Assignment) (int, error) {
	v.calls.Add(1)
	return v.inner.Test(ctx, config)
}

type findOutcome struct {
	result *domain.FindResult
	stats  domain.Statistics
	err    error
}

// RunWithTimeout labels the sample, runs Find in its own goroutine and
// waits for it or for the timeout. A timed out run keeps its verification
// count but drops the result and statistics. Finder errors are recorded on
// the returned record. The error return is reserved for invalid requests and
// cancellation of ctx itself.
func RunWithTimeout(ctx context.Context, req *Request) (*RunRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	counter := &countingVerifier{inner: req.Verifier}
	f := req.Finder
	f.Reset()
	f.SetCore(req.Core)
	f.SetUpdater(req.Completer)
	f.SetLogger(logger)

	record := &RunRecord{Algorithm: f.Name(), T: req.T, CreationCount: -1}
	start := time.Now()

	// Labeling the sample is not part of the measured search.
	f.SetVerifier(req.Verifier)
	if err := f.AddConfigurations(runCtx, req.Sample); err != nil {
		return finishRecord(ctx, record, start, counter, nil, err, logger)
	}
	f.SetVerifier(counter)

	// Buffered so the goroutine can exit after a timeout.
	done := make(chan findOutcome, 1)
	go func() {
		result, err := f.Find(runCtx, req.T)
		var stats domain.Statistics
		if err == nil {
			stats = append(stats, f.Statistics()...)
		}
		done <- findOutcome{result: result, stats: stats, err: err}
	}()

	var out findOutcome
	select {
	case out = <-done:
	case <-runCtx.Done():
		out = findOutcome{err: runCtx.Err()}
	}

	if out.err == nil {
		record.Result = out.result
		record.Statistics = out.stats
		record.CreationCount = out.result.CreationCount
		if out.result.Merged != nil {
			updated, err := req.Completer.Update(ctx, *out.result.Merged)
			if err == nil {
				record.MergedUpdated = &updated
			} else if !errors.Is(err, domain.ErrInfeasible) {
				out.err = fmt.Errorf("updating merged interaction: %w", err)
			}
		}
	}
	return finishRecord(ctx, record, start, counter, out.result, out.err, logger)
}

func finishRecord(ctx context.Context, record *RunRecord, start time.Time, counter *countingVerifier,
	result *domain.FindResult, err error, logger *slog.Logger) (*RunRecord, error) {
	record.Elapsed = time.Since(start)
	record.VerifyCount = int(counter.calls.Load())

	switch {
	case err == nil:
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		record.TimedOut = true
	default:
		record.Errored = true
		record.Err = err
	}
	if record.TimedOut || record.Errored {
		record.Result = nil
		record.Statistics = nil
		record.MergedUpdated = nil
		record.CreationCount = -1
	}

	attrs := []any{
		"algorithm", record.Algorithm,
		"t", record.T,
		"status", record.Status(),
		"verifications", record.VerifyCount,
		"elapsed", record.Elapsed,
	}
	if result != nil && record.Result != nil {
		attrs = append(attrs, "found", len(result.Interactions))
	}
	if record.Err != nil {
		attrs = append(attrs, "error", record.Err)
	}
	logger.Info("run finished", attrs...)
	return record, nil
}
