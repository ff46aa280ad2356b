package harness

import (
	"context"
	"time"

	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/internal/storage"
)

// ToStoredRun converts a record to its storage form.
func ToStoredRun(rec *RunRecord, modelID, algorithmID string) *storage.Run {
	run := &storage.Run{
		ID:            rec.ID,
		SweepID:       rec.SweepID,
		ModelID:       modelID,
		AlgorithmID:   algorithmID,
		Scenario:      rec.Scenario,
		Iteration:     rec.Iteration,
		T:             rec.T,
		Outcome:       rec.Status(),
		Faulty:        rec.Faulty,
		FaultyUpdated: rec.FaultyUpdated,
		Found:         rec.Found(),
		MergedUpdated: rec.MergedUpdated,
		VerifyCount:   rec.VerifyCount,
		CreationCount: rec.CreationCount,
		Elapsed:       rec.Elapsed,
		TimedOut:      rec.TimedOut,
		Errored:       rec.Errored,
		CreatedAt:     time.Now().UTC(),
	}
	if rec.Result != nil {
		run.Merged = rec.Result.Merged
	}
	if rec.Err != nil {
		run.ErrorMessage = rec.Err.Error()
	}
	return run
}

// FromStoredRun rebuilds a record from storage and evaluates it.
func FromStoredRun(run *storage.Run, model *storage.Model, alg *storage.Algorithm, stats []*storage.StatisticRow) *RunRecord {
	rec := &RunRecord{
		ID:                run.ID,
		SweepID:           run.SweepID,
		System:            model.Name,
		Scenario:          run.Scenario,
		Algorithm:         alg.Name,
		Iteration:         run.Iteration,
		T:                 run.T,
		FalsePositiveRate: alg.Config.FalsePositiveRate,
		FalseNegativeRate: alg.Config.FalseNegativeRate,
		Faulty:            run.Faulty,
		FaultyUpdated:     run.FaultyUpdated,
		MergedUpdated:     run.MergedUpdated,
		VerifyCount:       run.VerifyCount,
		CreationCount:     run.CreationCount,
		Elapsed:           run.Elapsed,
		TimedOut:          run.TimedOut,
		Errored:           run.Errored,
	}
	if !run.TimedOut && !run.Errored {
		rec.Result = &domain.FindResult{
			T:             run.T,
			Outcome:       domain.ParseOutcome(run.Outcome),
			Interactions:  run.Found,
			Merged:        run.Merged,
			VerifyCount:   run.VerifyCount,
			CreationCount: run.CreationCount,
		}
	}
	for _, row := range stats {
		rec.Statistics = append(rec.Statistics, row.Statistic)
	}
	EvaluateRecord(rec)
	return rec
}

// LoadRuns reads the runs matching opts, together with their statistics.
func LoadRuns(ctx context.Context, store storage.Storage, opts storage.ListOptions) ([]*RunRecord, error) {
	uow, err := store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	runs, err := uow.Runs().List(ctx, opts)
	if err != nil {
		return nil, err
	}

	models := make(map[string]*storage.Model)
	algorithms := make(map[string]*storage.Algorithm)
	records := make([]*RunRecord, 0, len(runs))
	for _, run := range runs {
		model, ok := models[run.ModelID]
		if !ok {
			if model, err = uow.Models().Get(ctx, run.ModelID); err != nil {
				return nil, err
			}
			models[run.ModelID] = model
		}
		alg, ok := algorithms[run.AlgorithmID]
		if !ok {
			if alg, err = uow.Algorithms().Get(ctx, run.AlgorithmID); err != nil {
				return nil, err
			}
			algorithms[run.AlgorithmID] = alg
		}
		stats, err := uow.Statistics().ListByRun(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, FromStoredRun(run, model, alg, stats))
	}
	return records, nil
}
