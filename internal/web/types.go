package web

import (
	"time"

	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/interaction/harness"
	"github.com/example/faultloc-lite/internal/storage"
)

// RunSummary is a run as listed by GET /api/runs/
type RunSummary struct {
	ID            string    `json:"id"`
	SweepID       string    `json:"sweepId"`
	System        string    `json:"system"`
	Scenario      int       `json:"scenario"`
	Algorithm     string    `json:"algorithm"`
	Iteration     int       `json:"iteration"`
	T             int       `json:"t"`
	Status        string    `json:"status"`
	FoundCount    int       `json:"foundCount"`
	VerifyCount   int       `json:"verifyCount"`
	CreationCount int       `json:"creationCount"`
	ElapsedMS     int64     `json:"elapsedMs"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ListRunsResponse is the response for GET /api/runs/
type ListRunsResponse struct {
	Runs []RunSummary `json:"runs"`
}

// RunDetail is the response for GET /api/runs/:id
type RunDetail struct {
	RunSummary
	FalsePositiveRate float64            `json:"fpNoise"`
	FalseNegativeRate float64            `json:"fnNoise"`
	Faulty            [][]int            `json:"faulty"`
	FaultyUpdated     [][]int            `json:"faultyUpdated"`
	Found             [][]int            `json:"found"`
	Merged            []int              `json:"merged,omitempty"`
	MergedUpdated     []int              `json:"mergedUpdated,omitempty"`
	Error             string             `json:"error,omitempty"`
	Evaluation        harness.Evaluation `json:"evaluation"`
}

// StatisticsResponse is the response for GET /api/runs/:id/statistics
type StatisticsResponse struct {
	RunID      string             `json:"runId"`
	Statistics []domain.Statistic `json:"statistics"`
}

// ModelInfo describes a registered model.
type ModelInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	NumVars    int       `json:"numVars"`
	NumClauses int       `json:"numClauses"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AlgorithmInfo describes a strategy configuration.
type AlgorithmInfo struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Config    domain.FinderConfig `json:"config"`
	CreatedAt time.Time           `json:"createdAt"`
}

func convertRun(run *storage.Run, rec *harness.RunRecord) RunSummary {
	return RunSummary{
		ID:            run.ID,
		SweepID:       run.SweepID,
		System:        rec.System,
		Scenario:      run.Scenario,
		Algorithm:     rec.Algorithm,
		Iteration:     run.Iteration,
		T:             run.T,
		Status:        run.Outcome,
		FoundCount:    rec.Evaluation.FoundCount,
		VerifyCount:   run.VerifyCount,
		CreationCount: run.CreationCount,
		ElapsedMS:     run.Elapsed.Milliseconds(),
		CreatedAt:     run.CreatedAt,
	}
}

func convertRunDetail(run *storage.Run, rec *harness.RunRecord) RunDetail {
	detail := RunDetail{
		RunSummary:        convertRun(run, rec),
		FalsePositiveRate: rec.FalsePositiveRate,
		FalseNegativeRate: rec.FalseNegativeRate,
		Faulty:            toInts(run.Faulty),
		FaultyUpdated:     toInts(run.FaultyUpdated),
		Found:             toInts(run.Found),
		Error:             run.ErrorMessage,
		Evaluation:        rec.Evaluation,
	}
	if run.Merged != nil {
		detail.Merged = run.Merged.Ints()
	}
	if run.MergedUpdated != nil {
		detail.MergedUpdated = run.MergedUpdated.Ints()
	}
	return detail
}

func toInts(list []domain.Assignment) [][]int {
	out := make([][]int, 0, len(list))
	for _, a := range list {
		out = append(out, a.Ints())
	}
	return out
}
