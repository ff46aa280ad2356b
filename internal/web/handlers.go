package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/interaction/harness"
	"github.com/example/faultloc-lite/internal/storage"
)

// Handlers contains HTTP handlers for the results API
type Handlers struct {
	storage storage.Storage
}

// NewHandlers creates new API handlers
func NewHandlers(storage storage.Storage) *Handlers {
	return &Handlers{storage: storage}
}

// ListRuns handles GET /api/runs/
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := listOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	uow, err := h.storage.Begin(ctx)
	if err != nil {
		http.Error(w, "Failed to begin transaction: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	runs, err := uow.Runs().List(ctx, opts)
	if err != nil {
		http.Error(w, "Failed to list runs: "+err.Error(), http.StatusInternalServerError)
		return
	}

	response := ListRunsResponse{Runs: make([]RunSummary, 0, len(runs))}
	for _, run := range runs {
		rec, err := loadRecord(ctx, uow, run)
		if err != nil {
			http.Error(w, "Failed to load run: "+err.Error(), http.StatusInternalServerError)
			return
		}
		response.Runs = append(response.Runs, convertRun(run, rec))
	}

	writeJSON(w, response)
}

// GetRun handles GET /api/runs/:id
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/runs/"), "/")
	if runID == "" {
		http.Error(w, "Run ID required", http.StatusBadRequest)
		return
	}

	uow, err := h.storage.Begin(ctx)
	if err != nil {
		http.Error(w, "Failed to begin transaction: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	run, err := uow.Runs().Get(ctx, runID)
	if err != nil {
		writeLookupError(w, "run", err)
		return
	}
	rec, err := loadRecord(ctx, uow, run)
	if err != nil {
		http.Error(w, "Failed to load run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, convertRunDetail(run, rec))
}

// GetStatistics handles GET /api/runs/:id/statistics
func (h *Handlers) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Path format: /api/runs/{id}/statistics
	path := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[1] != "statistics" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	runID := parts[0]

	uow, err := h.storage.Begin(ctx)
	if err != nil {
		http.Error(w, "Failed to begin transaction: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	if _, err := uow.Runs().Get(ctx, runID); err != nil {
		writeLookupError(w, "run", err)
		return
	}
	rows, err := uow.Statistics().ListByRun(ctx, runID)
	if err != nil {
		http.Error(w, "Failed to list statistics: "+err.Error(), http.StatusInternalServerError)
		return
	}

	response := StatisticsResponse{RunID: runID, Statistics: make([]domain.Statistic, 0, len(rows))}
	for _, row := range rows {
		response.Statistics = append(response.Statistics, row.Statistic)
	}
	writeJSON(w, response)
}

// ListModels handles GET /api/models/
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uow, err := h.storage.Begin(ctx)
	if err != nil {
		http.Error(w, "Failed to begin transaction: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	models, err := uow.Models().List(ctx)
	if err != nil {
		http.Error(w, "Failed to list models: "+err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		out = append(out, ModelInfo{ID: m.ID, Name: m.Name, NumVars: m.NumVars, NumClauses: m.NumClauses, CreatedAt: m.CreatedAt})
	}
	writeJSON(w, map[string]any{"models": out})
}

// ListAlgorithms handles GET /api/algorithms/
func (h *Handlers) ListAlgorithms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uow, err := h.storage.Begin(ctx)
	if err != nil {
		http.Error(w, "Failed to begin transaction: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	algorithms, err := uow.Algorithms().List(ctx)
	if err != nil {
		http.Error(w, "Failed to list algorithms: "+err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]AlgorithmInfo, 0, len(algorithms))
	for _, a := range algorithms {
		out = append(out, AlgorithmInfo{ID: a.ID, Name: a.Name, Config: a.Config, CreatedAt: a.CreatedAt})
	}
	writeJSON(w, map[string]any{"algorithms": out})
}

// loadRecord rebuilds and evaluates the record of a stored run.
func loadRecord(ctx context.Context, uow storage.UnitOfWork, run *storage.Run) (*harness.RunRecord, error) {
	model, err := uow.Models().Get(ctx, run.ModelID)
	if err != nil {
		return nil, err
	}
	alg, err := uow.Algorithms().Get(ctx, run.AlgorithmID)
	if err != nil {
		return nil, err
	}
	stats, err := uow.Statistics().ListByRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return harness.FromStoredRun(run, model, alg, stats), nil
}

func listOptions(r *http.Request) (storage.ListOptions, error) {
	q := r.URL.Query()
	opts := storage.ListOptions{
		SweepID:  q.Get("sweep"),
		ModelID:  q.Get("model"),
		Outcomes: q["outcome"],
	}
	for name, dst := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New("invalid " + name + ": " + v)
		}
		*dst = n
	}
	return opts, nil
}

func writeLookupError(w http.ResponseWriter, kind string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, strings.ToUpper(kind[:1])+kind[1:]+" not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Failed to get "+kind+": "+err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
