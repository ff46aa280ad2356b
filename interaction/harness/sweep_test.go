package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/faultloc-lite/interaction/completer"
	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/interaction/oracle"
	"github.com/example/faultloc-lite/internal/observability"
	"github.com/example/faultloc-lite/internal/storage"
	"github.com/example/faultloc-lite/internal/storage/sqlite"
)

func writeModel(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "toy.dimacs")
	// Variable 1 is core, 5 implies 6.
	require.NoError(t, os.WriteFile(path, []byte("p cnf 6 2\n1 0\n-5 6 0\n"), 0o644))
	return path
}

func newStore(t *testing.T) *sqlite.SQLiteStorage {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestSweepRunsGridAndStoresRecords(t *testing.T) {
	dir := t.TempDir()
	cfg := SweepConfig{
		Systems:     []System{{Name: "toy", Model: writeModel(t, dir)}},
		Algorithms:  []string{"random", "single"},
		T:           []int{2},
		Iterations:  2,
		SampleSize:  8,
		Parallelism: 3,
		Timeout:     time.Minute,
		Seed:        7,
	}
	store := newStore(t)
	metrics := observability.NewMetrics()

	result, err := NewSweep(cfg, store, metrics, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Records, 4)

	for _, rec := range result.Records {
		assert.Equal(t, result.ID, rec.SweepID)
		assert.Equal(t, "toy", rec.System)
		assert.False(t, rec.Errored, "run %s errored: %v", rec.ID, rec.Err)
		assert.False(t, rec.TimedOut)
		require.NotNil(t, rec.Result)
		require.Len(t, rec.Faulty, 1)
		assert.False(t, rec.Faulty[0].ContainsVariable(1), "faulty interactions avoid core variables")
		assert.True(t, rec.FaultyUpdated[0].Contains(1))
	}

	loaded, err := LoadRuns(context.Background(), store, storage.ListOptions{SweepID: result.ID})
	require.NoError(t, err)
	require.Len(t, loaded, 4)
	byID := make(map[string]*RunRecord)
	for _, rec := range result.Records {
		byID[rec.ID] = rec
	}
	for _, got := range loaded {
		want := byID[got.ID]
		require.NotNil(t, want, "unknown run %s", got.ID)
		assert.Equal(t, want.Algorithm, got.Algorithm)
		assert.Equal(t, want.Status(), got.Status())
		assert.Equal(t, want.Evaluation, got.Evaluation)
		assert.Len(t, got.Statistics, len(want.Statistics))
	}

	series, err := testutil.GatherAndCount(metrics.Registry(), "faultloc_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one duration series per algorithm")
}

func TestSweepWithoutStorage(t *testing.T) {
	dir := t.TempDir()
	cfg := SweepConfig{
		Systems:            []System{{Name: "toy", Model: writeModel(t, dir)}},
		Algorithms:         []string{"naive-random"},
		FalseNegativeRates: []float64{0, 0.2},
		Scenarios:          2,
		Seed:               3,
	}

	result, err := NewSweep(cfg, nil, nil, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Records, 4)
	assert.Equal(t, 0, result.Records[0].Scenario)
	assert.Equal(t, 1, result.Records[3].Scenario)
	assert.Equal(t, 0.2, result.Records[1].FalseNegativeRate)
}

func TestSweepReadsInteractionsFromFile(t *testing.T) {
	dir := t.TempDir()
	inter := filepath.Join(dir, "interactions.dimacs")
	require.NoError(t, os.WriteFile(inter, []byte("p cnf 6 2\n2 -4 0\n3 5 0\n"), 0o644))
	cfg := SweepConfig{
		Systems:    []System{{Name: "toy", Model: writeModel(t, dir), Interactions: inter}},
		Algorithms: []string{"random"},
		Seed:       1,
	}

	result, err := NewSweep(cfg, nil, nil, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, []int{2, -4}, result.Records[0].Faulty[0].Ints())
	assert.Equal(t, []int{1, 3, 5, 6}, result.Records[1].FaultyUpdated[0].Ints())
}

func TestSweepRejectsMissingModel(t *testing.T) {
	cfg := SweepConfig{
		Systems:    []System{{Name: "gone", Model: filepath.Join(t.TempDir(), "missing.dimacs")}},
		Algorithms: []string{"random"},
	}
	_, err := NewSweep(cfg, nil, nil, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestSweepReportsProgress(t *testing.T) {
	dir := t.TempDir()
	cfg := SweepConfig{
		Systems:     []System{{Name: "toy", Model: writeModel(t, dir)}},
		Algorithms:  []string{"random", "single"},
		Iterations:  3,
		Parallelism: 4,
		Seed:        5,
	}

	var done []int
	totals := make(map[int]bool)
	result, err := NewSweep(cfg, nil, nil, nil).
		OnProgress(func(d, total int) {
			done = append(done, d)
			totals[total] = true
		}).
		Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Records, 6)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, done)
	assert.Equal(t, map[int]bool{6: true}, totals)
}

func TestCollaboratorsAreSeededFromConfig(t *testing.T) {
	model, err := completer.NewModel(5, nil)
	require.NoError(t, err)
	faulty := domain.MustAssignment(2, -4)
	sc := &scenario{model: model, faulty: []domain.Assignment{faulty}}

	cfg := domain.DefaultConfig()
	cfg.FalsePositiveRate = 0.5
	cfg.FalseNegativeRate = 0.5
	cfg.RandomSeed = 99

	verifier, comp := collaborators(sc, cfg)
	want := oracle.NewNoisyOracle(faulty).
		WithFalsePositiveRate(0.5).
		WithFalseNegativeRate(0.5).
		WithSeed(99)
	ctx := context.Background()
	for _, config := range []domain.Assignment{
		domain.MustAssignment(1, 2, 3, -4, 5),
		domain.MustAssignment(-1, -2, -3, -4, -5),
		domain.MustAssignment(1, -2, 3, 4, -5),
		domain.MustAssignment(-1, 2, 3, -4, -5),
	} {
		got, err := verifier.Test(ctx, config)
		require.NoError(t, err)
		expected, err := want.Test(ctx, config)
		require.NoError(t, err)
		assert.Equal(t, expected, got, "answer for %s", config)
	}

	a, err := comp.Complete(ctx, domain.MustAssignment(2), nil)
	require.NoError(t, err)
	b, err := completer.NewSATCompleter(model, 99).Complete(ctx, domain.MustAssignment(2), nil)
	require.NoError(t, err)
	assert.True(t, a.Equal(b), "completer seeded from config: got %s, want %s", a, b)
}
