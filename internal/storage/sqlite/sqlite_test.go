package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/internal/storage"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func inTx(t *testing.T, s *SQLiteStorage, fn func(uow storage.UnitOfWork)) {
	t.Helper()
	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	fn(uow)
	require.NoError(t, uow.Commit())
}

func seed(t *testing.T, s *SQLiteStorage) (*storage.Model, *storage.Algorithm) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	m := &storage.Model{ID: "m1", Name: "busybox", NumVars: 5, NumClauses: 2, CreatedAt: now}
	cfg := domain.DefaultConfig()
	cfg.FalseNegativeRate = 0.1
	a := &storage.Algorithm{ID: "a1", Name: "random", Config: cfg, CreatedAt: now}

	inTx(t, s, func(uow storage.UnitOfWork) {
		require.NoError(t, uow.Models().Create(context.Background(), m))
		require.NoError(t, uow.Algorithms().Create(context.Background(), a))
	})
	return m, a
}

func TestModelsAndAlgorithms(t *testing.T) {
	s := newTestStorage(t)
	m, a := seed(t, s)
	ctx := context.Background()

	inTx(t, s, func(uow storage.UnitOfWork) {
		got, err := uow.Models().GetByName(ctx, "busybox")
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
		assert.Equal(t, 5, got.NumVars)

		_, err = uow.Models().Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		alg, err := uow.Algorithms().Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.Config, alg.Config)

		list, err := uow.Algorithms().List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestRunRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	m, a := seed(t, s)
	ctx := context.Background()

	merged := domain.MustAssignment(2, -4)
	run := &storage.Run{
		ID:            "r1",
		SweepID:       "s1",
		ModelID:       m.ID,
		AlgorithmID:   a.ID,
		T:             2,
		Outcome:       domain.OutcomeConverged.String(),
		Faulty:        []domain.Assignment{merged},
		Found:         []domain.Assignment{merged},
		Merged:        &merged,
		VerifyCount:   7,
		CreationCount: 8,
		Elapsed:       1500 * time.Millisecond,
		CreatedAt:     time.Now().UTC(),
	}
	stats := []*storage.StatisticRow{
		{Statistic: domain.Statistic{T: 2, Iteration: 0, Candidates: 7}},
		{Statistic: domain.Statistic{T: 2, Iteration: 1, Candidates: 3, VerifyCount: 1, CreationCount: 1}},
	}

	inTx(t, s, func(uow storage.UnitOfWork) {
		require.NoError(t, uow.Runs().Create(ctx, run))
		require.NoError(t, uow.Statistics().CreateBatch(ctx, run.ID, stats))
	})
	assert.NotZero(t, stats[0].ID)

	inTx(t, s, func(uow storage.UnitOfWork) {
		got, err := uow.Runs().Get(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, got.Found, 1)
		assert.True(t, got.Found[0].Equal(merged))
		require.NotNil(t, got.Merged)
		assert.True(t, got.Merged.Equal(merged))
		assert.Nil(t, got.MergedUpdated)
		assert.Equal(t, 1500*time.Millisecond, got.Elapsed)
		assert.Equal(t, 7, got.VerifyCount)

		rows, err := uow.Statistics().ListByRun(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 3, rows[1].Candidates)
	})
}

func TestRunListAndDelete(t *testing.T) {
	s := newTestStorage(t)
	m, a := seed(t, s)
	ctx := context.Background()

	inTx(t, s, func(uow storage.UnitOfWork) {
		for i, sweep := range []string{"s1", "s1", "s2"} {
			run := &storage.Run{
				ID:          string(rune('a' + i)),
				SweepID:     sweep,
				ModelID:     m.ID,
				AlgorithmID: a.ID,
				Iteration:   i,
				T:           2,
				Outcome:     domain.OutcomeAmbiguous.String(),
				TimedOut:    i == 2,
				CreatedAt:   time.Now().UTC(),
			}
			require.NoError(t, uow.Runs().Create(ctx, run))
		}
	})

	inTx(t, s, func(uow storage.UnitOfWork) {
		runs, err := uow.Runs().List(ctx, storage.ListOptions{SweepID: "s1"})
		require.NoError(t, err)
		assert.Len(t, runs, 2)

		runs, err = uow.Runs().List(ctx, storage.ListOptions{Limit: 1, Offset: 2})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.True(t, runs[0].TimedOut)

		runs, err = uow.Runs().List(ctx, storage.ListOptions{Outcomes: []string{"CONVERGED"}})
		require.NoError(t, err)
		assert.Empty(t, runs)

		require.NoError(t, uow.Runs().Delete(ctx, "a"))
		assert.ErrorIs(t, uow.Runs().Delete(ctx, "a"), domain.ErrNotFound)
	})
}

func TestRollbackDiscardsWrites(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Models().Create(ctx, &storage.Model{ID: "m", Name: "x", CreatedAt: time.Now()}))
	require.NoError(t, uow.Rollback())

	inTx(t, s, func(uow storage.UnitOfWork) {
		_, err := uow.Models().Get(ctx, "m")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
