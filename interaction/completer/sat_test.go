package completer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/faultloc-lite/interaction/domain"
)

// chainModel: 1 is core, 1 implies 2, 3 implies 4, 5 is free.
func chainModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(5, [][]int{{1}, {-1, 2}, {-3, 4}})
	require.NoError(t, err)
	return m
}

func freeModel(t *testing.T, n int) *Model {
	t.Helper()
	m, err := NewModel(n, nil)
	require.NoError(t, err)
	return m
}

func satisfies(m *Model, config domain.Assignment) bool {
	for _, c := range m.Clauses {
		ok := false
		for _, l := range c {
			if config.Contains(domain.Literal(l)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func TestCompleteProducesValidConfigurations(t *testing.T) {
	m := chainModel(t)
	c := NewSATCompleter(m, 42)
	ctx := context.Background()

	partial := domain.MustAssignment(3, -5)
	for i := 0; i < 20; i++ {
		config, err := c.Complete(ctx, partial, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, config.Len())
		assert.True(t, config.ContainsAll(partial), "config %v lost %v", config, partial)
		assert.True(t, satisfies(m, config), "config %v violates the model", config)
		assert.True(t, config.Contains(4), "3 implies 4 in %v", config)
	}
}

func TestCompleteRespectsExclusions(t *testing.T) {
	c := NewSATCompleter(freeModel(t, 2), 1)
	ctx := context.Background()

	var seen []domain.Assignment
	for i := 0; i < 4; i++ {
		config, err := c.Complete(ctx, domain.Assignment{}, seen)
		require.NoError(t, err)
		for _, s := range seen {
			require.False(t, config.Equal(s), "config %v repeated", config)
		}
		seen = append(seen, config)
	}
	_, err := c.Complete(ctx, domain.Assignment{}, seen)
	assert.ErrorIs(t, err, domain.ErrInfeasible)
}

func TestCompleteInfeasible(t *testing.T) {
	c := NewSATCompleter(chainModel(t), 1)
	ctx := context.Background()

	_, err := c.Complete(ctx, domain.MustAssignment(-1), nil)
	assert.ErrorIs(t, err, domain.ErrInfeasible)

	_, err = c.Complete(ctx, domain.MustAssignment(1, -2), nil)
	assert.ErrorIs(t, err, domain.ErrInfeasible)

	_, err = c.Complete(ctx, domain.Assignment{}, []domain.Assignment{{}})
	assert.ErrorIs(t, err, domain.ErrInfeasible)

	_, err = c.Complete(ctx, domain.MustAssignment(9), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidLiteral)
}

func TestUnsatisfiableModel(t *testing.T) {
	m, err := NewModel(1, [][]int{{1}, {-1}})
	require.NoError(t, err)
	c := NewSATCompleter(m, 1)
	_, err = c.Complete(context.Background(), domain.Assignment{}, nil)
	assert.ErrorIs(t, err, domain.ErrInfeasible)
}

func TestCompleteIsReproducible(t *testing.T) {
	m := freeModel(t, 8)
	a := NewSATCompleter(m, 99)
	b := NewSATCompleter(m, 99)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		ca, err := a.Complete(ctx, domain.Assignment{}, nil)
		require.NoError(t, err)
		cb, err := b.Complete(ctx, domain.Assignment{}, nil)
		require.NoError(t, err)
		assert.True(t, ca.Equal(cb), "%v != %v", ca, cb)
	}
}

func TestCompleteBestCoversHalf(t *testing.T) {
	c := NewSATCompleter(freeModel(t, 6), 5)
	ctx := context.Background()
	candidates := []domain.Assignment{
		domain.MustAssignment(1, 2),
		domain.MustAssignment(3, 4),
		domain.MustAssignment(5, 6),
		domain.MustAssignment(-1, -3),
	}

	config, err := c.CompleteBest(ctx, candidates, nil)
	require.NoError(t, err)
	covered := 0
	for _, cand := range candidates {
		if config.ContainsAll(cand) {
			covered++
		}
	}
	assert.GreaterOrEqual(t, covered, 2)
}

func TestCompleteBestSkipsInvalidCandidates(t *testing.T) {
	c := NewSATCompleter(chainModel(t), 5)
	config, err := c.CompleteBest(context.Background(), []domain.Assignment{
		domain.MustAssignment(-1, 5),
		domain.MustAssignment(3, -4),
	}, nil)
	require.NoError(t, err)
	assert.True(t, satisfies(chainModel(t), config))
}

func TestUpdateAndCoreDead(t *testing.T) {
	c := NewSATCompleter(chainModel(t), 3)
	ctx := context.Background()

	core, err := c.CoreDead(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, core.Ints())

	updated, err := c.Update(ctx, domain.MustAssignment(3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, updated.Ints())

	_, err = c.Update(ctx, domain.MustAssignment(3, -4))
	assert.ErrorIs(t, err, domain.ErrInfeasible)

	assert.True(t, c.IsValid(ctx, domain.MustAssignment(1, 2, -3, -4, 5)))
	assert.False(t, c.IsValid(ctx, domain.MustAssignment(1, 2, 3, -4, 5)))
}

func TestMergeDelegatesToDomain(t *testing.T) {
	c := NewSATCompleter(freeModel(t, 3), 1)
	merged, err := c.Merge([]domain.Assignment{domain.MustAssignment(1), domain.MustAssignment(-3)})
	require.NoError(t, err)
	assert.Equal(t, []int{1, -3}, merged.Ints())

	_, err = c.Merge([]domain.Assignment{domain.MustAssignment(1), domain.MustAssignment(-1)})
	assert.ErrorIs(t, err, domain.ErrContradiction)
}

func TestReadModel(t *testing.T) {
	m, err := ReadModel(strings.NewReader("p cnf 4 2\n1 -2 0\n3 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumVars)
	assert.Equal(t, [][]int{{1, -2}, {3}}, m.Clauses)

	var buf bytes.Buffer
	require.NoError(t, WriteModel(&buf, m))
	again, err := ReadModel(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestReadAssignments(t *testing.T) {
	list := []domain.Assignment{
		domain.MustAssignment(1, -2, 3),
		domain.MustAssignment(-1, -2, -3),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAssignments(&buf, 3, list))

	n, got, err := ReadAssignments(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(list[0]))
	assert.True(t, got[1].Equal(list[1]))

	_, _, err = ReadAssignments(strings.NewReader("p cnf 2 1\n1 -1 0\n"))
	assert.ErrorIs(t, err, domain.ErrContradiction)
}
