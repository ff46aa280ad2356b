package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/faultloc-lite/interaction/completer"
	"github.com/example/faultloc-lite/interaction/domain"
)

func newCompleter(t *testing.T, n int, clauses [][]int) *completer.SATCompleter {
	t.Helper()
	m, err := completer.NewModel(n, clauses)
	require.NoError(t, err)
	return completer.NewSATCompleter(m, 11)
}

func TestGenerateScenario(t *testing.T) {
	c := newCompleter(t, 8, [][]int{{1}, {-3, 4}})
	g := New(c, 5)

	s, err := g.Generate(context.Background(), Config{Interactions: 2, Size: 2, SampleSize: 10, EnsureFailing: true})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, s.Core.Ints())
	require.Len(t, s.Faulty, 2)
	require.Len(t, s.FaultyUpdated, 2)
	for i, f := range s.Faulty {
		assert.Equal(t, 2, f.Len())
		assert.False(t, f.ContainsVariable(1), "faulty %v uses a core variable", f)
		assert.True(t, s.FaultyUpdated[i].ContainsAll(f))
		assert.True(t, s.FaultyUpdated[i].Contains(1), "update adds the core literal")
	}

	require.Len(t, s.Sample, 10)
	assert.True(t, s.Sample[0].ContainsAll(s.Faulty[0]), "first sample must fail")
	seen := map[string]bool{}
	for _, config := range s.Sample {
		assert.False(t, seen[config.Key()], "duplicate %v", config)
		seen[config.Key()] = true
		assert.True(t, c.IsValid(context.Background(), config))
	}
}

func TestGenerateStopsWhenModelIsExhausted(t *testing.T) {
	c := newCompleter(t, 2, nil)
	s, err := New(c, 1).Generate(context.Background(), Config{Size: 1, SampleSize: 10})
	require.NoError(t, err)
	assert.Len(t, s.Sample, 4)
}

func TestGenerateRejectsOversizedInteractions(t *testing.T) {
	c := newCompleter(t, 3, [][]int{{1}})
	_, err := New(c, 1).Generate(context.Background(), Config{Size: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := Config{Interactions: 1, Size: 11}
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidConfig)
}

func TestSampleContainsFailingInteraction(t *testing.T) {
	c := newCompleter(t, 6, nil)
	failing := domain.MustAssignment(-2, 5)

	sample, err := New(c, 3).Sample(context.Background(), failing, 5)
	require.NoError(t, err)
	require.Len(t, sample, 5)
	assert.True(t, sample[0].ContainsAll(failing))
	assert.Equal(t, 6, sample[0].Len())
}
