package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/faultloc-lite/interaction/domain"
)

const sweepYAML = `
systems:
  - name: toy
    model: models/toy.dimacs
algorithms: [random, single]
t: [1, 2]
fp_noise: [0, 0.05]
verification_limit: 0
timeout: 30s
parallelism: 4
seed: 9
`

func TestParseSweepConfig(t *testing.T) {
	cfg, err := ParseSweepConfig([]byte(sweepYAML))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, cfg.T)
	assert.Equal(t, []float64{0, 0.05}, cfg.FalsePositiveRates)
	assert.Equal(t, []float64{0}, cfg.FalseNegativeRates)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Iterations)
	assert.Equal(t, 4, cfg.Parallelism)

	fc := cfg.FinderConfig(2, 0.05, 0)
	assert.Equal(t, 0, fc.VerificationLimit, "an explicit zero limit is kept")
	assert.Equal(t, domain.NoLimit, fc.CreationLimit)
	assert.Equal(t, 0.05, fc.FalsePositiveRate)
}

func TestParseSweepConfigRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no systems", "algorithms: [random]"},
		{"no algorithms", "systems: [{name: a, model: a.dimacs}]"},
		{"system without model", "systems: [{name: a}]\nalgorithms: [random]"},
		{"noise out of range", "systems: [{name: a, model: m}]\nalgorithms: [random]\nfn_noise: [1.5]"},
		{"t out of range", "systems: [{name: a, model: m}]\nalgorithms: [random]\nt: [11]"},
		{"malformed", "systems: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSweepConfig([]byte(tt.yaml))
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}

	_, err := ParseSweepConfig([]byte("systems: [{name: a, model: m}]\nalgorithms: [annealing]"))
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)
}

func TestLoadSweepConfigResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sweepYAML), 0o644))

	cfg, err := LoadSweepConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "models", "toy.dimacs"), cfg.Systems[0].Model)
	assert.Empty(t, cfg.Systems[0].Sample)
}
