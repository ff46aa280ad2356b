package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/interaction/finder"
)

// System is one feature model of a sweep.
type System struct {
	// Name identifies the model in storage and reports.
	Name string `yaml:"name"`

	// Model is the path of the DIMACS model.
	Model string `yaml:"model"`

	// Interactions optionally names a DIMACS file of faulty interactions,
	// one per clause line. Each line becomes its own scenario. Without it,
	// scenarios are generated.
	Interactions string `yaml:"interactions,omitempty"`

	// Sample optionally names a DIMACS file of initial configurations.
	// Without it, a sample is generated per scenario.
	Sample string `yaml:"sample,omitempty"`
}

// SweepConfig describes a grid of runs: every system and scenario against
// every algorithm, t, noise pair and iteration.
type SweepConfig struct {
	Systems []System `yaml:"systems"`

	// Algorithms are registry names, see finder.Names.
	Algorithms []string `yaml:"algorithms"`

	// T lists the interaction sizes to search for.
	// Default: [2]
	T []int `yaml:"t"`

	// FalsePositiveRates and FalseNegativeRates span the noise grid.
	// Default: [0] each
	FalsePositiveRates []float64 `yaml:"fp_noise"`
	FalseNegativeRates []float64 `yaml:"fn_noise"`

	// Iterations repeats every combination with a different seed.
	// Default: 1
	Iterations int `yaml:"iterations"`

	// Scenarios is the number of generated fault scenarios per system.
	// Ignored for systems that list their interactions.
	// Default: 1
	Scenarios int `yaml:"scenarios"`

	// InteractionSize is the size of generated faulty interactions.
	// Default: 2
	InteractionSize int `yaml:"interaction_size"`

	// SampleSize is the number of generated initial configurations.
	// Default: 1
	SampleSize int `yaml:"sample_size"`

	// CreationLimit and VerificationLimit bound every run. Use -1 for no
	// limit. A missing key means no limit.
	CreationLimit     *int `yaml:"creation_limit,omitempty"`
	VerificationLimit *int `yaml:"verification_limit,omitempty"`

	// LimitFactor scales the derived verification budget.
	// Default: 1.0
	LimitFactor float64 `yaml:"limit_factor"`

	// Timeout bounds every run. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`

	// Parallelism is the number of concurrent runs.
	// Default: 1
	Parallelism int `yaml:"parallelism"`

	// Seed makes the sweep reproducible. Use 0 for a time based seed.
	Seed int64 `yaml:"seed"`

	// Database is the sqlite path runs are stored in. Empty disables storage.
	Database string `yaml:"database,omitempty"`
}

// DefaultSweepConfig returns a config with every default applied and no
// systems or algorithms.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		T:                  []int{2},
		FalsePositiveRates: []float64{0},
		FalseNegativeRates: []float64{0},
		Iterations:         1,
		Scenarios:          1,
		InteractionSize:    2,
		SampleSize:         1,
		LimitFactor:        1.0,
		Parallelism:        1,
	}
}

// WithDefaults returns a new config with defaults applied for zero values.
func (c SweepConfig) WithDefaults() SweepConfig {
	defaults := DefaultSweepConfig()
	if len(c.T) == 0 {
		c.T = defaults.T
	}
	if len(c.FalsePositiveRates) == 0 {
		c.FalsePositiveRates = defaults.FalsePositiveRates
	}
	if len(c.FalseNegativeRates) == 0 {
		c.FalseNegativeRates = defaults.FalseNegativeRates
	}
	if c.Iterations == 0 {
		c.Iterations = defaults.Iterations
	}
	if c.Scenarios == 0 {
		c.Scenarios = defaults.Scenarios
	}
	if c.InteractionSize == 0 {
		c.InteractionSize = defaults.InteractionSize
	}
	if c.SampleSize == 0 {
		c.SampleSize = defaults.SampleSize
	}
	if c.LimitFactor == 0 {
		c.LimitFactor = defaults.LimitFactor
	}
	if c.Parallelism == 0 {
		c.Parallelism = defaults.Parallelism
	}
	return c
}

// Validate checks that the configuration is valid.
func (c *SweepConfig) Validate() error {
	if len(c.Systems) == 0 {
		return fmt.Errorf("%w: at least one system is required", domain.ErrInvalidConfig)
	}
	for i, s := range c.Systems {
		if s.Name == "" || s.Model == "" {
			return fmt.Errorf("%w: system %d needs a name and a model", domain.ErrInvalidConfig, i)
		}
	}
	if len(c.Algorithms) == 0 {
		return fmt.Errorf("%w: at least one algorithm is required", domain.ErrInvalidConfig)
	}
	for _, name := range c.Algorithms {
		if _, err := finder.New(name, domain.DefaultConfig()); err != nil {
			return err
		}
	}
	if c.Iterations < 1 || c.Scenarios < 1 || c.Parallelism < 1 {
		return fmt.Errorf("%w: iterations, scenarios and parallelism must be positive",
			domain.ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", domain.ErrInvalidConfig)
	}
	for _, t := range c.T {
		cfg := c.FinderConfig(t, 0, 0)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	for _, fp := range c.FalsePositiveRates {
		for _, fn := range c.FalseNegativeRates {
			cfg := c.FinderConfig(c.T[0], fp, fn)
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// FinderConfig builds the finder configuration for one grid point.
func (c *SweepConfig) FinderConfig(t int, fp, fn float64) domain.FinderConfig {
	cfg := domain.DefaultConfig()
	cfg.T = t
	cfg.FalsePositiveRate = fp
	cfg.FalseNegativeRate = fn
	cfg.LimitFactor = c.LimitFactor
	if c.CreationLimit != nil {
		cfg.CreationLimit = *c.CreationLimit
	}
	if c.VerificationLimit != nil {
		cfg.VerificationLimit = *c.VerificationLimit
	}
	return cfg
}

// LoadSweepConfig reads a YAML sweep file. Relative model, interaction and
// sample paths are resolved against the file's directory.
func LoadSweepConfig(path string) (SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SweepConfig{}, err
	}
	cfg, err := ParseSweepConfig(data)
	if err != nil {
		return SweepConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range cfg.Systems {
		s := &cfg.Systems[i]
		s.Model = resolve(dir, s.Model)
		s.Interactions = resolve(dir, s.Interactions)
		s.Sample = resolve(dir, s.Sample)
	}
	return cfg, nil
}

// ParseSweepConfig decodes YAML, applies defaults and validates.
func ParseSweepConfig(data []byte) (SweepConfig, error) {
	var cfg SweepConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SweepConfig{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return SweepConfig{}, err
	}
	return cfg, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
