package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/faultloc-lite/cmd/faultloc/internal/ui"
	"github.com/example/faultloc-lite/interaction/completer"
	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/interaction/finder"
	"github.com/example/faultloc-lite/interaction/generator"
	"github.com/example/faultloc-lite/interaction/harness"
	"github.com/example/faultloc-lite/interaction/oracle"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	runModel             string
	runInteractions      string
	runSample            string
	runSampleSize        int
	runInteractionSize   int
	runAlgorithm         string
	runT                 int
	runFalsePositiveRate float64
	runFalseNegativeRate float64
	runCreationLimit     int
	runVerifyLimit       int
	runLimitFactor       float64
	runSeed              int64
	runTimeout           time.Duration
	runShowStatistics    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search for the faulty interaction of one scenario",
	Long: `Run one strategy against a simulated oracle.

The oracle fails every configuration containing one of the faulty
interactions, optionally flipping answers at the given noise rates. Without
--interactions one interaction of --size literals is drawn from a random
valid configuration. Without --sample the initial configurations are
generated, the first of them containing the faulty interaction.

EXAMPLES:
  # Generated scenario, default strategy
  faultloc run --model linux.dimacs

  # Fixed scenario, noisy oracle, bounded budget
  faultloc run --model linux.dimacs --interactions f.dimacs --sample s.dimacs \
      --algorithm repeat --fn 0.1 --verification-limit 500

  # Iterate t = 1..3 and show the per-level statistics
  faultloc run --model linux.dimacs --algorithm iterative-random --t 3 --stats`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "DIMACS feature model (required)")
	runCmd.Flags().StringVar(&runInteractions, "interactions", "", "DIMACS file with the faulty interactions, one per clause")
	runCmd.Flags().StringVar(&runSample, "sample", "", "DIMACS file with the initial configurations, one per clause")
	runCmd.Flags().IntVar(&runSampleSize, "sample-size", 20, "number of generated initial configurations")
	runCmd.Flags().IntVar(&runInteractionSize, "size", 2, "size of the generated faulty interaction")
	runCmd.Flags().StringVarP(&runAlgorithm, "algorithm", "a", "random", "search strategy, see 'faultloc algorithms'")
	runCmd.Flags().IntVar(&runT, "t", 2, "interaction size to search for")
	runCmd.Flags().Float64Var(&runFalsePositiveRate, "fp", 0, "probability that a failing configuration passes")
	runCmd.Flags().Float64Var(&runFalseNegativeRate, "fn", 0, "probability that a passing configuration fails")
	runCmd.Flags().IntVar(&runCreationLimit, "creation-limit", domain.NoLimit, "maximum configurations to create (-1 = unlimited)")
	runCmd.Flags().IntVar(&runVerifyLimit, "verification-limit", domain.NoLimit, "maximum oracle calls (-1 = unlimited)")
	runCmd.Flags().Float64Var(&runLimitFactor, "limit-factor", 1.0, "scale of the derived verification budget")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed for reproducibility (0 = random)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "abort the search after this duration (0 = no timeout)")
	runCmd.Flags().BoolVar(&runShowStatistics, "stats", false, "print the per-iteration statistics")
	_ = runCmd.MarkFlagRequired("model")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := interruptible("Aborting search...")
	defer cancel()

	ui.PrintHeader("Interaction Search")

	cfg := domain.DefaultConfig()
	cfg.T = runT
	cfg.CreationLimit = runCreationLimit
	cfg.VerificationLimit = runVerifyLimit
	cfg.LimitFactor = runLimitFactor
	cfg.FalsePositiveRate = runFalsePositiveRate
	cfg.FalseNegativeRate = runFalseNegativeRate
	cfg.RandomSeed = runSeed
	if cfg.RandomSeed == 0 {
		cfg.RandomSeed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	f, err := finder.New(runAlgorithm, cfg)
	if err != nil {
		return err
	}

	ui.PrintStep(fmt.Sprintf("Reading model %s", runModel))
	model, err := completer.ReadModelFile(runModel)
	if err != nil {
		return err
	}
	ui.PrintInfo(fmt.Sprintf("%d variables, %d clauses", model.NumVars, len(model.Clauses)))

	comp := completer.NewSATCompleter(model, cfg.RandomSeed)
	gen := generator.New(comp, cfg.RandomSeed)

	core, err := comp.CoreDead(ctx)
	if err != nil {
		return fmt.Errorf("computing core: %w", err)
	}

	var faulty []domain.Assignment
	if runInteractions != "" {
		if _, faulty, err = completer.ReadAssignmentsFile(runInteractions); err != nil {
			return err
		}
	} else {
		inter, err := gen.Interaction(ctx, core, runInteractionSize)
		if err != nil {
			return err
		}
		faulty = []domain.Assignment{inter}
	}
	if len(faulty) == 0 {
		return fmt.Errorf("%w: no faulty interactions", domain.ErrInvalidConfig)
	}
	faultyUpdated := make([]domain.Assignment, 0, len(faulty))
	for _, inter := range faulty {
		updated, err := comp.Update(ctx, inter)
		if err != nil {
			return fmt.Errorf("interaction %v is not valid under the model: %w", inter, err)
		}
		faultyUpdated = append(faultyUpdated, updated)
	}

	var sample []domain.Assignment
	if runSample != "" {
		if _, sample, err = completer.ReadAssignmentsFile(runSample); err != nil {
			return err
		}
	} else if sample, err = gen.Sample(ctx, faulty[0], runSampleSize); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Scenario: %d faulty interaction(s), %d sample configurations", len(faulty), len(sample)))
	for i, inter := range faulty {
		ui.PrintInteraction(i+1, inter, false)
	}

	ui.PrintStep(fmt.Sprintf("Searching with %s (t=%d)", f.Name(), runT))
	verifier := oracle.NewNoisyOracle(faulty...).
		WithFalsePositiveRate(runFalsePositiveRate).
		WithFalseNegativeRate(runFalseNegativeRate).
		WithSeed(cfg.RandomSeed)
	rec, err := harness.RunWithTimeout(ctx, &harness.Request{
		Finder:    f,
		Verifier:  verifier,
		Completer: comp,
		Core:      core,
		Sample:    sample,
		T:         runT,
		Timeout:   runTimeout,
	})
	if err != nil {
		return err
	}
	rec.System = strings.TrimSuffix(filepath.Base(runModel), filepath.Ext(runModel))
	rec.FalsePositiveRate = runFalsePositiveRate
	rec.FalseNegativeRate = runFalseNegativeRate
	rec.Faulty = faulty
	rec.FaultyUpdated = faultyUpdated
	harness.EvaluateRecord(rec)

	printRecord(rec)
	if rec.Errored {
		return rec.Err
	}
	return nil
}

func printRecord(rec *harness.RunRecord) {
	ui.PrintOutcome(rec.Status())
	ui.PrintCounts(rec.VerifyCount, rec.CreationCount, rec.Elapsed)

	found := rec.Found()
	if len(found) > 0 {
		fmt.Println()
		ui.PrintInfo(fmt.Sprintf("Found %d interaction(s):", len(found)))
		for i, inter := range found {
			correct := lo.ContainsBy(rec.Faulty, func(f domain.Assignment) bool { return f.Equal(inter) })
			ui.PrintInteraction(i+1, inter, correct)
		}
		if rec.MergedUpdated != nil {
			ui.PrintInfo(fmt.Sprintf("Merged and updated: %s", rec.MergedUpdated))
		}
	}

	e := rec.Evaluation
	if e.FoundLiteralsCount > 0 {
		fmt.Println()
		ui.PrintTable(
			[]string{"LITERALS", "CORRECT", "MISSED", "WRONG"},
			[][]string{{
				fmt.Sprint(e.FoundLiteralsCount),
				fmt.Sprint(e.CorrectlyFoundLiteralsCount),
				fmt.Sprint(e.MissedLiteralsCount),
				fmt.Sprint(e.IncorrectlyFoundLiteralsCount),
			}},
		)
	}

	if runShowStatistics && len(rec.Statistics) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(rec.Statistics))
		for _, s := range rec.Statistics {
			rows = append(rows, []string{
				fmt.Sprint(s.T), fmt.Sprint(s.Iteration), fmt.Sprint(s.Candidates),
				fmt.Sprint(s.VerifyCount), fmt.Sprint(s.CreationCount),
			})
		}
		ui.PrintTable([]string{"T", "ITERATION", "CANDIDATES", "VERIFICATIONS", "CREATIONS"}, rows)
	}

	if rec.TimedOut {
		ui.PrintWarning("Search timed out, no result kept")
	}
}
