package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"sort"
	"time"

	"github.com/example/faultloc-lite/cmd/faultloc/internal/ui"
	"github.com/example/faultloc-lite/interaction/harness"
	"github.com/example/faultloc-lite/internal/observability"
	"github.com/example/faultloc-lite/internal/storage"
	"github.com/example/faultloc-lite/internal/storage/sqlite"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	sweepDatabase    string
	sweepParallelism int
	sweepSeed        int64
	sweepMetricsAddr string
	sweepRunsCSV     string
	sweepStatsCSV    string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <config.yaml>",
	Short: "Run a grid of searches over models, strategies and noise levels",
	Long: `Run every combination of system, scenario, strategy, noise rate, t and
iteration listed in a YAML sweep file.

Runs execute concurrently. With a database every run and its per-iteration
statistics are stored in sqlite, so 'faultloc report' can export them later.

EXAMPLE CONFIG:
  systems:
    - name: busybox
      model: models/busybox.dimacs
  algorithms: [random, single, repeat]
  t: [2]
  fp_noise: [0, 0.05]
  fn_noise: [0, 0.05]
  iterations: 10
  scenarios: 5
  sample_size: 20
  timeout: 5m
  parallelism: 8
  database: runs.db

EXAMPLES:
  faultloc sweep sweep.yaml
  faultloc sweep sweep.yaml --database runs.db --metrics-addr :6060`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepDatabase, "database", "", "sqlite database for the runs (overrides the config)")
	sweepCmd.Flags().IntVarP(&sweepParallelism, "parallelism", "j", 0, "concurrent runs (overrides the config)")
	sweepCmd.Flags().Int64Var(&sweepSeed, "seed", 0, "sweep seed (overrides the config)")
	sweepCmd.Flags().StringVar(&sweepMetricsAddr, "metrics-addr", "", "serve /metrics and /debug/pprof on this address")
	sweepCmd.Flags().StringVar(&sweepRunsCSV, "runs-csv", "", "also export the runs to this CSV file")
	sweepCmd.Flags().StringVar(&sweepStatsCSV, "stats-csv", "", "also export the statistics to this CSV file")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := interruptible("Stopping sweep, finished runs are kept...")
	defer cancel()

	cfg, err := harness.LoadSweepConfig(args[0])
	if err != nil {
		return err
	}
	if sweepDatabase != "" {
		cfg.Database = sweepDatabase
	}
	if sweepParallelism > 0 {
		cfg.Parallelism = sweepParallelism
	}
	if sweepSeed != 0 {
		cfg.Seed = sweepSeed
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ui.PrintHeader("Interaction Sweep")
	ui.PrintInfo(fmt.Sprintf("Systems:     %d", len(cfg.Systems)))
	ui.PrintInfo(fmt.Sprintf("Algorithms:  %v", cfg.Algorithms))
	ui.PrintInfo(fmt.Sprintf("Parallelism: %d", cfg.Parallelism))

	metrics := observability.NewMetrics()
	if sweepMetricsAddr != "" {
		srv := serveMetrics(sweepMetricsAddr, metrics)
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()
		ui.PrintInfo(fmt.Sprintf("Metrics:     http://%s/metrics", sweepMetricsAddr))
	}

	var store storage.Storage
	if cfg.Database != "" {
		ui.PrintStep(fmt.Sprintf("Opening database %s", cfg.Database))
		db, err := sqlite.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to create storage: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		store = db
	}

	ui.PrintStep("Running sweep...")
	start := time.Now()
	result, err := harness.NewSweep(cfg, store, metrics, slog.Default()).
		OnProgress(func(done, total int) { ui.PrintProgress(done, total, "  Runs") }).
		Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintWarning("Sweep cancelled")
		}
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Sweep %s finished %d runs in %s",
		result.ID, len(result.Records), ui.FormatDuration(time.Since(start))))

	fmt.Println()
	printSummary(result.Records)

	if err := exportCSV(sweepRunsCSV, sweepStatsCSV, result.Records); err != nil {
		return err
	}
	if cfg.Database != "" {
		ui.PrintInfo("")
		ui.PrintInfo(fmt.Sprintf("Export later with: faultloc report --database %s --sweep %s", cfg.Database, result.ID))
	}
	return nil
}

func serveMetrics(addr string, metrics *observability.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	return srv
}

// printSummary prints one row per algorithm and t.
func printSummary(records []*harness.RunRecord) {
	groups := lo.GroupBy(records, func(r *harness.RunRecord) string {
		return fmt.Sprintf("%s t=%d", r.Algorithm, r.T)
	})
	keys := lo.Keys(groups)
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		exact := lo.CountBy(group, func(r *harness.RunRecord) bool {
			return r.Evaluation.FoundCount == 1 &&
				r.Evaluation.FaultyIsSubsetFound == harness.FlagTrue &&
				r.Evaluation.FoundIsSubsetFaulty == harness.FlagTrue
		})
		timeouts := lo.CountBy(group, func(r *harness.RunRecord) bool { return r.TimedOut })
		errored := lo.CountBy(group, func(r *harness.RunRecord) bool { return r.Errored })
		verifications := lo.SumBy(group, func(r *harness.RunRecord) int { return r.VerifyCount })
		elapsed := lo.SumBy(group, func(r *harness.RunRecord) time.Duration { return r.Elapsed })
		rows = append(rows, []string{
			key,
			fmt.Sprint(len(group)),
			fmt.Sprint(exact),
			fmt.Sprintf("%.1f", float64(verifications)/float64(len(group))),
			ui.FormatDuration(elapsed / time.Duration(len(group))),
			fmt.Sprint(timeouts),
			fmt.Sprint(errored),
		})
	}
	ui.PrintTable([]string{"ALGORITHM", "RUNS", "EXACT", "AVG VERIFY", "AVG TIME", "TIMEOUTS", "ERRORS"}, rows)
}
