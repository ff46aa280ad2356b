package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/example/faultloc-lite/cmd/faultloc/internal/ui"
	"github.com/example/faultloc-lite/interaction/harness"
	"github.com/example/faultloc-lite/internal/storage"
	"github.com/example/faultloc-lite/internal/storage/sqlite"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	reportDatabase  string
	reportSweep     string
	reportAlgorithm string
	reportOutcomes  []string
	reportLimit     int
	reportRunsCSV   string
	reportStatsCSV  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export stored runs as CSV",
	Long: `Export runs stored by 'faultloc sweep' as semicolon separated CSV.

Every run is re-evaluated against its faulty interactions on export. Without
--runs-csv the runs are written to stdout.

EXAMPLES:
  # All runs of one sweep
  faultloc report --database runs.db --sweep sweep-1a2b3c4d > runs.csv

  # Only runs that did not converge, plus their statistics
  faultloc report --database runs.db --outcome TIMEOUT --outcome BUDGET_EXHAUSTED \
      --runs-csv runs.csv --stats-csv stats.csv`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatabase, "database", "", "sqlite database written by sweep (required)")
	reportCmd.Flags().StringVar(&reportSweep, "sweep", "", "only runs of this sweep")
	reportCmd.Flags().StringVarP(&reportAlgorithm, "algorithm", "a", "", "only runs of this strategy")
	reportCmd.Flags().StringSliceVar(&reportOutcomes, "outcome", nil, "only runs with these statuses")
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 0, "maximum number of runs (0 = all)")
	reportCmd.Flags().StringVar(&reportRunsCSV, "runs-csv", "", "write runs to this file instead of stdout")
	reportCmd.Flags().StringVar(&reportStatsCSV, "stats-csv", "", "write per-iteration statistics to this file")
	_ = reportCmd.MarkFlagRequired("database")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := sqlite.New(reportDatabase)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	records, err := harness.LoadRuns(ctx, store, storage.ListOptions{
		SweepID:  reportSweep,
		Outcomes: reportOutcomes,
		Limit:    reportLimit,
	})
	if err != nil {
		return err
	}
	if reportAlgorithm != "" {
		records = lo.Filter(records, func(r *harness.RunRecord, _ int) bool {
			return r.Algorithm == reportAlgorithm
		})
	}
	if len(records) == 0 {
		ui.PrintWarning("No runs match")
		return nil
	}

	if reportRunsCSV == "" {
		if err := harness.WriteRunsCSV(cmd.OutOrStdout(), records); err != nil {
			return err
		}
		return exportCSV("", reportStatsCSV, records)
	}
	return exportCSV(reportRunsCSV, reportStatsCSV, records)
}

// exportCSV writes the runs and statistics files whose path is set.
func exportCSV(runsPath, statsPath string, records []*harness.RunRecord) error {
	if runsPath != "" {
		if err := writeFile(runsPath, func(f *os.File) error { return harness.WriteRunsCSV(f, records) }); err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Wrote %d runs to %s", len(records), runsPath))
	}
	if statsPath != "" {
		if err := writeFile(statsPath, func(f *os.File) error { return harness.WriteStatisticsCSV(f, records) }); err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Wrote statistics to %s", statsPath))
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
