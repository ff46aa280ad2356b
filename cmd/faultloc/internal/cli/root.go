package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "faultloc",
	Short: "Locate faulty feature interactions in configurable systems",
	Long: `faultloc searches for the small feature interactions that make a
configurable system fail. It probes valid configurations of a DIMACS model
against a noisy oracle and narrows the candidate interactions down until one
remains or a budget runs out.

WORKFLOW:
  1. faultloc generate --model m.dimacs --interactions-out f.dimacs --sample-out s.dimacs
  2. faultloc run --model m.dimacs --interactions f.dimacs --sample s.dimacs
  3. faultloc sweep sweep.yaml
  4. faultloc report --database runs.db --runs-csv runs.csv

EXAMPLES:
  # Search with the default strategy on a generated scenario
  faultloc run --model busybox.dimacs --sample-size 20

  # Compare strategies under noise
  faultloc run --model busybox.dimacs --interactions f.dimacs --algorithm repeat --fn 0.1`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log search progress to stderr")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(algorithmsCmd)
}
