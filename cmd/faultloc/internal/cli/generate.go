package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/example/faultloc-lite/cmd/faultloc/internal/ui"
	"github.com/example/faultloc-lite/interaction/completer"
	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/interaction/generator"
	"github.com/spf13/cobra"
)

var (
	genModel           string
	genInteractions    int
	genSize            int
	genSampleSize      int
	genSeed            int64
	genInteractionsOut string
	genSampleOut       string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate faulty interactions and an initial sample",
	Long: `Generate a fault scenario for a model.

Faulty interactions are drawn from random valid configurations and never use
core or dead features. The sample holds distinct valid configurations; the
first one contains the first faulty interaction. Both are written in DIMACS
form with one clause per interaction or configuration, ready for
'faultloc run --interactions --sample'.

EXAMPLES:
  # Print one interaction of size 2 and a sample of 20 to stdout
  faultloc generate --model linux.dimacs

  # Two interactions of size 3, written to files
  faultloc generate --model linux.dimacs --count 2 --size 3 \
      --interactions-out f.dimacs --sample-out s.dimacs`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genModel, "model", "m", "", "DIMACS feature model (required)")
	generateCmd.Flags().IntVarP(&genInteractions, "count", "n", 1, "number of faulty interactions")
	generateCmd.Flags().IntVar(&genSize, "size", 2, "literals per faulty interaction")
	generateCmd.Flags().IntVar(&genSampleSize, "sample-size", 20, "number of sample configurations")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed for reproducibility (0 = random)")
	generateCmd.Flags().StringVar(&genInteractionsOut, "interactions-out", "", "write interactions here instead of stdout")
	generateCmd.Flags().StringVar(&genSampleOut, "sample-out", "", "write the sample here instead of stdout")
	_ = generateCmd.MarkFlagRequired("model")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := interruptible("Aborting generation...")
	defer cancel()

	model, err := completer.ReadModelFile(genModel)
	if err != nil {
		return err
	}
	seed := genSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := generator.New(completer.NewSATCompleter(model, seed), seed)

	scenario, err := gen.Generate(ctx, generator.Config{
		Interactions:  genInteractions,
		Size:          genSize,
		SampleSize:    genSampleSize,
		EnsureFailing: true,
	})
	if err != nil {
		return err
	}
	if len(scenario.Sample) < genSampleSize {
		ui.PrintWarning(fmt.Sprintf("Model only has %d distinct configurations", len(scenario.Sample)))
	}

	if err := writeAssignments(cmd.OutOrStdout(), genInteractionsOut, model.NumVars, scenario.Faulty); err != nil {
		return err
	}
	return writeAssignments(cmd.OutOrStdout(), genSampleOut, model.NumVars, scenario.Sample)
}

// writeAssignments writes to path, or to stdout when path is empty.
func writeAssignments(stdout io.Writer, path string, numVars int, list []domain.Assignment) error {
	if path == "" {
		return completer.WriteAssignments(stdout, numVars, list)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := completer.WriteAssignments(f, numVars, list); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Wrote %d entries to %s", len(list), path))
	return nil
}
