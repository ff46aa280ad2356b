package cli

import (
	"fmt"

	"github.com/example/faultloc-lite/interaction/finder"
	"github.com/spf13/cobra"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the available search strategies",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range finder.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}
