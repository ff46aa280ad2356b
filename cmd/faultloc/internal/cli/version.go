package cli

import (
	"fmt"

	"github.com/example/faultloc-lite/cmd/faultloc/internal/ui"
	"github.com/spf13/cobra"
)

const (
	version = "0.3.0"
	banner  = `
  __            _ _   _
 / _| __ _ _  _| | |_| | ___   ___
|  _|/ _' | || | |  _| |/ _ \ / __|
|_|  \__,_|\_,_|_|\__|_|\___/ \___|
`
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of faultloc.`,
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Println(banner)
	ui.PrintInfo(fmt.Sprintf("Version: %s", version))
	ui.PrintInfo("Adaptive fault localization for feature interactions")
	ui.PrintInfo("")
	ui.PrintInfo("For help: faultloc --help")
}
