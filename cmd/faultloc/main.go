package main

import (
	"os"

	"github.com/example/faultloc-lite/cmd/faultloc/internal/cli"
	"github.com/example/faultloc-lite/cmd/faultloc/internal/ui"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
