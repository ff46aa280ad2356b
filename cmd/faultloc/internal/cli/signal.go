package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/faultloc-lite/cmd/faultloc/internal/ui"
)

// interruptible returns a context that is cancelled on Ctrl+C or SIGTERM.
func interruptible(notice string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			ui.PrintWarning("\nInterrupted! " + notice)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
