package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/example/faultloc-lite/cmd/faultloc/internal/ui"
	"github.com/example/faultloc-lite/internal/storage/sqlite"
	"github.com/example/faultloc-lite/internal/web"
	"github.com/spf13/cobra"
)

var (
	serveDatabase string
	serveAddr     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Browse stored runs over HTTP",
	Long: `Serve the runs stored by 'faultloc sweep' as a read-only JSON API.

EXAMPLES:
  faultloc serve --database runs.db --addr :8080
  curl 'localhost:8080/api/runs/?outcome=CONVERGED&limit=10'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveDatabase, "database", "", "sqlite database written by sweep (required)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	_ = serveCmd.MarkFlagRequired("database")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := interruptible("Shutting down...")
	defer cancel()

	store, err := sqlite.New(serveDatabase)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	server := web.NewServer(store, nil)
	srv := &http.Server{Addr: serveAddr, Handler: server.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()

	ui.PrintSuccess(fmt.Sprintf("Serving %s on http://%s", serveDatabase, serveAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
