package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/gitswitch/internal/application"
	httphandler "github.com/ericfisherdev/gitswitch/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/gitswitch/internal/adapter/driving/web"
)

var serveCmd = &cobra.Command{
	Use:     "serve [roots...]",
	GroupID: GroupWorkspace,
	Short:   "Run the settings server",
	Long: `Serve the settings page and the JSON API on listen_addr (default
127.0.0.1:7317). The workspace roots are scanned once at startup; pending
mismatches can be listed and resolved through the API.

Endpoints:
  GET  /                            settings page
  POST /api/v1/messages             identity load/add/update/delete messages
  GET  /api/v1/repos                repositories under the roots
  GET  /api/v1/decisions            pending mismatches
  POST /api/v1/decisions/resolve    resolve a mismatch
  GET  /api/v1/health               health check`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides listen_addr)")
}

// newServeHandler builds the combined API and settings page handler.
func newServeHandler(logger *slog.Logger) http.Handler {
	api := httphandler.NewHandler(app.Identities, app.Engine, app.Session, app.Status, logger)
	web := webhandler.NewHandler(app.Identities, app.Bindings, app.Engine, app.Session, app.Status, logger)

	return httphandler.NewServeMux(api, logger, func(mux *http.ServeMux) {
		webhandler.RegisterRoutes(mux, web)
	})
}

// announceDecisions logs the pending queue whenever the engine publishes a
// mismatch, so an operator watching the server log knows to open the page.
func announceDecisions(ctx context.Context, q *application.DecisionQueue, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.Notify():
			pending := q.Pending()
			repos := make([]string, 0, len(pending))
			for _, d := range pending {
				repos = append(repos, d.RepoPath)
			}
			logger.Warn("identity mismatch awaiting decision", "pending", len(pending), "repos", repos)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	addr := app.Config.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	if len(args) > 0 {
		if _, err := resolveRoots(args); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServeHandler(slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	go announceDecisions(ctx, app.Engine.Decisions(), slog.Default())

	go func() {
		results := app.Session.ScanAll(ctx)
		slog.Info("initial scan complete", "repositories", len(results), "pending_decisions", app.Engine.Decisions().Len())
	}()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	success(out(cmd), "Settings server listening on http://%s", ln.Addr().String())

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
