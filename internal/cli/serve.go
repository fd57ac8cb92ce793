package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/consult/pkg/adapters/http"
	"github.com/aretw0/consult/pkg/adapters/mcp"
)

const shutdownTimeout = 5 * time.Second

// RunServe serves the HTTP API until ctx is cancelled or a signal arrives.
// With watch set, a content directory is reloaded whenever it changes.
func RunServe(ctx context.Context, app *App, port int, watch bool, out io.Writer) error {
	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(app.Logger),
		httpAdapter.WithMaxInputSize(app.Config.MaxInputSize),
	}
	if app.Registry != nil {
		opts = append(opts, httpAdapter.WithMetrics(app.Registry))
	}
	if watch {
		// One watcher reloads the content; the server fans its signals out to /events.
		reloads, err := app.Engine.Watch(sigCtx)
		if err != nil {
			return err
		}
		opts = append(opts, httpAdapter.WithReloads(reloads))
	}
	handler := httpAdapter.NewHandler(app.Engine, app.Engine.Sessions(), opts...)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Fprintf(out, "Starting consult server on %s\n", srv.Addr)
		fmt.Fprintf(out, "Serving content from: %s\n", app.Engine.Name)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-sigCtx.Done():
		fmt.Fprintf(out, "\nStart shutdown... Signal: %v\n", sigCtx.Signal())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		fmt.Fprintln(out, "consult server stopped gracefully")
		return nil
	}
}

// RunMCP serves the MCP tools over stdio or SSE.
func RunMCP(ctx context.Context, app *App, transport string, port int) error {
	srv := mcp.NewServer(app.Engine, app.Engine.Sessions(), app.Logger)

	switch transport {
	case "stdio":
		app.Logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		sigCtx := NewSignalContext(ctx)
		defer sigCtx.Cancel()

		app.Logger.Info("starting MCP server (SSE)", "port", port)
		if err := srv.ServeSSE(sigCtx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		app.Logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
