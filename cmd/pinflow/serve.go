package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/pinflow/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr        string
		execTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the node catalog and graph execution over HTTP:

  GET  /healthz              liveness probe
  GET  /api/nodes            node type metadata
  GET  /api/nodes/{typeID}   metadata of one node type
  POST /api/validate         load a document without executing it
  POST /api/execute          load a document and execute its first graph`,
		Example: `  pinflow serve
  pinflow serve --addr 127.0.0.1:7860`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}
			reg, err := a.registry(cmd)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr: addr,
				Handler: server.New(reg,
					server.WithLogger(a.logger),
					server.WithSchemaValidation(a.cfg.SchemaValidation),
					server.WithExecTimeout(execTimeout),
				),
				ReadHeaderTimeout: 5 * time.Second,
			}
			return serve(cmd.Context(), srv, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from PINFLOW_ADDR or :8080)")
	cmd.Flags().DurationVar(&execTimeout, "exec-timeout", 30*time.Second, "Limit for a single graph execution")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, a *app) error {
	if ctx == nil {
		ctx = context.Background()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
