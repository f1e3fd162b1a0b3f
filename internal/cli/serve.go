package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/soundmetrics/internal/adapters/rest"
	"github.com/ewilliams-labs/soundmetrics/internal/core/services"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
				a.cfg.HTTP.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides http.addr)")
	return cmd
}

// serve runs the API until ctx is cancelled, then shuts down gracefully.
func (a *app) serve(ctx context.Context) error {
	svc, closeFn, err := a.open(false)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           rest.NewHandler(svc, a.logger),
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	a.logger.Info("soundmetrics api listening", "addr", a.cfg.HTTP.Addr, "credentials", a.cfg.Spotify.HasCredentials())

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	return nil
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check database and catalog connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, false, func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error) {
				h := svc.Health(ctx)
				return h, func(w io.Writer) error { return renderHealth(w, h) }, nil
			})
		},
	}
}
