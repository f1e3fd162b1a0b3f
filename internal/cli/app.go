package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/soundmetrics/internal/adapters/spotify"
	"github.com/ewilliams-labs/soundmetrics/internal/adapters/sqlite"
	"github.com/ewilliams-labs/soundmetrics/internal/config"
	"github.com/ewilliams-labs/soundmetrics/internal/core/ports"
	"github.com/ewilliams-labs/soundmetrics/internal/core/services"
	"github.com/ewilliams-labs/soundmetrics/internal/worker"
)

// newSpotifyCatalog builds an authenticated Spotify client.
func newSpotifyCatalog(cfg config.Config, logger *slog.Logger) (ports.CatalogProvider, error) {
	// Token refreshes outlive any single command context.
	hc, err := spotify.NewCredentialsHTTPClient(context.Background(), spotify.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		TokenURL:     cfg.Spotify.TokenURL,
		Timeout:      cfg.Spotify.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return spotify.NewClient(hc, cfg.Spotify.APIURL,
		spotify.WithMarket(cfg.Spotify.Market),
		spotify.WithRetry(cfg.Spotify.MaxRetries, cfg.Spotify.RetryBackoff),
		spotify.WithRateLimit(cfg.Spotify.RequestsPerSecond),
		spotify.WithLogger(logger),
	), nil
}

// open wires the store, snapshot pool, catalog and orchestrator. The
// returned func stops the pool, draining queued snapshots, then closes the
// store. Without credentials, commands that only read history still work.
func (a *app) open(needCatalog bool) (*services.Orchestrator, func(), error) {
	catalog, err := a.newCatalog(a.cfg, a.logger)
	if err != nil {
		if needCatalog || !errors.Is(err, spotify.ErrMissingCredentials) {
			return nil, nil, fmt.Errorf("catalog: %w", err)
		}
		catalog = spotify.NewClient(nil, a.cfg.Spotify.APIURL, spotify.WithLogger(a.logger))
	}

	store, err := sqlite.NewAdapter(a.cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	pool := worker.NewPool(store, a.cfg.SnapshotQueue, a.logger)
	pool.Start()

	opts := []services.Option{
		services.WithLogger(a.logger),
		services.WithCredentials(a.cfg.Spotify.HasCredentials()),
	}
	opts = append(opts, a.serviceOpts...)
	svc := services.NewOrchestrator(catalog, store, pool, a.cfg.Settings(), opts...)

	closeFn := func() {
		pool.Stop()
		if err := store.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
	return svc, closeFn, nil
}

// renderFunc prints a result as tables.
type renderFunc func(w io.Writer) error

// action runs against a wired orchestrator and returns the payload plus a
// table renderer for it.
type action func(ctx context.Context, svc *services.Orchestrator) (any, renderFunc, error)

func (a *app) run(cmd *cobra.Command, needCatalog bool, fn action) error {
	svc, closeFn, err := a.open(needCatalog)
	if err != nil {
		return a.fail(err)
	}
	defer closeFn()

	data, render, err := fn(cmd.Context(), svc)
	if err != nil {
		return a.fail(err)
	}
	if a.jsonOut {
		return writeEnvelope(a.out, data)
	}
	return render(a.out)
}

func (a *app) fail(err error) error {
	if a.jsonOut {
		_ = writeErrorEnvelope(a.out, err)
	}
	return err
}
