package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/spherex/doc-portal/mockdata"
	"github.com/spherex/doc-portal/portalapi"
)

// shutdownTimeout bounds the HTTP server drain on exit.
const shutdownTimeout = 10 * time.Second

func serveCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal API server",
		Long: `Serve runs the portal API server.

In mock-data mode the store is seeded from the dataset file, optionally
reloading when the file changes. Otherwise an initial refresh runs in
the background and further runs follow the configured cron schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath, *logLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app := NewApp(cfg, logger)
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer app.Shutdown()

			var refresh portalapi.RefreshFunc
			if cfg.UseMockData {
				if err := seedFromDataset(ctx, app); err != nil {
					return err
				}
				if cfg.Dataset.Watch {
					watcher, err := mockdata.NewWatcher(cfg.Dataset.Path, app.repo, logger)
					if err != nil {
						return fmt.Errorf("create dataset watcher: %w", err)
					}
					if err := watcher.Start(ctx); err != nil {
						return fmt.Errorf("start dataset watcher: %w", err)
					}
					defer watcher.Stop()
				}
			} else {
				refresh = app.ingest.Refresh

				scheduler := cron.New()
				if _, err := scheduler.AddFunc(cfg.Refresh.Schedule, func() {
					if err := app.ingest.Refresh(ctx); err != nil {
						logger.Error("scheduled refresh failed", "error", err)
					}
				}); err != nil {
					return fmt.Errorf("invalid refresh schedule %q: %w", cfg.Refresh.Schedule, err)
				}
				scheduler.Start()
				defer scheduler.Stop()

				// First population without waiting for the schedule.
				go func() {
					if err := app.ingest.Refresh(ctx); err != nil {
						logger.Error("initial refresh failed", "error", err)
					}
				}()
			}

			mux := http.NewServeMux()
			portalapi.NewHTTPHandler(app.repo, refresh, logger).RegisterHTTPHandlers("/api/", mux)
			mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

			server := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("portal API listening", "addr", cfg.HTTP.Addr, "mock_data", cfg.UseMockData)
				if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}

func refreshCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run one ingestion pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath, *logLevel)
			if err != nil {
				return err
			}
			if cfg.UseMockData {
				return fmt.Errorf("refresh requires use_mock_data: false")
			}
			if cfg.NATS.URL == "" {
				return fmt.Errorf("refresh requires a NATS URL; an in-memory store would be discarded on exit")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app := NewApp(cfg, logger)
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer app.Shutdown()

			return app.ingest.Refresh(ctx)
		},
	}
}

func seedCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the document store from the dataset file and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath, *logLevel)
			if err != nil {
				return err
			}
			if cfg.Dataset.Path == "" {
				return fmt.Errorf("dataset.path is not configured")
			}
			if cfg.NATS.URL == "" {
				return fmt.Errorf("seed requires a NATS URL; an in-memory store would be discarded on exit")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app := NewApp(cfg, logger)
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer app.Shutdown()

			if err := seedFromDataset(ctx, app); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Seeded document store from %s\n", cfg.Dataset.Path)
			return nil
		},
	}
}

func seedFromDataset(ctx context.Context, app *App) error {
	ds, err := mockdata.Load(app.cfg.Dataset.Path)
	if err != nil {
		return err
	}
	if err := ds.Bootstrap(ctx, app.repo); err != nil {
		return fmt.Errorf("seed document store: %w", err)
	}
	app.logger.Info("document store seeded", "dataset", app.cfg.Dataset.Path)
	return nil
}
