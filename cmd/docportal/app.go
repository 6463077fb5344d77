package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spherex/doc-portal/config"
	"github.com/spherex/doc-portal/githubapi"
	"github.com/spherex/doc-portal/ingest"
	"github.com/spherex/doc-portal/ltdapi"
	"github.com/spherex/doc-portal/storage"
)

// App wires the portal's components together.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	natsConn *nats.Conn
	repo     *storage.Repository
	ingest   *ingest.Service
	registry *prometheus.Registry
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
}

// Start initializes the document store and, outside mock-data mode, the
// ingestion service.
func (a *App) Start(ctx context.Context) error {
	if err := a.startStorage(ctx); err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	if !a.cfg.UseMockData {
		ltd := ltdapi.NewClient(a.cfg.LTD.URL, a.cfg.LTD.Username, a.cfg.LTD.Password)

		var github ingest.RepoHost
		if tokens := a.cfg.GitHubTokens(); tokens != nil {
			github = githubapi.NewClient(tokens, githubapi.WithBaseURL(a.cfg.GitHub.BaseURL))
		}

		a.ingest = ingest.NewService(a.repo, ltd, github, a.logger,
			ingest.NewMetrics(a.registry), ingest.Config{
				Organization:       a.cfg.LTD.Organization,
				S3Region:           a.cfg.S3.Region,
				AWSAccessKeyID:     a.cfg.S3.AccessKeyID,
				AWSSecretAccessKey: a.cfg.S3.SecretAccessKey,
				S3Endpoint:         a.cfg.S3.Endpoint,
			})
	}

	return nil
}

func (a *App) startStorage(ctx context.Context) error {
	if a.cfg.NATS.URL == "" {
		a.logger.Info("no NATS URL configured, using in-memory document store")
		a.repo = storage.NewMemoryRepository()
		return nil
	}

	a.logger.Info("connecting to NATS", "url", a.cfg.NATS.URL)
	conn, err := nats.Connect(a.cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	a.natsConn = conn

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	repo, err := storage.NewRepository(ctx, js)
	if err != nil {
		return err
	}
	a.repo = repo
	return nil
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() {
	if a.natsConn != nil {
		a.natsConn.Drain()
		a.natsConn.Close()
	}
}
