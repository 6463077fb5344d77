// Package ingest refreshes the category store from the three upstream
// sources: the documentation host's project listing, the per-project
// metadata objects in the documentation bucket, and the repository host.
// A refresh run is idempotent; re-running it converges the store to the
// upstream state because every document is written under its project key.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spherex/doc-portal/domain"
	"github.com/spherex/doc-portal/githubapi"
	"github.com/spherex/doc-portal/ltdapi"
	"github.com/spherex/doc-portal/s3meta"
	"github.com/spherex/doc-portal/storage"
)

// DocHost lists an organization and its published projects.
type DocHost interface {
	Organization(ctx context.Context, org string) (*ltdapi.OrganizationModel, error)
	Projects(ctx context.Context, org string) ([]ltdapi.ProjectModel, error)
}

// MetadataSource fetches one project's published metadata object.
type MetadataSource interface {
	ProjectMetadata(ctx context.Context, slug string) (*s3meta.Metadata, error)
}

// RepoHost answers repository-level questions for documents whose source
// repositories have a configured installation.
type RepoHost interface {
	HasInstallation(owner, repo string) bool
	Repository(ctx context.Context, owner, repo string) (*githubapi.RepositoryModel, error)
	OpenIssueCounts(ctx context.Context, owner, repo string) (githubapi.IssueCounts, error)
	LatestRelease(ctx context.Context, owner, repo string) (*githubapi.ReleaseModel, error)
}

// Config carries the refresh run's upstream coordinates.
type Config struct {
	// Organization is the documentation-host organization slug to ingest.
	Organization string

	// S3Region and the AWS key pair sign metadata-object reads. The
	// bucket itself comes from the organization record at run time.
	S3Region           string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// S3Endpoint overrides the object-store endpoint (test doubles,
	// MinIO). Empty means the AWS default.
	S3Endpoint string
}

// Service orchestrates refresh runs.
type Service struct {
	repo    *storage.Repository
	docs    DocHost
	github  RepoHost
	logger  *slog.Logger
	metrics *Metrics
	cfg     Config

	// newMetadataSource builds the metadata reader for the organization's
	// bucket. Overridable in tests.
	newMetadataSource func(bucket string) MetadataSource
}

// NewService wires a refresh service. github may be nil, in which case
// every document degrades to default source-host metadata.
func NewService(repo *storage.Repository, docs DocHost, github RepoHost, logger *slog.Logger, metrics *Metrics, cfg Config) *Service {
	s := &Service{
		repo:    repo,
		docs:    docs,
		github:  github,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
	s.newMetadataSource = func(bucket string) MetadataSource {
		var opts []s3meta.Option
		if cfg.S3Endpoint != "" {
			opts = append(opts, s3meta.WithEndpoint(cfg.S3Endpoint))
		}
		return s3meta.NewClient(bucket, cfg.S3Region, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, opts...)
	}
	return s
}

// Refresh performs one full ingestion run. Projects whose metadata
// cannot be read are logged and skipped; any other failure aborts the
// run. Each run carries a unique key in its log lines.
func (s *Service) Refresh(ctx context.Context) error {
	start := time.Now()
	logger := s.logger.With("run_key", uuid.NewString())

	err := s.refresh(ctx, logger)

	s.metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.RunsTotal.WithLabelValues("failure").Inc()
		logger.Error("refresh run failed", "error", err, "duration", time.Since(start))
		return err
	}
	s.metrics.RunsTotal.WithLabelValues("success").Inc()
	logger.Info("refresh run complete", "duration", time.Since(start))
	return nil
}

func (s *Service) refresh(ctx context.Context, logger *slog.Logger) error {
	org, err := s.docs.Organization(ctx, s.cfg.Organization)
	if err != nil {
		return fmt.Errorf("fetching organization %q: %w", s.cfg.Organization, err)
	}
	source := s.newMetadataSource(org.BucketName())

	projects, err := s.docs.Projects(ctx, s.cfg.Organization)
	if err != nil {
		return fmt.Errorf("listing projects for %q: %w", s.cfg.Organization, err)
	}
	logger.Info("refreshing documents", "organization", org.Slug, "projects", len(projects))

	var ingested, skipped int
	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			return err
		}

		category, ok := domain.CategoryForSlug(p.Slug)
		if !ok {
			logger.Debug("slug matches no document category, skipping", "project", p.Slug)
			continue
		}

		if err := s.ingestProject(ctx, org, p, category, source); err != nil {
			var metaErr *s3meta.MetadataError
			if errors.As(err, &metaErr) {
				logger.Warn("project metadata unavailable, skipping",
					"project", p.Slug, "reason", metaErr.Reason, "error", metaErr.Err)
				s.metrics.ProjectFailures.Inc()
				skipped++
				continue
			}
			return fmt.Errorf("ingesting project %q: %w", p.Slug, err)
		}
		ingested++
	}

	logger.Info("ingestion pass done", "ingested", ingested, "skipped", skipped)
	return nil
}

// ingestProject fetches one project's metadata, resolves its source-host
// slice and upserts the normalized document into its category's store.
func (s *Service) ingestProject(ctx context.Context, org *ltdapi.OrganizationModel, p ltdapi.ProjectModel, category domain.Category, source MetadataSource) error {
	meta, err := source.ProjectMetadata(ctx, p.Slug)
	if err != nil {
		return err
	}

	gh, err := s.gitHubMetadata(ctx, repositoryURL(p, meta), p.DefaultEdition.DateRebuilt)
	if err != nil {
		return err
	}

	doc := newDocument(org, p, meta, gh)
	switch category {
	case domain.CategoryModuleSpec:
		err = s.repo.ModuleSpecs.Upsert(ctx, newModuleSpec(doc, meta))
	case domain.CategoryProjectManagement:
		err = s.repo.ProjectManagement.Upsert(ctx, newProjectManagement(doc, meta))
	case domain.CategoryInterface:
		err = s.repo.Interfaces.Upsert(ctx, newInterface(doc, meta))
	case domain.CategoryDataProduct:
		err = s.repo.DataProducts.Upsert(ctx, newDataProduct(doc, meta))
	case domain.CategoryTestReport:
		err = s.repo.TestReports.Upsert(ctx, newTestReport(doc, meta))
	case domain.CategoryTechnicalNote:
		err = s.repo.TechnicalNotes.Upsert(ctx, newTechnicalNote(doc))
	case domain.CategoryOperationsNote:
		err = s.repo.OperationsNotes.Upsert(ctx, newOperationsNote(doc))
	default:
		return fmt.Errorf("unhandled category %q", category)
	}
	if err != nil {
		return err
	}

	s.metrics.DocumentsIngested.WithLabelValues(string(category)).Inc()
	return nil
}
