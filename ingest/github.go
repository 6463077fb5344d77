package ingest

import (
	"context"
	"time"

	"github.com/spherex/doc-portal/domain"
	"github.com/spherex/doc-portal/githubapi"
)

// gitHubMetadata is the source-host slice of a document: issue counts,
// latest release and last commit time.
type gitHubMetadata struct {
	Issues     domain.IssueCount
	Release    *domain.Release
	CommitDate time.Time
}

// defaultGitHubMetadata is the degraded form used when a repository is
// unreachable: zero counts with derived URLs, no release, and the last
// documentation rebuild standing in for the last commit.
func defaultGitHubMetadata(repoURL string, fallback time.Time) gitHubMetadata {
	return gitHubMetadata{
		Issues:     domain.DefaultIssueCount(repoURL),
		CommitDate: domain.UTC(fallback),
	}
}

// gitHubMetadata resolves the source-host slice for one repository.
// Repositories without a configured installation, or with an URL the
// host cannot address, degrade to defaults. Errors from a reachable
// repository propagate and fail the run.
func (s *Service) gitHubMetadata(ctx context.Context, repoURL string, fallback time.Time) (gitHubMetadata, error) {
	defaults := defaultGitHubMetadata(repoURL, fallback)
	if s.github == nil {
		return defaults, nil
	}

	owner, repo, err := githubapi.ParseRepoURL(repoURL)
	if err != nil {
		s.logger.Debug("repository URL not addressable, using defaults",
			"repo_url", repoURL, "error", err)
		return defaults, nil
	}
	if !s.github.HasInstallation(owner, repo) {
		return defaults, nil
	}

	details, err := s.github.Repository(ctx, owner, repo)
	if err != nil {
		return gitHubMetadata{}, err
	}
	counts, err := s.github.OpenIssueCounts(ctx, owner, repo)
	if err != nil {
		return gitHubMetadata{}, err
	}
	release, err := s.github.LatestRelease(ctx, owner, repo)
	if err != nil {
		return gitHubMetadata{}, err
	}

	gh := gitHubMetadata{
		Issues: domain.IssueCount{
			OpenIssueCount: counts.OpenIssues,
			OpenPRCount:    counts.OpenPRs,
			IssueURL:       defaults.Issues.IssueURL,
			PRURL:          defaults.Issues.PRURL,
		},
		CommitDate: domain.UTC(details.PushedAt),
	}
	if release != nil {
		rel := domain.NewRelease(release.TagName, release.PublishedAt)
		gh.Release = &rel
	}
	return gh, nil
}
