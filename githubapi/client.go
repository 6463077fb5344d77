// Package githubapi is a minimal client for the repository-hosting API:
// repository details, open issue and pull-request counts, and the latest
// release. Access is per-repository via installation tokens, so a
// repository without a configured token is a normal condition rather
// than an error.
package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// ErrNoInstallation reports that no installation token is configured for
// the requested repository. Callers degrade to defaults instead of
// failing the run.
var ErrNoInstallation = errors.New("no installation token for repository")

// APIError is a non-success response from the repository-hosting API.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api request to %s failed with status %d", e.URL, e.StatusCode)
}

// ParseRepoURL extracts the owner and repository name from a repository
// web URL such as https://github.com/SPHEREx/ssdc-ms-001.
func ParseRepoURL(rawURL string) (owner, repo string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing repository URL %q: %w", rawURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository URL %q has no owner/name path", rawURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// RepositoryModel is the subset of the repository resource the portal
// reads.
type RepositoryModel struct {
	Name     string    `json:"name"`
	HTMLURL  string    `json:"html_url"`
	PushedAt time.Time `json:"pushed_at"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// ReleaseModel is the subset of a release resource the portal reads.
// PublishedAt is the publish time, not the creation time; a draft can
// be created well before it is published.
type ReleaseModel struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
}

// IssueCounts are open issue and pull-request totals for one repository.
type IssueCounts struct {
	OpenIssues int
	OpenPRs    int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternate API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client talks to the repository-hosting API using per-repository
// installation tokens keyed by "owner/name".
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     map[string]string
}

// NewClient creates a client. The tokens map is keyed by "owner/name";
// a nil map means no repository has an installation.
func NewClient(tokens map[string]string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasInstallation reports whether an installation token is configured
// for the repository.
func (c *Client) HasInstallation(owner, repo string) bool {
	_, ok := c.tokens[owner+"/"+repo]
	return ok
}

// Repository fetches repository details.
func (c *Client) Repository(ctx context.Context, owner, repo string) (*RepositoryModel, error) {
	var out RepositoryModel
	u := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
	if _, err := c.getJSON(ctx, u, owner, repo, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LatestRelease fetches the most recent release, or nil when the
// repository has never published one.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*ReleaseModel, error) {
	var out ReleaseModel
	u := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
	status, err := c.getJSON(ctx, u, owner, repo, &out)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// issueItem carries just enough of an issue resource to tell pull
// requests apart from plain issues.
type issueItem struct {
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

// OpenIssueCounts walks the open-issue listing and splits it into plain
// issues and pull requests. The listing endpoint returns both; items
// carrying a pull_request key are pull requests.
func (c *Client) OpenIssueCounts(ctx context.Context, owner, repo string) (IssueCounts, error) {
	var counts IssueCounts
	next := fmt.Sprintf("%s/repos/%s/%s/issues?state=open&per_page=100", c.baseURL, owner, repo)
	for next != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return IssueCounts{}, fmt.Errorf("creating issue listing request: %w", err)
		}
		if err := c.authorize(req, owner, repo); err != nil {
			return IssueCounts{}, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return IssueCounts{}, fmt.Errorf("listing open issues for %s/%s: %w", owner, repo, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return IssueCounts{}, &APIError{StatusCode: resp.StatusCode, URL: next}
		}

		var items []issueItem
		err = json.NewDecoder(resp.Body).Decode(&items)
		resp.Body.Close()
		if err != nil {
			return IssueCounts{}, fmt.Errorf("decoding issue listing for %s/%s: %w", owner, repo, err)
		}

		for _, item := range items {
			if item.PullRequest != nil {
				counts.OpenPRs++
			} else {
				counts.OpenIssues++
			}
		}
		next = nextPageURL(resp.Header.Get("Link"))
	}
	return counts, nil
}

// nextPageURL extracts the rel="next" target from a Link header, or ""
// when the listing has no further page.
func nextPageURL(linkHeader string) string {
	for _, link := range strings.Split(linkHeader, ",") {
		segments := strings.Split(strings.TrimSpace(link), ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		for _, param := range segments[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}

func (c *Client) authorize(req *http.Request, owner, repo string) error {
	token, ok := c.tokens[owner+"/"+repo]
	if !ok {
		return fmt.Errorf("%s/%s: %w", owner, repo, ErrNoInstallation)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	return nil
}

// getJSON performs an authorized GET and decodes the response body. The
// response status is returned alongside any error so callers can treat
// specific statuses (404 on releases) as data rather than failure.
func (c *Client) getJSON(ctx context.Context, u, owner, repo string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request for %s: %w", u, err)
	}
	if err := c.authorize(req, owner, repo); err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("requesting %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, URL: u}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response from %s: %w", u, err)
	}
	return resp.StatusCode, nil
}
