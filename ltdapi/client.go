// Package ltdapi is a read-only client for the documentation-hosting (LTD)
// API. It exchanges a username/password for a bearer token on demand and
// caches the token for its validity window.
package ltdapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spherex/doc-portal/domain"
)

// DefaultBucket is the object-store bucket used when the organization
// record doesn't declare one.
const DefaultBucket = "spherex-docs"

// ProjectModel describes one documentation project listed by the API.
type ProjectModel struct {
	Slug           string       `json:"slug"`
	Title          string       `json:"title"`
	SourceRepoURL  string       `json:"source_repo_url"`
	PublishedURL   string       `json:"published_url"`
	DefaultEdition EditionModel `json:"default_edition"`
}

// EditionModel describes a project's default edition.
type EditionModel struct {
	Slug        string    `json:"slug"`
	DateRebuilt time.Time `json:"date_rebuilt"`
}

// OrganizationModel describes the documentation organization.
type OrganizationModel struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	S3Bucket  string `json:"s3_bucket"`
	AWSRegion string `json:"aws_region"`
}

// BucketName returns the organization's declared object-store bucket, or
// the fixed fallback when the record carries none.
func (o OrganizationModel) BucketName() string {
	if o.S3Bucket == "" {
		return DefaultBucket
	}
	return o.S3Bucket
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenTTL overrides the auth-token cache lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Client) { c.tokens = newTokenCache(ttl) }
}

// Client accesses the documentation-host API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	tokens     *tokenCache
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     newTokenCache(defaultTokenTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Organization fetches the organization record.
func (c *Client) Organization(ctx context.Context, org string) (*OrganizationModel, error) {
	var model OrganizationModel
	if err := c.getJSON(ctx, "/v2/orgs/"+url.PathEscape(org), &model); err != nil {
		return nil, fmt.Errorf("get organization %s: %w", org, err)
	}
	return &model, nil
}

// Projects fetches all of the organization's documentation projects.
func (c *Client) Projects(ctx context.Context, org string) ([]ProjectModel, error) {
	var projects []ProjectModel
	if err := c.getJSON(ctx, "/v2/orgs/"+url.PathEscape(org)+"/projects", &projects); err != nil {
		return nil, fmt.Errorf("list projects for %s: %w", org, err)
	}
	for i := range projects {
		projects[i].DefaultEdition.DateRebuilt = domain.UTC(projects[i].DefaultEdition.DateRebuilt)
	}
	return projects, nil
}

// getJSON issues an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	// The API accepts the exchanged token as the basic-auth username.
	req.SetBasicAuth(token, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// token returns a cached auth token, exchanging credentials when the cache
// is cold or expired.
func (c *Client) token(ctx context.Context) (string, error) {
	key := c.username + "\x00" + c.password
	return c.tokens.get(ctx, key, c.exchangeToken)
}

func (c *Client) exchangeToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/token", nil)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &AuthError{Username: c.username}
	case resp.StatusCode != http.StatusOK:
		return "", &APIError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("token response missing token field")
	}
	return body.Token, nil
}
