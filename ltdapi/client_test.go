package ltdapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves a minimal documentation-host API with a /token
// exchange and the two /v2/orgs endpoints, counting token exchanges.
func newTestServer(t *testing.T, tokenExchanges *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "portal" || pass != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		tokenExchanges.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})

	requireToken := func(w http.ResponseWriter, r *http.Request) bool {
		user, _, ok := r.BasicAuth()
		if !ok || user != "tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		return true
	}

	mux.HandleFunc("/v2/orgs/spherex", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(w, r) {
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"slug":       "spherex",
			"title":      "SPHEREx",
			"s3_bucket":  "spherex-docs-test",
			"aws_region": "us-west-1",
		})
	})

	mux.HandleFunc("/v2/orgs/spherex/projects", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(w, r) {
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"slug":            "ssdc-ms-001",
				"title":           "Photometry Module",
				"source_repo_url": "https://github.com/SPHEREx/ssdc-ms-001",
				"published_url":   "https://spherex-docs.ipac.caltech.edu/ssdc-ms-001",
				"default_edition": map[string]any{
					"slug":         "__main",
					"date_rebuilt": "2024-01-15T12:00:00Z",
				},
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientProjects(t *testing.T) {
	var exchanges atomic.Int64
	srv := newTestServer(t, &exchanges)
	client := NewClient(srv.URL, "portal", "hunter2")

	projects, err := client.Projects(context.Background(), "spherex")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "ssdc-ms-001", projects[0].Slug)
	assert.Equal(t, "https://github.com/SPHEREx/ssdc-ms-001", projects[0].SourceRepoURL)
	assert.Equal(t,
		time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		projects[0].DefaultEdition.DateRebuilt)
}

func TestClientOrganization(t *testing.T) {
	var exchanges atomic.Int64
	srv := newTestServer(t, &exchanges)
	client := NewClient(srv.URL, "portal", "hunter2")

	org, err := client.Organization(context.Background(), "spherex")
	require.NoError(t, err)
	assert.Equal(t, "spherex", org.Slug)
	assert.Equal(t, "spherex-docs-test", org.BucketName())
}

func TestOrganizationBucketFallback(t *testing.T) {
	org := OrganizationModel{Slug: "spherex"}
	assert.Equal(t, DefaultBucket, org.BucketName())
}

func TestTokenReuse(t *testing.T) {
	var exchanges atomic.Int64
	srv := newTestServer(t, &exchanges)
	client := NewClient(srv.URL, "portal", "hunter2")
	ctx := context.Background()

	_, err := client.Projects(ctx, "spherex")
	require.NoError(t, err)
	_, err = client.Organization(ctx, "spherex")
	require.NoError(t, err)
	_, err = client.Projects(ctx, "spherex")
	require.NoError(t, err)

	assert.Equal(t, int64(1), exchanges.Load(), "token should be exchanged once within its TTL")
}

func TestAuthError(t *testing.T) {
	var exchanges atomic.Int64
	srv := newTestServer(t, &exchanges)
	client := NewClient(srv.URL, "portal", "wrong")

	_, err := client.Projects(context.Background(), "spherex")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "portal", authErr.Username)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "portal", "hunter2")
	_, err := client.Projects(context.Background(), "spherex")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestTokenCacheSingleFlight(t *testing.T) {
	cache := newTokenCache(time.Minute)

	var fetches atomic.Int64
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		fetches.Add(1)
		<-release
		return "tok", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := cache.get(context.Background(), "key", fetch)
			assert.NoError(t, err)
			assert.Equal(t, "tok", token)
		}()
	}

	// Let the goroutines pile onto the single in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), fetches.Load(), "concurrent refreshes should collapse to one fetch")
}

func TestTokenCacheExpiry(t *testing.T) {
	cache := newTokenCache(time.Minute)
	now := time.Unix(1_700_000_000, 0)
	cache.now = func() time.Time { return now }

	count := 0
	fetch := func(ctx context.Context) (string, error) {
		count++
		return "tok", nil
	}

	_, err := cache.get(context.Background(), "key", fetch)
	require.NoError(t, err)
	_, err = cache.get(context.Background(), "key", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	now = now.Add(2 * time.Minute)
	_, err = cache.get(context.Background(), "key", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "expired token should trigger one re-fetch")
}

func TestTokenCacheFetchError(t *testing.T) {
	cache := newTokenCache(time.Minute)
	fetchErr := errors.New("boom")
	_, err := cache.get(context.Background(), "key", func(ctx context.Context) (string, error) {
		return "", fetchErr
	})
	assert.ErrorIs(t, err, fetchErr)
}
