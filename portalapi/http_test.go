package portalapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherex/doc-portal/domain"
	"github.com/spherex/doc-portal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo := storage.NewMemoryRepository()
	for _, id := range []string{"ssdc-ms-002", "ssdc-ms-001"} {
		err := repo.ModuleSpecs.Upsert(context.Background(), domain.ModuleSpecDocument{
			Document: domain.Document{ProjectID: id, Title: "Title " + id},
		})
		require.NoError(t, err)
	}
	return repo
}

func newTestMux(repo *storage.Repository, refresh RefreshFunc) *http.ServeMux {
	mux := http.NewServeMux()
	NewHTTPHandler(repo, refresh, testLogger()).RegisterHTTPHandlers("/api/", mux)
	return mux
}

func TestListProjects(t *testing.T) {
	mux := newTestMux(seedRepo(t), nil)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/projects/ssdc-ms", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var docs []domain.ModuleSpecDocument
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "ssdc-ms-001", docs[0].ProjectID, "listing is key-ordered")
	assert.Equal(t, "ssdc-ms-002", docs[1].ProjectID)
}

func TestListProjectsEmptyCategory(t *testing.T) {
	mux := newTestMux(seedRepo(t), nil)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/projects/ssdc-op", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String(), "an empty category lists as [], not null")
}

func TestListProjectsUnknownCategory(t *testing.T) {
	mux := newTestMux(seedRepo(t), nil)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/projects/ssdc-zz", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.Equal(t, "unknown_category", errResp.Error)
}

func TestListProjectsMethodNotAllowed(t *testing.T) {
	mux := newTestMux(seedRepo(t), nil)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/projects/ssdc-ms", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRefreshAcceptedAndCoalesced(t *testing.T) {
	var runs atomic.Int64
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	refresh := func(ctx context.Context) error {
		defer wg.Done()
		runs.Add(1)
		<-release
		return nil
	}
	mux := newTestMux(storage.NewMemoryRepository(), refresh)

	first := httptest.NewRecorder()
	mux.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.Equal(t, http.StatusAccepted, first.Code)

	// The run is now blocked in flight; further triggers must coalesce.
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	second := httptest.NewRecorder()
	mux.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.Equal(t, http.StatusAccepted, second.Code)

	var resp RefreshResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, "A refresh is already running", resp.Message)

	close(release)
	wg.Wait()
	assert.Equal(t, int64(1), runs.Load())
}

func TestRefreshDisabled(t *testing.T) {
	mux := newTestMux(storage.NewMemoryRepository(), nil)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHealthz(t *testing.T) {
	mux := newTestMux(storage.NewMemoryRepository(), nil)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
