// Package portalapi serves the portal's read API: per-category document
// listings, an on-demand refresh trigger and a health probe.
package portalapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spherex/doc-portal/domain"
	"github.com/spherex/doc-portal/storage"
)

// refreshTimeout bounds a triggered refresh run.
const refreshTimeout = 10 * time.Minute

// RefreshFunc runs one ingestion pass. nil disables the refresh
// endpoint (mock-data mode).
type RefreshFunc func(ctx context.Context) error

// HTTPHandler handles HTTP requests for the document portal.
type HTTPHandler struct {
	repo    *storage.Repository
	refresh RefreshFunc
	logger  *slog.Logger

	refreshInFlight atomic.Bool
}

// NewHTTPHandler creates a new portal HTTP handler.
func NewHTTPHandler(repo *storage.Repository, refresh RefreshFunc, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		repo:    repo,
		refresh: refresh,
		logger:  logger,
	}
}

// RegisterHTTPHandlers registers the portal handlers.
// The prefix should include the trailing slash (e.g., "/api/").
func (h *HTTPHandler) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	mux.HandleFunc(prefix+"projects/", h.handleProjects)
	mux.HandleFunc(prefix+"refresh", h.handleRefresh)
	mux.HandleFunc(prefix+"healthz", h.handleHealthz)
}

// RefreshResponse is the JSON response for POST refresh.
type RefreshResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleProjects handles GET {prefix}projects/{category} - list one
// category's documents.
func (h *HTTPHandler) handleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := strings.Trim(r.URL.Path[strings.LastIndex(r.URL.Path, "projects/")+len("projects/"):], "/")
	category, ok := domain.ParseCategory(slug)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown_category", "Unknown document category: "+slug)
		return
	}

	docs, err := h.repo.Documents(r.Context(), category)
	if err != nil {
		h.logger.Error("listing documents failed", "category", category, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "storage_error", "Failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleRefresh handles POST {prefix}refresh - trigger an ingestion run.
// The run happens in the background; concurrent triggers coalesce onto
// the run already in flight.
func (h *HTTPHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.refresh == nil {
		writeJSONError(w, http.StatusConflict, "refresh_disabled", "Refresh is not available in mock-data mode")
		return
	}

	if !h.refreshInFlight.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusAccepted, RefreshResponse{
			Status:  "accepted",
			Message: "A refresh is already running",
		})
		return
	}

	go func() {
		defer h.refreshInFlight.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := h.refresh(ctx); err != nil {
			h.logger.Error("triggered refresh failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, RefreshResponse{Status: "accepted"})
}

// handleHealthz handles GET {prefix}healthz.
func (h *HTTPHandler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
