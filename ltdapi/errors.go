package ltdapi

import "fmt"

// AuthError indicates the documentation-host API rejected the configured
// credentials. Distinct from APIError so callers can tell bad credentials
// from an unavailable service.
type AuthError struct {
	Username string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for user %q", e.Username)
}

// APIError indicates a non-2xx response from the documentation-host API.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}
