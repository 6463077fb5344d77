package ltdapi

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// defaultTokenTTL bounds how long an exchanged token is reused before a
// fresh authentication. The API's tokens are valid well beyond this window.
const defaultTokenTTL = 600 * time.Second

// tokenCache caches auth tokens per credential pair with a time-bound
// expiry. Concurrent callers share a cached token; on expiry the refresh is
// collapsed to one in-flight exchange per credential pair.
type tokenCache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]tokenEntry
}

type tokenEntry struct {
	token   string
	expires time.Time
}

func newTokenCache(ttl time.Duration) *tokenCache {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &tokenCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]tokenEntry),
	}
}

// get returns the cached token for the credential key, fetching a new one
// when absent or expired.
func (c *tokenCache) get(ctx context.Context, key string, fetch func(context.Context) (string, error)) (string, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expires) {
		return entry.token, nil
	}

	token, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have refreshed while we waited on the group.
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && c.now().Before(entry.expires) {
			return entry.token, nil
		}

		fetched, err := fetch(ctx)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.entries[key] = tokenEntry{token: fetched, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}
