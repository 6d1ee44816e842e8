// Package cache provides the memoization layer for deterministic external
// lookups (search queries, extraction results) invoked from tool handlers.
//
// A Cache is injected per run or per session rather than held as a process
// global, so unrelated runs never observe each other's entries and tests get
// isolation for free. Within its scope the cache keeps the source semantics:
// a stored key always returns the stored value, with no TTL and no
// invalidation — callers must tolerate a previously computed payload even if
// the underlying external data has since changed.
package cache

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/agentloop/agentloop/logging"
)

// Options configure a Cache.
type Options struct {
	Logger logging.Logger
}

// Cache memoizes computed values by normalized key with get-or-compute
// semantics. Concurrent misses for the same key — common when the oracle
// fans out several similar lookups in one turn — collapse into a single
// computation via singleflight.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group
	logger  logging.Logger
}

// New returns an empty cache.
func New(optFns ...func(o *Options)) *Cache {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Cache{entries: make(map[string]any), logger: opts.Logger}
}

// Key builds a normalized cache key from its components: lower-cased,
// whitespace-trimmed, joined with '|'. Typical usage is query text plus
// result-count / mode flags, so "Berlin" and "berlin " memoize together.
func Key(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(normalized, "|")
}

// GetOrCompute returns the stored value for key, computing and storing it on
// a miss. The computation for a given key runs at most once even under
// concurrent misses; computation errors are returned and not cached, so a
// later call retries.
func (c *Cache) GetOrCompute(key string, compute func() (any, error)) (any, error) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.logger.Debug("cache.hit", "key", key)
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check: another flight may have stored between RUnlock and Do.
		c.mu.RLock()
		v, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		c.logger.Debug("cache.miss", "key", key)
		computed, err := compute()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = computed
		c.mu.Unlock()
		return computed, nil
	})
	return v, err
}

// Get returns the stored value without computing.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
