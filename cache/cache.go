// Package cache provides a short-TTL in-memory store of successful
// acquisition results, keyed by the canonical form of a target URL.
//
// The cache is strictly a performance optimization: a failed write is
// logged and ignored, and acquisition never depends on its contents.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/bencium/agi-detector/models"
	"github.com/bencium/agi-detector/urlutil"
)

// entry holds a cached result with its creation timestamp.
type entry struct {
	result    *models.AcquisitionResult
	createdAt time.Time
}

// Cache is an in-memory TTL cache for acquisition results.
// It is safe for concurrent use. Expired entries are evicted lazily on the
// read that observes them; there is no background sweep.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	ttl        time.Duration
	maxEntries int
}

// New creates a Cache with the given entry TTL and capacity.
func New(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		store:      make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Key derives the cache key from the canonicalized target URL, so targets
// that differ only in query-parameter order, trailing slash, or fragment
// collide intentionally. Returns "" when the URL cannot be canonicalized.
func Key(targetURL string) string {
	canonical, err := urlutil.Canonicalize(targetURL)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for the target, or nil on a miss. An entry
// older than the TTL is treated as a miss and evicted on this same read.
func (c *Cache) Get(targetURL string) *models.AcquisitionResult {
	key := Key(targetURL)
	if key == "" {
		return nil
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil
	}

	if time.Since(e.createdAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock: another reader may have already
		// evicted and a writer repopulated.
		if cur, ok := c.store[key]; ok && cur == e {
			delete(c.store, key)
		}
		c.mu.Unlock()
		return nil
	}

	return e.result
}

// Set stores a result. Writes are fire-and-forget: an unusable key is
// logged and otherwise ignored. At capacity a random entry is evicted to
// make room (map iteration order is random in Go).
func (c *Cache) Set(targetURL string, result *models.AcquisitionResult) {
	key := Key(targetURL)
	if key == "" {
		slog.Warn("cache: skipping write for uncanonicalizable target", "url", targetURL)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		result:    result,
		createdAt: time.Now(),
	}
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.store = make(map[string]*entry)
	c.mu.Unlock()
}

// Len returns the current number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
