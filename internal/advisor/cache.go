package advisor

import (
	"sync"
	"time"

	"StockRadar/internal/model"
)

type cacheEntry struct {
	result  *model.AnalysisResult
	expires time.Time
}

// ResultCache caches successful analysis results per stock code with a
// bounded lifetime. Concurrent writers for the same code race benignly:
// last write wins and the entries are interchangeable.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	now func() time.Time
}

// NewResultCache creates a cache with the given entry lifetime.
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result for a code, if present and unexpired.
func (c *ResultCache) Get(code string) (*model.AnalysisResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[code]
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.result, true
}

// Set stores a result, overwriting any previous entry for the code.
func (c *ResultCache) Set(code string, result *model.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = cacheEntry{result: result, expires: c.now().Add(c.ttl)}
}
