// Package cache keeps recent analysis results for the MCP server.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/usestring/malort/internal/analyze"
)

// ResultCache provides thread-safe LRU caching of analysis results by run ID.
type ResultCache struct {
	cache *lru.Cache[string, *analyze.Result]
}

// NewResultCache creates a new LRU cache with the specified maximum number of items.
func NewResultCache(maxItems int) (*ResultCache, error) {
	c, err := lru.New[string, *analyze.Result](maxItems)
	if err != nil {
		return nil, err
	}
	return &ResultCache{cache: c}, nil
}

// Get retrieves a result by run ID.
// Returns the result and true if found, nil and false otherwise.
func (c *ResultCache) Get(runID string) (*analyze.Result, bool) {
	return c.cache.Get(runID)
}

// Put adds or updates a result in the cache. The oldest result is evicted
// when the cache is full.
func (c *ResultCache) Put(runID string, res *analyze.Result) {
	c.cache.Add(runID, res)
}

// Keys returns the cached run IDs, oldest first.
func (c *ResultCache) Keys() []string {
	return c.cache.Keys()
}

// Len returns the current number of items in the cache.
func (c *ResultCache) Len() int {
	return c.cache.Len()
}
