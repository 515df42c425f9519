package location

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/observability"
)

// DefaultCacheSize is the number of distinct queries CachedSearch keeps.
const DefaultCacheSize = 256

// CachedSearch wraps a LocationSearch with an in-memory LRU cache.
type CachedSearch struct {
	inner   LocationSearch
	cache   *lru.Cache[string, []Candidate]
	metrics *observability.Metrics
}

var _ LocationSearch = (*CachedSearch)(nil)

// NewCachedSearch creates a cache decorator around inner.
func NewCachedSearch(inner LocationSearch, size int, metrics *observability.Metrics) (*CachedSearch, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []Candidate](size)
	if err != nil {
		return nil, err
	}
	return &CachedSearch{inner: inner, cache: cache, metrics: metrics}, nil
}

// Search returns a cached answer when one exists, otherwise asks inner.
func (c *CachedSearch) Search(ctx context.Context, query string) ([]Candidate, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(q)

	if cached, ok := c.cache.Get(key); ok {
		c.metrics.LocationCacheLookup(true)
		return append([]Candidate(nil), cached...), nil
	}
	c.metrics.LocationCacheLookup(false)

	candidates, err := c.inner.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so a "not found" can be retried.
	if len(candidates) > 0 {
		c.cache.Add(key, append([]Candidate(nil), candidates...))
	}
	return candidates, nil
}

// Len returns the number of cached queries.
func (c *CachedSearch) Len() int {
	return c.cache.Len()
}
