package resolver

import (
	"fmt"

	"github.com/haukened/rr-dns/internal/dns/domain"
)

// CachingResolver wraps Resolve with a memoization layer. Cache keys combine
// the store's pointer identity with the question's cache key, so publishing
// a new ZoneStore (a reload) invalidates every memoized entry implicitly:
// stale entries are simply never looked up again, not explicitly evicted.
type CachingResolver struct {
	cache Cache
}

// NewCachingResolver wraps cache in a CachingResolver.
func NewCachingResolver(cache Cache) *CachingResolver {
	return &CachingResolver{cache: cache}
}

// Resolve returns the memoized Result for (q, store) if present, otherwise
// runs the pure resolver and stores the outcome before returning it.
func (c *CachingResolver) Resolve(q domain.Question, store ZoneStore) Result {
	key := storeCacheKey(store, q)
	if result, ok := c.cache.Get(key); ok {
		return result
	}
	result := Resolve(q, store)
	c.cache.Set(key, result)
	return result
}

// storeCacheKey derives a cache key from store's pointer identity and q's
// own cache key, so two different published stores never collide even if
// they happen to answer the same question the same way.
func storeCacheKey(store ZoneStore, q domain.Question) string {
	return fmt.Sprintf("%p|%s", store, q.CacheKey())
}
