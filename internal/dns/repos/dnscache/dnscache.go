// Package dnscache provides an LRU-backed implementation of
// resolver.Cache, used to memoize resolved answers within the lifetime of a
// single published ZoneStore.
package dnscache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/haukened/rr-dns/internal/dns/services/resolver"
)

// dnsCache memoizes resolver.Result values by an opaque cache key. It
// carries no TTL logic of its own: authoritative answers don't expire on
// their own schedule, they expire when the owning ZoneStore is replaced, at
// which point the cache key's store-identity component simply stops being
// looked up.
type dnsCache struct {
	lru *lru.Cache[string, resolver.Result]
}

// New returns a new dnsCache instance backed by an LRU of the given size.
func New(size int) (*dnsCache, error) {
	cache, err := lru.New[string, resolver.Result](size)
	if err != nil {
		return nil, err
	}
	return &dnsCache{lru: cache}, nil
}

// Get retrieves a memoized result for key, if present.
func (c *dnsCache) Get(key string) (resolver.Result, bool) {
	return c.lru.Get(key)
}

// Set stores result under key, evicting the least-recently-used entry if
// the cache is full.
func (c *dnsCache) Set(key string, result resolver.Result) {
	c.lru.Add(key, result)
}

// Len returns the number of memoized entries currently stored.
func (c *dnsCache) Len() int {
	return c.lru.Len()
}

var _ resolver.Cache = (*dnsCache)(nil)
