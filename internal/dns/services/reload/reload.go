// Package reload holds the single atomic ZoneStore pointer the transport
// reads on every query, and the logic to rebuild and swap it on demand
// (typically from a SIGHUP handler in cmd/rr-dnsd).
package reload

import (
	"context"
	"net"
	"sync/atomic"

	"github.com/haukened/rr-dns/internal/dns/common/log"
	"github.com/haukened/rr-dns/internal/dns/domain"
	"github.com/haukened/rr-dns/internal/dns/repos/zonestore"
	"github.com/haukened/rr-dns/internal/dns/services/composer"
	"github.com/haukened/rr-dns/internal/dns/services/resolver"
)

// Loader builds a fresh ZoneStore from whatever source the server was
// configured with (a single file or a directory), the same one used to
// build the currently live store.
type Loader func() (*zonestore.ZoneStore, error)

// resolveFunc is satisfied by both resolver.Resolve and
// (*resolver.CachingResolver).Resolve, letting Controller stay agnostic to
// whether memoization is enabled.
type resolveFunc func(domain.Question, resolver.ZoneStore) resolver.Result

// Controller owns the live ZoneStore pointer and answers queries against
// whichever store is currently published. Reload swaps the pointer; it
// never mutates a store that's already in service, so in-flight
// resolutions that already loaded the old pointer complete against the old
// data.
type Controller struct {
	store   atomic.Pointer[zonestore.ZoneStore]
	load    Loader
	resolve resolveFunc
	logger  log.Logger
}

// New creates a Controller already serving initial, using the pure
// (uncached) resolver.
func New(initial *zonestore.ZoneStore, load Loader, logger log.Logger) *Controller {
	c := &Controller{load: load, resolve: resolver.Resolve, logger: logger}
	c.store.Store(initial)
	return c
}

// NewCaching creates a Controller backed by a memoizing resolver of the
// given cache size. A reload publishes a new store pointer, which
// implicitly invalidates every entry memoized against the old one.
func NewCaching(initial *zonestore.ZoneStore, load Loader, logger log.Logger, cache resolver.Cache) *Controller {
	cr := resolver.NewCachingResolver(cache)
	c := &Controller{load: load, resolve: cr.Resolve, logger: logger}
	c.store.Store(initial)
	return c
}

// Store returns the currently published ZoneStore.
func (c *Controller) Store() *zonestore.ZoneStore {
	return c.store.Load()
}

// Reload builds a new ZoneStore from the configured source and publishes it
// on success. On failure it logs the error and leaves the previous store in
// service; no resolution ever observes a half-built store.
func (c *Controller) Reload() error {
	next, err := c.load()
	if err != nil {
		c.logger.Error(map[string]any{"error": err.Error()}, "zone reload failed, keeping previous store")
		return err
	}
	c.store.Store(next)
	c.logger.Info(map[string]any{
		"apexes":  next.Apexes(),
		"records": next.RecordCount(),
	}, "zone reload succeeded")
	return nil
}

// HandleQuery resolves q against the currently published store and
// composes the full reply. Queries outside class IN are refused before
// ever touching the resolver, per the wire protocol's class restriction.
func (c *Controller) HandleQuery(_ context.Context, q domain.Question, clientAddr net.Addr) (domain.DNSResponse, error) {
	if q.Class != domain.RRClassIN {
		return domain.NewDNSErrorResponse(q.ID, domain.RCode(5)), nil // REFUSED
	}

	store := c.store.Load()
	res := c.resolve(q, store)
	resp := composer.Compose(q, res, store)

	c.logger.Debug(map[string]any{
		"client": clientAddr.String(),
		"name":   q.Name,
		"type":   q.Type.String(),
		"rcode":  resp.RCode.String(),
	}, "handled query")

	return resp, nil
}

var _ resolver.DNSResponder = (*Controller)(nil)
