package resolver

import (
	"context"
	"net"

	"github.com/haukened/rr-dns/internal/dns/domain"
)

// ZoneStore is the read-only contract the resolver needs from the
// authoritative record store. zonestore.ZoneStore satisfies it; tests
// substitute a fake.
type ZoneStore interface {
	Get(name string, rrtype domain.RRType) (domain.RRSet, bool)
	HasAny(name string) bool
	FindApexFor(name string) (string, bool)
	SOA(apex string) (domain.ResourceRecord, bool)
	NS(apex string) (domain.RRSet, bool)
	WildcardMatch(name string, rrtype domain.RRType) (domain.RRSet, string, bool)
}

// Cache memoizes Result values keyed by a caller-chosen identity (typically
// the zone store's pointer identity combined with the question's cache
// key), so a zone reload invalidates every memoized entry implicitly.
type Cache interface {
	Get(key string) (Result, bool)
	Set(key string, result Result)
	Len() int
}

// DNSResponder answers one already-decoded client question, producing the
// full wire-ready response. The transport calls this synchronously per
// datagram; the reload controller is the concrete implementation, tying
// together the live ZoneStore pointer, the resolver, and the composer.
type DNSResponder interface {
	HandleQuery(ctx context.Context, q domain.Question, clientAddr net.Addr) (domain.DNSResponse, error)
}
