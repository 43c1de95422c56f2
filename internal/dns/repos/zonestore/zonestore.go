// Package zonestore holds the in-memory authoritative record set served by
// the resolver. A ZoneStore is immutable once built: the reload controller
// builds a brand new store from a zone load and swaps it in behind an
// atomic pointer, rather than mutating a published store in place.
package zonestore

import (
	"strings"
	"sync"

	bloomfilter "github.com/bits-and-blooms/bloom/v3"
	"github.com/haukened/rr-dns/internal/dns/domain"
)

// ZoneStore is a read-only, concurrency-safe view over a set of loaded zones.
type ZoneStore struct {
	mu      sync.RWMutex
	apexes  map[string]struct{}             // canonical zone origins, e.g. "example.com."
	records map[string]map[domain.RRType]domain.RRSet // owner name -> rtype -> RRSet
	soas    map[string]domain.ResourceRecord // apex -> SOA record
	nss     map[string]domain.RRSet          // apex -> NS RRSet
	names   *bloomfilter.BloomFilter         // fast negative existence check over owner names
}

// New returns an empty ZoneStore. Use a Builder to populate one from zone data.
func New() *ZoneStore {
	return &ZoneStore{
		apexes:  make(map[string]struct{}),
		records: make(map[string]map[domain.RRType]domain.RRSet),
		soas:    make(map[string]domain.ResourceRecord),
		nss:     make(map[string]domain.RRSet),
		names:   bloomfilter.NewWithEstimates(4096, 0.01),
	}
}

// Get returns the RRSet stored for the exact (name, type) pair.
func (z *ZoneStore) Get(name string, rrtype domain.RRType) (domain.RRSet, bool) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	byType, ok := z.records[name]
	if !ok {
		return nil, false
	}
	rrset, ok := byType[rrtype]
	return rrset, ok
}

// HasAny reports whether any RRSet at all is stored under name, regardless of type.
// Used to distinguish NODATA (name exists, type doesn't) from NXDOMAIN (name doesn't exist).
func (z *ZoneStore) HasAny(name string) bool {
	if !z.names.Test([]byte(name)) {
		return false
	}
	z.mu.RLock()
	defer z.mu.RUnlock()
	byType, ok := z.records[name]
	return ok && len(byType) > 0
}

// FindApexFor walks name's labels looking for the most specific configured
// zone apex that is an ancestor of (or equal to) name. Returns "", false if
// name is not within any served zone.
func (z *ZoneStore) FindApexFor(name string) (string, bool) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	candidate := name
	for {
		if _, ok := z.apexes[candidate]; ok {
			return candidate, true
		}
		idx := strings.Index(candidate, ".")
		if idx < 0 || idx == len(candidate)-1 {
			return "", false
		}
		candidate = candidate[idx+1:]
	}
}

// SOA returns the SOA record for the given zone apex.
func (z *ZoneStore) SOA(apex string) (domain.ResourceRecord, bool) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	rr, ok := z.soas[apex]
	return rr, ok
}

// NS returns the NS RRSet for the given zone apex.
func (z *ZoneStore) NS(apex string) (domain.RRSet, bool) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	rrset, ok := z.nss[apex]
	return rrset, ok
}

// Apexes returns the canonical origins of every zone currently served.
func (z *ZoneStore) Apexes() []string {
	z.mu.RLock()
	defer z.mu.RUnlock()
	out := make([]string, 0, len(z.apexes))
	for a := range z.apexes {
		out = append(out, a)
	}
	return out
}

// RecordCount returns the total number of resource records held by the store.
func (z *ZoneStore) RecordCount() int {
	z.mu.RLock()
	defer z.mu.RUnlock()
	n := 0
	for _, byType := range z.records {
		for _, rrset := range byType {
			n += len(rrset)
		}
	}
	return n
}

// Builder accumulates records and zone apex declarations and produces an
// immutable ZoneStore. A Builder is not safe for concurrent use; build one
// store per zone load on a single goroutine, then publish the result.
type Builder struct {
	store *ZoneStore
}

// NewBuilder starts a new, empty ZoneStore build.
func NewBuilder() *Builder {
	return &Builder{store: New()}
}

// AddApex declares name as a zone origin served by the resulting store.
func (b *Builder) AddApex(name string) *Builder {
	b.store.apexes[name] = struct{}{}
	return b
}

// Add inserts rr into the store under its owner name and type, appending to
// any existing RRSet for that (name, type) pair.
func (b *Builder) Add(rr domain.ResourceRecord) *Builder {
	s := b.store
	if _, ok := s.records[rr.Name]; !ok {
		s.records[rr.Name] = make(map[domain.RRType]domain.RRSet)
	}
	s.records[rr.Name][rr.Type] = append(s.records[rr.Name][rr.Type], rr)
	s.names.Add([]byte(rr.Name))
	return b
}

// SetSOA records the SOA record owning the given zone apex.
func (b *Builder) SetSOA(apex string, rr domain.ResourceRecord) *Builder {
	b.store.soas[apex] = rr
	return b
}

// SetNS records the NS RRSet delegating the given zone apex.
func (b *Builder) SetNS(apex string, rrset domain.RRSet) *Builder {
	b.store.nss[apex] = rrset
	return b
}

// Build finalizes and returns the accumulated ZoneStore. The Builder must
// not be reused afterward.
func (b *Builder) Build() *ZoneStore {
	return b.store
}

// WildcardMatch looks for an owner name of the form "*.<parent>" where
// <parent> is name's immediate parent, and returns the RRSet for rrtype at
// that wildcard owner plus the wildcard owner name itself. Per the one-label
// synthesis rule, a wildcard only ever covers names exactly one label below
// its own owner; it is not consulted for deeper descendants.
func (z *ZoneStore) WildcardMatch(name string, rrtype domain.RRType) (domain.RRSet, string, bool) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	idx := strings.Index(name, ".")
	if idx < 0 {
		return nil, "", false
	}
	parent := name[idx+1:]
	if parent == "" {
		return nil, "", false
	}
	wildcard := "*." + parent
	byType, ok := z.records[wildcard]
	if !ok {
		return nil, "", false
	}
	if rrset, ok := byType[rrtype]; ok {
		return rrset, wildcard, true
	}
	if len(byType) > 0 {
		return nil, wildcard, true
	}
	return nil, "", false
}
