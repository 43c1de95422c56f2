// Package resolver implements the authoritative resolution algorithm: exact
// match, wildcard synthesis, CNAME chasing, and the NODATA/NXDOMAIN/REFUSED
// decision. The core algorithm is a pure function of (Question, ZoneStore);
// it performs no I/O and blocks on nothing.
package resolver

import (
	"github.com/haukened/rr-dns/internal/dns/common/utils"
	"github.com/haukened/rr-dns/internal/dns/domain"
)

// maxChaseDepth bounds the number of CNAME hops a single query may follow,
// matching dnsmasq's default and comfortably above real-world zone depths.
const maxChaseDepth = 8

// Result is the outcome of resolving a single question against a ZoneStore.
type Result struct {
	RCode   domain.RCode
	Answers []domain.ResourceRecord // CNAME hops (in chase order) then the terminal RRset, if any
	Apex    string                  // zone apex used for authority-section SOA/NS; "" if out of authority
	NoData  bool                    // true when the name exists but qtype does not (NOERROR/NODATA)
}

// Resolve runs the chase algorithm for q against store. It never mutates
// store and performs no I/O.
func Resolve(q domain.Question, store ZoneStore) Result {
	qname := utils.CanonicalDNSName(q.Name)

	apex, ok := store.FindApexFor(qname)
	if !ok {
		return Result{RCode: domain.RCode(5)} // REFUSED: outside any served zone
	}

	if q.Type == domain.RRTypeCNAME {
		return resolveCNAMEQuestion(qname, apex, store)
	}

	return chase(qname, apex, q.Type, store)
}

// resolveCNAMEQuestion handles the case where the client explicitly asked
// for CNAME data: no chasing, just an exact-then-wildcard lookup.
func resolveCNAMEQuestion(qname, apex string, store ZoneStore) Result {
	if rrset, ok := store.Get(qname, domain.RRTypeCNAME); ok && len(rrset) > 0 {
		return Result{RCode: domain.RCode(0), Answers: rrset, Apex: apex}
	}
	hasOwner := store.HasAny(qname)
	if !hasOwner {
		if rrset, owner, ok := store.WildcardMatch(qname, domain.RRTypeCNAME); ok && len(rrset) > 0 {
			return Result{RCode: domain.RCode(0), Answers: rewriteOwner(rrset, owner, qname), Apex: apex}
		}
	}
	if hasOwner {
		return Result{RCode: domain.RCode(0), Apex: apex, NoData: true}
	}
	return Result{RCode: domain.RCode(3), Apex: apex} // NXDOMAIN
}

// chase implements the exact -> wildcard -> CNAME -> NODATA/NXDOMAIN loop
// described for non-CNAME query types, bounded to maxChaseDepth hops.
func chase(qname, apex string, qtype domain.RRType, store ZoneStore) Result {
	var answers []domain.ResourceRecord
	visited := make(map[string]struct{}, maxChaseDepth)
	current := qname

	for depth := 0; depth < maxChaseDepth; depth++ {
		if _, seen := visited[current]; seen {
			return Result{RCode: domain.RCode(0), Answers: answers, Apex: apex, NoData: true}
		}
		visited[current] = struct{}{}

		if rrset, ok := store.Get(current, qtype); ok && len(rrset) > 0 {
			answers = append(answers, rrset...)
			return Result{RCode: domain.RCode(0), Answers: answers, Apex: apex}
		}

		if rrset, owner, ok := store.WildcardMatch(current, qtype); ok && len(rrset) > 0 {
			answers = append(answers, rewriteOwner(rrset, owner, current)...)
			return Result{RCode: domain.RCode(0), Answers: answers, Apex: apex}
		}

		wildcardHitAnyType := false
		if cnameSet, ok := store.Get(current, domain.RRTypeCNAME); ok && len(cnameSet) > 0 {
			answers = append(answers, cnameSet...)
			current = utils.CanonicalDNSName(cnameSet[0].Text)
			continue
		}
		if cnameSet, owner, ok := store.WildcardMatch(current, domain.RRTypeCNAME); ok && len(cnameSet) > 0 {
			rewritten := rewriteOwner(cnameSet, owner, current)
			answers = append(answers, rewritten...)
			current = utils.CanonicalDNSName(rewritten[0].Text)
			continue
		} else if ok {
			// WildcardMatch found the owner but not this type: NODATA-promoting signal.
			wildcardHitAnyType = true
		}

		if current == qname && (store.HasAny(qname) || wildcardHitAnyType) {
			return Result{RCode: domain.RCode(0), Answers: answers, Apex: apex, NoData: true}
		}
		return Result{RCode: domain.RCode(3), Answers: answers, Apex: apex} // NXDOMAIN
	}
	// Depth exceeded or cycle: return accumulated CNAMEs as NODATA, never an error rcode.
	return Result{RCode: domain.RCode(0), Answers: answers, Apex: apex, NoData: true}
}

// rewriteOwner returns a copy of rrset with every record's owner name
// rewritten to queriedName, used when a wildcard RRset answers a more
// specific query name: the wire owner is the queried name, not the wildcard.
func rewriteOwner(rrset domain.RRSet, wildcardOwner, queriedName string) []domain.ResourceRecord {
	_ = wildcardOwner
	out := make([]domain.ResourceRecord, len(rrset))
	for i, rr := range rrset {
		rr.Name = queriedName
		out[i] = rr
	}
	return out
}
