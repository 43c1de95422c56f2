// Package composer turns a resolver.Result into the domain.DNSResponse the
// wire gateway serializes, filling in the authority section per the
// NXDOMAIN/NODATA/answers rules and leaving truncation to the wire encoder.
package composer

import (
	"github.com/haukened/rr-dns/internal/dns/domain"
	"github.com/haukened/rr-dns/internal/dns/services/resolver"
)

// ZoneStore is the subset of the zone store the composer needs to fill in
// authority-section SOA/NS records.
type ZoneStore interface {
	SOA(apex string) (domain.ResourceRecord, bool)
	NS(apex string) (domain.RRSet, bool)
}

// Compose builds the full reply for q given res, the outcome of resolving
// it against store. The additional section is always empty: glue records
// are out of scope for the core server.
func Compose(q domain.Question, res resolver.Result, store ZoneStore) domain.DNSResponse {
	resp := domain.DNSResponse{
		ID:      q.ID,
		RCode:   res.RCode,
		Answers: res.Answers,
	}

	switch {
	case res.RCode == domain.RCode(3): // NXDOMAIN
		if soa, ok := store.SOA(res.Apex); ok {
			resp.Authority = []domain.ResourceRecord{soa}
		}
	case res.RCode == domain.RCode(0) && len(res.Answers) > 0:
		if ns, ok := store.NS(res.Apex); ok {
			resp.Authority = append(resp.Authority, ns...)
		}
	case res.RCode == domain.RCode(0) && res.NoData:
		if soa, ok := store.SOA(res.Apex); ok {
			resp.Authority = append(resp.Authority, soa)
		}
		if ns, ok := store.NS(res.Apex); ok {
			resp.Authority = append(resp.Authority, ns...)
		}
	}

	return resp
}
