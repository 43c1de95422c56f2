package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/haukened/rr-dns/internal/dns/domain"
	"github.com/haukened/rr-dns/internal/dns/repos/zone"
)

func loadTestZone(t *testing.T, content string) ZoneStore {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "example.test.zone")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing zone fixture: %v", err)
	}
	store, err := zone.LoadFile(path, 300)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	return store
}

const testZone = `$ORIGIN example.test.
$TTL 300
@       IN SOA ns1.example.test. hostmaster.example.test. 1 3600 600 86400 300
        IN NS  ns1.example.test.
ns1     IN A   192.0.2.1
www     IN A   192.0.2.10
alias   IN CNAME www.example.test.
chain1  IN CNAME chain2.example.test.
chain2  IN CNAME www.example.test.
loop1   IN CNAME loop2.example.test.
loop2   IN CNAME loop1.example.test.
onlytxt IN TXT "hi"
`

const wildcardZone = `$ORIGIN example.test.
$TTL 300
@       IN SOA ns1.example.test. hostmaster.example.test. 1 3600 600 86400 300
        IN NS  ns1.example.test.
ns1     IN A   192.0.2.1
*       IN A   192.0.2.99
onlytxt IN TXT "hi"
`

const nodataZone = `$ORIGIN example.test.
$TTL 300
@       IN SOA ns1.example.test. hostmaster.example.test. 1 3600 600 86400 300
        IN NS  ns1.example.test.
ns1     IN A   192.0.2.1
onlytxt IN TXT "hi"
`

func mustQuestion(t *testing.T, name string, rrtype domain.RRType) domain.Question {
	t.Helper()
	q, err := domain.NewQuestion(1, name, rrtype, domain.RRClassIN)
	if err != nil {
		t.Fatalf("NewQuestion() error: %v", err)
	}
	return q
}

func TestResolve_ExactMatch(t *testing.T) {
	store := loadTestZone(t, testZone)
	q := mustQuestion(t, "www.example.test.", domain.RRTypeA)
	res := Resolve(q, store)
	if res.RCode != domain.RCode(0) || len(res.Answers) != 1 {
		t.Fatalf("Resolve() = %+v, want NOERROR with 1 answer", res)
	}
}

func TestResolve_WildcardSynthesis(t *testing.T) {
	store := loadTestZone(t, wildcardZone)
	q := mustQuestion(t, "anything.example.test.", domain.RRTypeA)
	res := Resolve(q, store)
	if res.RCode != domain.RCode(0) || len(res.Answers) != 1 {
		t.Fatalf("Resolve() = %+v, want NOERROR with 1 wildcard answer", res)
	}
	if res.Answers[0].Name != "anything.example.test." {
		t.Errorf("answer owner = %q, want rewritten to queried name", res.Answers[0].Name)
	}
}

func TestResolve_CNAMEChase(t *testing.T) {
	store := loadTestZone(t, testZone)
	q := mustQuestion(t, "chain1.example.test.", domain.RRTypeA)
	res := Resolve(q, store)
	if res.RCode != domain.RCode(0) {
		t.Fatalf("Resolve() rcode = %v, want NOERROR", res.RCode)
	}
	if len(res.Answers) != 3 {
		t.Fatalf("Resolve() answers = %d, want 3 (2 CNAME hops + terminal A)", len(res.Answers))
	}
	if res.Answers[len(res.Answers)-1].Type != domain.RRTypeA {
		t.Error("expected terminal answer to be an A record")
	}
}

func TestResolve_CNAMELoopTerminates(t *testing.T) {
	store := loadTestZone(t, testZone)
	q := mustQuestion(t, "loop1.example.test.", domain.RRTypeA)
	res := Resolve(q, store)
	if res.RCode != domain.RCode(0) || !res.NoData {
		t.Fatalf("Resolve() = %+v, want NOERROR/NODATA on loop detection", res)
	}
}

func TestResolve_NXDOMAIN(t *testing.T) {
	store := loadTestZone(t, testZone)
	q := mustQuestion(t, "nope.example.test.", domain.RRTypeA)
	res := Resolve(q, store)
	if res.RCode != domain.RCode(3) {
		t.Fatalf("Resolve() rcode = %v, want NXDOMAIN", res.RCode)
	}
}

func TestResolve_NODATA(t *testing.T) {
	store := loadTestZone(t, nodataZone)
	q := mustQuestion(t, "onlytxt.example.test.", domain.RRTypeA)
	res := Resolve(q, store)
	if res.RCode != domain.RCode(0) || !res.NoData {
		t.Fatalf("Resolve() = %+v, want NOERROR/NODATA", res)
	}
}

// A sibling wildcard for the queried type still answers an owner whose only
// explicit record is a different type: the exact-then-wildcard attempt is
// unconditional, not gated on whether the owner has any other data.
func TestResolve_WildcardAnswersOwnerWithOtherTypeData(t *testing.T) {
	store := loadTestZone(t, wildcardZone)
	q := mustQuestion(t, "onlytxt.example.test.", domain.RRTypeA)
	res := Resolve(q, store)
	if res.RCode != domain.RCode(0) || res.NoData || len(res.Answers) != 1 {
		t.Fatalf("Resolve() = %+v, want NOERROR with 1 wildcard answer, not NODATA", res)
	}
	if res.Answers[0].Name != "onlytxt.example.test." {
		t.Errorf("answer owner = %q, want rewritten to queried name", res.Answers[0].Name)
	}
}

func TestResolve_OutOfAuthorityIsRefused(t *testing.T) {
	store := loadTestZone(t, testZone)
	q := mustQuestion(t, "www.somewhereelse.test.", domain.RRTypeA)
	res := Resolve(q, store)
	if res.RCode != domain.RCode(5) {
		t.Fatalf("Resolve() rcode = %v, want REFUSED", res.RCode)
	}
}

func TestResolve_ExplicitCNAMEQuestion(t *testing.T) {
	store := loadTestZone(t, testZone)
	q := mustQuestion(t, "alias.example.test.", domain.RRTypeCNAME)
	res := Resolve(q, store)
	if res.RCode != domain.RCode(0) || len(res.Answers) != 1 {
		t.Fatalf("Resolve() = %+v, want NOERROR with the CNAME itself", res)
	}
}
