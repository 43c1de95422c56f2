package reload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/haukened/rr-dns/internal/dns/common/log"
	"github.com/haukened/rr-dns/internal/dns/domain"
	"github.com/haukened/rr-dns/internal/dns/repos/zone"
	"github.com/haukened/rr-dns/internal/dns/repos/zonestore"
	"github.com/haukened/rr-dns/internal/dns/services/resolver"
)

const zoneA = `$ORIGIN example.test.
$TTL 300
@   IN SOA ns1.example.test. hostmaster.example.test. 1 3600 600 86400 300
    IN NS  ns1.example.test.
ns1 IN A   192.0.2.1
www IN A   192.0.2.10
`

const zoneB = `$ORIGIN example.test.
$TTL 300
@   IN SOA ns1.example.test. hostmaster.example.test. 2 3600 600 86400 300
    IN NS  ns1.example.test.
ns1 IN A   192.0.2.1
www IN A   192.0.2.99
`

func writeZone(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "example.test.zone")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing zone fixture: %v", err)
	}
	return path
}

type localAddr struct{ s string }

func (a localAddr) Network() string { return "udp" }
func (a localAddr) String() string  { return a.s }

func loadZone(t *testing.T, content string) *zonestore.ZoneStore {
	t.Helper()
	store, err := zone.LoadFile(writeZone(t, content), 300)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	return store
}

func noopLoader() (*zonestore.ZoneStore, error) { return nil, nil }

func TestController_HandleQuery_ResolvesAgainstLiveStore(t *testing.T) {
	initial := loadZone(t, zoneA)
	c := New(initial, noopLoader, log.GetLogger())

	q, err := domain.NewQuestion(1, "www.example.test.", domain.RRTypeA, domain.RRClassIN)
	if err != nil {
		t.Fatalf("NewQuestion() error: %v", err)
	}

	resp, err := c.HandleQuery(context.Background(), q, localAddr{"127.0.0.1:1234"})
	if err != nil {
		t.Fatalf("HandleQuery() error: %v", err)
	}
	if resp.RCode != domain.RCode(0) {
		t.Fatalf("RCode = %v, want NOERROR", resp.RCode)
	}
	if len(resp.Answers) != 1 {
		t.Fatalf("Answers = %d, want 1", len(resp.Answers))
	}
}

func TestController_HandleQuery_RefusesNonINClass(t *testing.T) {
	initial := loadZone(t, zoneA)
	c := New(initial, noopLoader, log.GetLogger())

	q, err := domain.NewQuestion(1, "www.example.test.", domain.RRTypeA, domain.RRClass(3)) // CH
	if err != nil {
		t.Fatalf("NewQuestion() error: %v", err)
	}

	resp, err := c.HandleQuery(context.Background(), q, localAddr{"127.0.0.1:1234"})
	if err != nil {
		t.Fatalf("HandleQuery() error: %v", err)
	}
	if resp.RCode != domain.RCode(5) {
		t.Fatalf("RCode = %v, want REFUSED", resp.RCode)
	}
}

func TestController_Reload_SwapsStoreOnSuccess(t *testing.T) {
	initial := loadZone(t, zoneA)
	next := loadZone(t, zoneB)

	c := New(initial, func() (*zonestore.ZoneStore, error) { return next, nil }, log.GetLogger())

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if c.Store() != next {
		t.Fatal("Store() did not swap to the newly loaded store")
	}

	q, err := domain.NewQuestion(1, "www.example.test.", domain.RRTypeA, domain.RRClassIN)
	if err != nil {
		t.Fatalf("NewQuestion() error: %v", err)
	}
	resp, err := c.HandleQuery(context.Background(), q, localAddr{"127.0.0.1:1234"})
	if err != nil {
		t.Fatalf("HandleQuery() error: %v", err)
	}
	if len(resp.Answers) != 1 || resp.Answers[0].Text != "192.0.2.99" {
		t.Fatalf("post-reload answer = %+v, want the zoneB address", resp.Answers)
	}
}

func TestController_Reload_KeepsPreviousStoreOnFailure(t *testing.T) {
	initial := loadZone(t, zoneA)
	loadErr := errors.New("disk read failed")

	c := New(initial, func() (*zonestore.ZoneStore, error) { return nil, loadErr }, log.GetLogger())

	before := c.Store()
	if err := c.Reload(); !errors.Is(err, loadErr) {
		t.Fatalf("Reload() error = %v, want %v", err, loadErr)
	}
	if c.Store() != before {
		t.Fatal("Store() changed after a failed reload")
	}
}

func TestController_NewCaching_MemoizesPerStore(t *testing.T) {
	initial := loadZone(t, zoneA)
	cache, err := lru.New[string, resolver.Result](8)
	if err != nil {
		t.Fatalf("lru.New() error: %v", err)
	}

	c := NewCaching(initial, noopLoader, log.GetLogger(), cacheAdapter{cache})

	q, err := domain.NewQuestion(1, "www.example.test.", domain.RRTypeA, domain.RRClassIN)
	if err != nil {
		t.Fatalf("NewQuestion() error: %v", err)
	}

	first, err := c.HandleQuery(context.Background(), q, localAddr{"127.0.0.1:1234"})
	if err != nil {
		t.Fatalf("HandleQuery() error: %v", err)
	}
	second, err := c.HandleQuery(context.Background(), q, localAddr{"127.0.0.1:1234"})
	if err != nil {
		t.Fatalf("HandleQuery() error: %v", err)
	}
	if len(first.Answers) != len(second.Answers) {
		t.Fatalf("answers differ between calls: %d vs %d", len(first.Answers), len(second.Answers))
	}
}

// cacheAdapter satisfies resolver.Cache directly over an hashicorp lru.Cache,
// mirroring the adapter repos/dnscache provides.
type cacheAdapter struct {
	lru *lru.Cache[string, resolver.Result]
}

func (c cacheAdapter) Get(key string) (resolver.Result, bool) { return c.lru.Get(key) }
func (c cacheAdapter) Set(key string, result resolver.Result) { c.lru.Add(key, result) }
func (c cacheAdapter) Len() int                                { return c.lru.Len() }
