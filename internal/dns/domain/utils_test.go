package domain

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	cases := []struct {
		name string
		fqdn string
		t    RRType
		c    RRClass
		want string
	}{
		{name: "A record", fqdn: "www.example.com.", t: RRTypeA, c: RRClassIN, want: "www.example.com.:1:1"},
		{name: "AAAA record", fqdn: "foo.example.org.", t: RRTypeAAAA, c: RRClassIN, want: "foo.example.org.:28:1"},
		{name: "CNAME record", fqdn: "pages.github.io.", t: RRTypeCNAME, c: RRClassIN, want: "pages.github.io.:5:1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GenerateCacheKey(tc.fqdn, tc.t, tc.c)
			if got != tc.want {
				t.Errorf("GenerateCacheKey(%q, %d, %d) = %q, want %q", tc.fqdn, tc.t, tc.c, got, tc.want)
			}
		})
	}
}

func TestGenerateCacheKey_DistinctByType(t *testing.T) {
	a := GenerateCacheKey("example.com.", RRTypeA, RRClassIN)
	aaaa := GenerateCacheKey("example.com.", RRTypeAAAA, RRClassIN)
	if a == aaaa {
		t.Errorf("expected distinct cache keys for different rtypes, got %q for both", a)
	}
}
