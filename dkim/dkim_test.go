package dkim

import (
	"context"
	"strings"
	"testing"

	"github.com/synqronlabs/talon/dns"
)

func TestProbe(t *testing.T) {
	b64 := strings.Repeat("A", 256)

	tests := []struct {
		name     string
		txt      map[string][]string
		selector string
		want     SelectorInfo
	}{
		{
			name: "standard record with 256-char key",
			txt: map[string][]string{
				"s1._domainkey.example.com.": {"v=DKIM1; k=rsa; p=" + b64},
			},
			selector: "s1",
			want: SelectorInfo{
				Selector:      "s1",
				Name:          "s1._domainkey.example.com",
				Present:       true,
				Raw:           "v=DKIM1; k=rsa; p=" + b64,
				KeyType:       "rsa",
				KeyBitsApprox: 1536,
				HasPublicKey:  true,
			},
		},
		{
			name:     "absent selector",
			txt:      map[string][]string{},
			selector: "missing",
			want: SelectorInfo{
				Selector: "missing",
				Name:     "missing._domainkey.example.com",
			},
		},
		{
			name: "revoked key",
			txt: map[string][]string{
				"old._domainkey.example.com.": {"v=DKIM1; p=-"},
			},
			selector: "old",
			want: SelectorInfo{
				Selector: "old",
				Name:     "old._domainkey.example.com",
				Present:  true,
				Raw:      "v=DKIM1; p=-",
			},
		},
		{
			name: "dkim string preferred over unrelated TXT",
			txt: map[string][]string{
				"mail._domainkey.example.com.": {
					"unrelated verification token",
					"v=DKIM1; p=QUJD",
				},
			},
			selector: "mail",
			want: SelectorInfo{
				Selector:      "mail",
				Name:          "mail._domainkey.example.com",
				Present:       true,
				Raw:           "v=DKIM1; p=QUJD",
				KeyBitsApprox: 24,
				HasPublicKey:  true,
			},
		},
		{
			name: "no qualifying string falls back to first",
			txt: map[string][]string{
				"odd._domainkey.example.com.": {"something else entirely"},
			},
			selector: "odd",
			want: SelectorInfo{
				Selector: "odd",
				Name:     "odd._domainkey.example.com",
				Present:  true,
				Raw:      "something else entirely",
			},
		},
		{
			name: "whitespace in key stripped before estimating",
			txt: map[string][]string{
				"ws._domainkey.example.com.": {"v=DKIM1; p=QUJD RUZH"},
			},
			selector: "ws",
			want: SelectorInfo{
				Selector:      "ws",
				Name:          "ws._domainkey.example.com",
				Present:       true,
				Raw:           "v=DKIM1; p=QUJD RUZH",
				KeyBitsApprox: 48,
				HasPublicKey:  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := dns.MockResolver{TXT: tt.txt}
			got := Probe(context.Background(), resolver, "example.com", tt.selector)
			if got != tt.want {
				t.Errorf("Probe()\n got: %+v\nwant: %+v", got, tt.want)
			}
		})
	}
}

func TestProbeTransportFailureIsAbsence(t *testing.T) {
	resolver := dns.MockResolver{
		Fail: []string{"s1._domainkey.example.com."},
	}
	got := Probe(context.Background(), resolver, "example.com", "s1")
	if got.Present {
		t.Errorf("transport failure should yield Present=false, got %+v", got)
	}
}

func TestDiscoverOrder(t *testing.T) {
	// Publish selectors out of candidate-list order; Discover must return
	// them in candidate-list order regardless.
	resolver := dns.MockResolver{
		TXT: map[string][]string{
			"mta._domainkey.example.com.":     {"v=DKIM1; p=QUJD"},
			"default._domainkey.example.com.": {"v=DKIM1; p=QUJD"},
			"google._domainkey.example.com.":  {"v=DKIM1; p=QUJD"},
		},
	}

	found := Discover(context.Background(), resolver, "example.com", false)

	var names []string
	for _, info := range found {
		names = append(names, info.Selector)
	}
	want := []string{"default", "google", "mta"}
	if len(names) != len(want) {
		t.Fatalf("found %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("found %v, want %v", names, want)
		}
	}
}

func TestDiscoverAggressiveList(t *testing.T) {
	// The sendgrid selector is only in the aggressive list.
	resolver := dns.MockResolver{
		TXT: map[string][]string{
			"sendgrid._domainkey.example.com.": {"v=DKIM1; p=QUJD"},
		},
	}

	ctx := context.Background()
	if found := Discover(ctx, resolver, "example.com", false); len(found) != 0 {
		t.Errorf("short list should not probe sendgrid, found %v", found)
	}
	found := Discover(ctx, resolver, "example.com", true)
	if len(found) != 1 || found[0].Selector != "sendgrid" {
		t.Errorf("aggressive list should find sendgrid, found %v", found)
	}
}

func TestCandidates(t *testing.T) {
	if len(Candidates(false)) >= len(Candidates(true)) {
		t.Error("aggressive list should be strictly larger than the default list")
	}
}
