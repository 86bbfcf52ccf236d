package talon

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/synqronlabs/talon/dkim"
	"github.com/synqronlabs/talon/spf"
)

func TestScoreNothingPublished(t *testing.T) {
	c := Score(ScoreInput{})

	if c.Score != 20 {
		t.Errorf("expected score 20, got %d", c.Score)
	}

	want := []string{
		"No SPF record found (high risk of spoofing).",
		"No DMARC record found (no domain-wide policy for unauthenticated mail).",
		"No DKIM selectors found using heuristics (may not use DKIM).",
	}
	if !reflect.DeepEqual(c.Reasons, want) {
		t.Errorf("expected reasons %v, got %v", want, c.Reasons)
	}
}

func TestScoreStrongPosture(t *testing.T) {
	c := Score(ScoreInput{
		SPFRecords: []string{"v=spf1 include:_spf.example.net -all"},
		SPFDetails: []spf.Record{
			{Raw: "v=spf1 include:_spf.example.net -all", AllMechanism: "-all"},
		},
		SPFLookupCount: 2,
		DMARCRaw:       "v=DMARC1; p=reject; rua=mailto:agg@example.com",
		DMARCTags: map[string]string{
			"v":   "DMARC1",
			"p":   "reject",
			"rua": "mailto:agg@example.com",
		},
		DKIMInfos: []dkim.SelectorInfo{
			{Selector: "default", Present: true, KeyBitsApprox: 2400, HasPublicKey: true},
		},
	})

	if c.Score != 100 {
		t.Errorf("expected score 100, got %d", c.Score)
	}

	want := []string{
		"SPF uses -all (reject) - strict, good.",
		"DMARC policy p=reject (strong).",
		"DKIM selector default key size looks OK (~2400 bits).",
	}
	if !reflect.DeepEqual(c.Reasons, want) {
		t.Errorf("expected reasons %v, got %v", want, c.Reasons)
	}
}

func TestScoreAllMechanism(t *testing.T) {
	tests := []struct {
		all    string
		score  int
		reason string
	}{
		{"", 95, "SPF record has no 'all' mechanism - may allow unintended senders."},
		{"+all", 75, "SPF uses +all (permits everything) - critical misconfiguration."},
		{"?all", 90, "SPF uses ?all (neutral) - weak protection."},
		{"~all", 97, "SPF uses ~all (softfail) - allows some leeway."},
		{"-all", 100, "SPF uses -all (reject) - strict, good."},
	}

	for _, tt := range tests {
		name := tt.all
		if name == "" {
			name = "missing"
		}
		t.Run(name, func(t *testing.T) {
			c := Score(ScoreInput{
				SPFRecords: []string{"v=spf1 " + tt.all},
				SPFDetails: []spf.Record{{AllMechanism: tt.all}},
				DMARCRaw:   "v=DMARC1; p=reject; rua=mailto:a@b.com",
				DMARCTags:  map[string]string{"p": "reject", "rua": "mailto:a@b.com"},
				DKIMInfos:  []dkim.SelectorInfo{{Selector: "s1", Present: true}},
			})
			if c.Score != tt.score {
				t.Errorf("expected score %d, got %d", tt.score, c.Score)
			}
			if c.Reasons[0] != tt.reason {
				t.Errorf("expected first reason %q, got %q", tt.reason, c.Reasons[0])
			}
		})
	}
}

func TestScoreMultipleSPFRecords(t *testing.T) {
	c := Score(ScoreInput{
		SPFRecords: []string{"v=spf1 -all", "v=spf1 ~all"},
		SPFDetails: []spf.Record{{AllMechanism: "-all"}, {AllMechanism: "~all"}},
		DMARCRaw:   "v=DMARC1; p=reject; rua=mailto:a@b.com",
		DMARCTags:  map[string]string{"p": "reject", "rua": "mailto:a@b.com"},
		DKIMInfos:  []dkim.SelectorInfo{{Selector: "s1", Present: true}},
	})

	// 100 - 30 (multiple) - 3 (~all on the second record).
	if c.Score != 67 {
		t.Errorf("expected score 67, got %d", c.Score)
	}
	if c.Reasons[0] != "Multiple SPF records found (invalid SPF configuration)." {
		t.Errorf("unexpected first reason: %q", c.Reasons[0])
	}
}

func TestScoreLookupBudget(t *testing.T) {
	tests := []struct {
		count  int
		score  int
		reason string
	}{
		{5, 100, ""},
		{7, 100, ""},
		{8, 93, "SPF mechanisms cause 8 DNS lookups (close to limit)."},
		{10, 93, "SPF mechanisms cause 10 DNS lookups (close to limit)."},
		{11, 80, "SPF mechanisms likely cause 11 DNS lookups (> 10). This can break SPF enforcement."},
		{15, 80, "SPF mechanisms likely cause 15 DNS lookups (> 10). This can break SPF enforcement."},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("count_%d", tt.count), func(t *testing.T) {
			c := Score(ScoreInput{
				SPFRecords:     []string{"v=spf1 -all"},
				SPFDetails:     []spf.Record{{AllMechanism: "-all"}},
				SPFLookupCount: tt.count,
				DMARCRaw:       "v=DMARC1; p=reject; rua=mailto:a@b.com",
				DMARCTags:      map[string]string{"p": "reject", "rua": "mailto:a@b.com"},
				DKIMInfos:      []dkim.SelectorInfo{{Selector: "s1", Present: true}},
			})
			if c.Score != tt.score {
				t.Errorf("expected score %d, got %d", tt.score, c.Score)
			}
			if tt.reason != "" {
				found := false
				for _, r := range c.Reasons {
					if r == tt.reason {
						found = true
					}
				}
				if !found {
					t.Errorf("expected reason %q in %v", tt.reason, c.Reasons)
				}
			}
		})
	}
}

func TestScoreDMARCPolicy(t *testing.T) {
	base := func(tags map[string]string) ScoreInput {
		return ScoreInput{
			SPFRecords: []string{"v=spf1 -all"},
			SPFDetails: []spf.Record{{AllMechanism: "-all"}},
			DMARCRaw:   "v=DMARC1",
			DMARCTags:  tags,
			DKIMInfos:  []dkim.SelectorInfo{{Selector: "s1", Present: true}},
		}
	}

	tests := []struct {
		name   string
		tags   map[string]string
		score  int
		reason string
	}{
		{
			"none",
			map[string]string{"p": "none", "rua": "mailto:a@b.com"},
			90,
			"DMARC policy p=none (monitoring only). Consider p=quarantine or p=reject.",
		},
		{
			"missing policy tag",
			map[string]string{"rua": "mailto:a@b.com"},
			90,
			"DMARC policy p=none (monitoring only). Consider p=quarantine or p=reject.",
		},
		{
			"quarantine",
			map[string]string{"p": "quarantine", "rua": "mailto:a@b.com"},
			97,
			"DMARC policy p=quarantine (moderate).",
		},
		{
			"reject",
			map[string]string{"p": "reject", "rua": "mailto:a@b.com"},
			100,
			"DMARC policy p=reject (strong).",
		},
		{
			"partial pct",
			map[string]string{"p": "reject", "pct": "50", "rua": "mailto:a@b.com"},
			95,
			"DMARC pct=50 (not applied to all mail).",
		},
		{
			"missing rua",
			map[string]string{"p": "reject"},
			97,
			"No RUA (aggregate) reporting configured (you won't get aggregate reports).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Score(base(tt.tags))
			if c.Score != tt.score {
				t.Errorf("expected score %d, got %d", tt.score, c.Score)
			}
			found := false
			for _, r := range c.Reasons {
				if r == tt.reason {
					found = true
				}
			}
			if !found {
				t.Errorf("expected reason %q in %v", tt.reason, c.Reasons)
			}
		})
	}
}

func TestScoreDKIMKeyBits(t *testing.T) {
	tests := []struct {
		name   string
		bits   int
		score  int
		reason string
	}{
		{"weak", 768, 90, "DKIM selector s1 has a weak public key (~768 bits estimated)."},
		{"marginal", 1536, 97, "DKIM selector s1 uses ~1536 bits (consider 2048)."},
		{"ok", 2400, 100, "DKIM selector s1 key size looks OK (~2400 bits)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Score(ScoreInput{
				SPFRecords: []string{"v=spf1 -all"},
				SPFDetails: []spf.Record{{AllMechanism: "-all"}},
				DMARCRaw:   "v=DMARC1; p=reject; rua=mailto:a@b.com",
				DMARCTags:  map[string]string{"p": "reject", "rua": "mailto:a@b.com"},
				DKIMInfos: []dkim.SelectorInfo{
					{Selector: "s1", Present: true, KeyBitsApprox: tt.bits, HasPublicKey: true},
				},
			})
			if c.Score != tt.score {
				t.Errorf("expected score %d, got %d", tt.score, c.Score)
			}
			last := c.Reasons[len(c.Reasons)-1]
			if last != tt.reason {
				t.Errorf("expected last reason %q, got %q", tt.reason, last)
			}
		})
	}
}

func TestScoreDKIMNoKeyBitsSkipped(t *testing.T) {
	c := Score(ScoreInput{
		SPFRecords: []string{"v=spf1 -all"},
		SPFDetails: []spf.Record{{AllMechanism: "-all"}},
		DMARCRaw:   "v=DMARC1; p=reject; rua=mailto:a@b.com",
		DMARCTags:  map[string]string{"p": "reject", "rua": "mailto:a@b.com"},
		DKIMInfos: []dkim.SelectorInfo{
			{Selector: "revoked", Present: true},
		},
	})

	if c.Score != 100 {
		t.Errorf("expected score 100, got %d", c.Score)
	}
	for _, r := range c.Reasons {
		if strings.Contains(r, "DKIM selector") {
			t.Errorf("expected no DKIM key reason, got %q", r)
		}
	}
}

func TestScoreClampedAtZero(t *testing.T) {
	c := Score(ScoreInput{
		SPFRecords:     []string{"v=spf1 +all", "v=spf1 +all"},
		SPFDetails:     []spf.Record{{AllMechanism: "+all"}, {AllMechanism: "+all"}},
		SPFLookupCount: 15,
	})

	// 100 - 30 - 25 - 25 - 20 - 30 - 10 would go negative.
	if c.Score != 0 {
		t.Errorf("expected score clamped to 0, got %d", c.Score)
	}
}

func TestScoreCustomLookupLimit(t *testing.T) {
	c := Score(ScoreInput{
		SPFRecords:     []string{"v=spf1 -all"},
		SPFDetails:     []spf.Record{{AllMechanism: "-all"}},
		SPFLookupCount: 6,
		DMARCRaw:       "v=DMARC1; p=reject; rua=mailto:a@b.com",
		DMARCTags:      map[string]string{"p": "reject", "rua": "mailto:a@b.com"},
		DKIMInfos:      []dkim.SelectorInfo{{Selector: "s1", Present: true}},
		LookupLimit:    5,
	})

	if c.Score != 80 {
		t.Errorf("expected score 80, got %d", c.Score)
	}
	want := "SPF mechanisms likely cause 6 DNS lookups (> 5). This can break SPF enforcement."
	found := false
	for _, r := range c.Reasons {
		if r == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected reason %q in %v", want, c.Reasons)
	}
}
