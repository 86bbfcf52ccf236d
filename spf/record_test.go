package spf

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Record
	}{
		{
			name: "includes and lookup mechanisms in order",
			raw:  "v=spf1 include:a.com a mx ~all",
			want: Record{
				Raw:              "v=spf1 include:a.com a mx ~all",
				Includes:         []string{"a.com"},
				LookupMechanisms: []string{"include:a.com", "a", "mx"},
				AllMechanism:     "~all",
			},
		},
		{
			name: "duplicate includes preserved",
			raw:  "v=spf1 include:x.com include:x.com -all",
			want: Record{
				Raw:              "v=spf1 include:x.com include:x.com -all",
				Includes:         []string{"x.com", "x.com"},
				LookupMechanisms: []string{"include:x.com", "include:x.com"},
				AllMechanism:     "-all",
			},
		},
		{
			name: "redirect parsed and counted, first one wins",
			raw:  "v=spf1 redirect=one.example redirect=two.example",
			want: Record{
				Raw:              "v=spf1 redirect=one.example redirect=two.example",
				Redirect:         "one.example",
				LookupMechanisms: []string{"redirect=one.example", "redirect=two.example"},
			},
		},
		{
			name: "exists and suffixed mechanisms cost lookups",
			raw:  "v=spf1 exists:%{i}.chk.example a:colo.example.com/28 mx:backup.example ptr:host.example ip4:192.0.2.0/24 -all",
			want: Record{
				Raw:              "v=spf1 exists:%{i}.chk.example a:colo.example.com/28 mx:backup.example ptr:host.example ip4:192.0.2.0/24 -all",
				LookupMechanisms: []string{"exists:%{i}.chk.example", "a", "mx", "ptr"},
				AllMechanism:     "-all",
			},
		},
		{
			name: "first all qualifier wins, case-insensitive",
			raw:  "V=SPF1 Include:Mail.Example.COM ?ALL -all",
			want: Record{
				Raw:              "V=SPF1 Include:Mail.Example.COM ?ALL -all",
				Includes:         []string{"Mail.Example.COM"},
				LookupMechanisms: []string{"include:Mail.Example.COM"},
				AllMechanism:     "?all",
			},
		},
		{
			name: "qualified include still recognized",
			raw:  "v=spf1 +include:relay.example +all",
			want: Record{
				Raw:              "v=spf1 +include:relay.example +all",
				Includes:         []string{"relay.example"},
				LookupMechanisms: []string{"include:relay.example"},
				AllMechanism:     "+all",
			},
		},
		{
			name: "bare all without qualifier is not recorded",
			raw:  "v=spf1 mx all",
			want: Record{
				Raw:              "v=spf1 mx all",
				LookupMechanisms: []string{"mx"},
			},
		},
		{
			name: "malformed input yields empty fields",
			raw:  "not an spf record at;; all..",
			want: Record{
				Raw: "not an spf record at;; all..",
			},
		},
		{
			name: "ip mechanisms cost nothing",
			raw:  "v=spf1 ip4:192.0.2.1 ip6:2001:db8::1 -all",
			want: Record{
				Raw:          "v=spf1 ip4:192.0.2.1 ip6:2001:db8::1 -all",
				AllMechanism: "-all",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q)\n got: %+v\nwant: %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseAllMechanismDomain(t *testing.T) {
	// The all qualifier is always one of the four known forms, and the
	// leftmost match wins regardless of strictness.
	for _, raw := range []string{
		"v=spf1 ~all -all",
		"v=spf1 -all ~all",
		"v=spf1 ?all +all -all",
		"v=spf1 mx",
	} {
		got := Parse(raw).AllMechanism
		switch got {
		case "", "+all", "-all", "~all", "?all":
		default:
			t.Errorf("Parse(%q).AllMechanism = %q, not a valid qualifier", raw, got)
		}
	}

	if got := Parse("v=spf1 ~all -all").AllMechanism; got != "~all" {
		t.Errorf("leftmost all should win, got %q", got)
	}
}

func TestIsSPF(t *testing.T) {
	tests := []struct {
		txt  string
		want bool
	}{
		{"v=spf1 -all", true},
		{"  V=SPF1 mx ~all", true},
		{"v=spf10 -all", true}, // prefix match, same as verifier pre-filtering
		{"v=DKIM1; p=abc", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSPF(tt.txt); got != tt.want {
			t.Errorf("IsSPF(%q) = %v, want %v", tt.txt, got, tt.want)
		}
	}
}
