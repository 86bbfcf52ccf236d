package dkim

import (
	"context"
	"regexp"
	"strings"

	"github.com/synqronlabs/talon/dns"
)

// SelectorInfo is the outcome of probing one DKIM selector.
type SelectorInfo struct {
	// Selector is the candidate name that was probed.
	Selector string `json:"selector"`

	// Name is the DNS name that was queried:
	// <selector>._domainkey.<domain>.
	Name string `json:"name"`

	// Present indicates a TXT record was found at Name.
	// When false, all remaining fields are zero.
	Present bool `json:"present"`

	// Raw is the TXT string chosen as the DKIM record.
	Raw string `json:"raw,omitempty"`

	// KeyType is the k= tag value, if any (e.g. "rsa", "ed25519").
	KeyType string `json:"key_type,omitempty"`

	// KeyBitsApprox estimates the public key strength at six bits per
	// base64 character of the p= tag. Zero when no key is present.
	KeyBitsApprox int `json:"key_bits_approx,omitempty"`

	// HasPublicKey indicates the p= tag holds a non-empty, non-revoked
	// value. A p= of "-" or the empty string means the key was revoked.
	HasPublicKey bool `json:"has_public_key"`
}

var (
	pubkeyRe  = regexp.MustCompile(`\bp=([^;]+)`)
	keyTypeRe = regexp.MustCompile(`\bk=([^;]+)`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Probe queries the DKIM TXT record for one selector and parses it into
// key-strength facts.
//
// Any lookup problem, transport failures included, is treated as "selector
// not present": selector probing is best-effort by nature and a single noisy
// answer must not fail a whole report.
func Probe(ctx context.Context, resolver dns.Resolver, domain, selector string) SelectorInfo {
	name := selector + "._domainkey." + domain
	info := SelectorInfo{Selector: selector, Name: name}

	result, err := resolver.LookupTXT(ctx, name)
	if err != nil || len(result.Records) == 0 {
		return info
	}

	// Prefer the first string that self-identifies as DKIM; fall back to
	// the first answer so oddly-formed records are still reported.
	chosen := ""
	for _, txt := range result.Records {
		if strings.Contains(txt, "v=DKIM1") || strings.Contains(txt, "p=") {
			chosen = txt
			break
		}
	}
	if chosen == "" {
		chosen = result.Records[0]
	}

	info.Present = true
	info.Raw = chosen

	if m := pubkeyRe.FindStringSubmatch(chosen); m != nil {
		pub := strings.TrimSpace(m[1])
		info.HasPublicKey = pub != "" && pub != "-"
		if info.HasPublicKey {
			cleaned := spaceRe.ReplaceAllString(pub, "")
			info.KeyBitsApprox = len(cleaned) * 6
		}
	}
	if m := keyTypeRe.FindStringSubmatch(chosen); m != nil {
		info.KeyType = strings.TrimSpace(m[1])
	}

	return info
}

// Discover probes the candidate selector list sequentially, in list order,
// and returns the selectors that are present, preserving that order.
//
// Probing is deliberately serialized to bound the query burst against the
// target's authoritative nameservers. Every candidate is probed even after
// matches are found, since domains commonly publish multiple selectors.
func Discover(ctx context.Context, resolver dns.Resolver, domain string, aggressive bool) []SelectorInfo {
	var found []SelectorInfo
	for _, selector := range Candidates(aggressive) {
		info := Probe(ctx, resolver, domain, selector)
		if info.Present {
			found = append(found, info)
		}
	}
	return found
}
