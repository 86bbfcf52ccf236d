package dmarc

import (
	"context"
	"strings"

	"github.com/synqronlabs/talon/dns"
)

// IsDMARC reports whether a TXT string looks like a DMARC record.
func IsDMARC(txt string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(txt)), "v=dmarc1")
}

// Lookup retrieves the raw DMARC record for the given domain.
//
// It first queries "_dmarc.<domain>". If nothing is found there and the
// domain is not itself the organizational domain, it falls back to
// "_dmarc.<orgdomain>" per RFC 7489 Section 6.6.3.
//
// Returns the raw record text ("" when none exists), the domain level at
// which it was found, and whether the answer was DNSSEC-authenticated.
// Lookup is best-effort: all lookup problems degrade to "no record".
func Lookup(ctx context.Context, resolver dns.Resolver, domain string) (txt, foundDomain string, authentic bool) {
	txt, authentic = lookupRecord(ctx, resolver, domain)
	if txt != "" {
		return txt, domain, authentic
	}

	if IsOrganizationalDomain(domain) {
		return "", domain, authentic
	}

	orgDomain := OrganizationalDomain(domain)
	orgTxt, orgAuthentic := lookupRecord(ctx, resolver, orgDomain)
	if orgTxt == "" {
		return "", domain, authentic
	}
	return orgTxt, orgDomain, authentic && orgAuthentic
}

// lookupRecord queries _dmarc.<domain> and returns the first DMARC TXT
// string, or "" when none exists or the query fails.
func lookupRecord(ctx context.Context, resolver dns.Resolver, domain string) (string, bool) {
	name := "_dmarc." + domain
	result, err := resolver.LookupTXT(ctx, name)
	if err != nil {
		return "", result.Authentic
	}
	for _, txt := range result.Records {
		if IsDMARC(txt) {
			return txt, result.Authentic
		}
	}
	return "", result.Authentic
}

// ParseTags splits a raw DMARC record into a tag→value map.
//
// Tag names are lower-cased and trimmed, values are trimmed. Parts without
// an "=" are skipped. Duplicate tags keep the first value, matching how
// receivers treat the record. An empty input yields an empty map.
func ParseTags(txt string) map[string]string {
	tags := make(map[string]string)
	for _, part := range strings.Split(txt, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if _, dup := tags[key]; dup {
			continue
		}
		tags[key] = strings.TrimSpace(v)
	}
	return tags
}
