package dmarc

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// OrganizationalDomain returns the organizational domain for the given
// domain: the label directly under the public suffix. For example:
//   - example.com -> example.com
//   - sub.example.com -> example.com
//   - sub.example.co.uk -> example.co.uk
//
// This uses the Public Suffix List, as required by RFC 7489.
func OrganizationalDomain(domain string) string {
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	if domain == "" {
		return ""
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		// Handles names like "localhost" that have no public suffix.
		return domain
	}
	return etld1
}

// IsOrganizationalDomain returns true if the domain sits directly below the
// public suffix.
func IsOrganizationalDomain(domain string) bool {
	d := strings.TrimSuffix(strings.ToLower(domain), ".")
	return OrganizationalDomain(d) == d
}
