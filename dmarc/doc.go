// Package dmarc retrieves and parses Domain-based Message Authentication,
// Reporting, and Conformance (RFC 7489) policy records for posture analysis.
//
// The policy record lives in DNS as a TXT record at "_dmarc.<domain>". When a
// subdomain publishes no record of its own, receivers fall back to the
// organizational domain determined via the Public Suffix List, and Lookup
// mirrors that behavior.
//
// Records are parsed into a flat tag→value map rather than a validating
// structure: posture analysis wants to see exactly what the domain publishes,
// including tags a strict parser would reject.
package dmarc
