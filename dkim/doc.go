// Package dkim discovers DomainKeys Identified Mail (RFC 6376) selectors
// published by a domain and estimates the strength of their public keys.
//
// DKIM has no enumeration mechanism: selectors are private knowledge between
// the signer and its DNS zone. Discovery therefore probes a fixed candidate
// list of names commonly used by mail providers, querying TXT at
// <selector>._domainkey.<domain> for each. Every candidate is always probed,
// even after matches are found, because domains routinely publish several
// selectors at once (key rotation, multiple sending services).
//
// Key strength is approximated from the base64 length of the p= tag at six
// bits per character. This is a coarse linear heuristic, not a cryptographic
// measurement, and it does not distinguish RSA from ed25519 encodings.
package dkim
