// Package spf inspects Sender Policy Framework (RFC 7208) DNS records for
// posture analysis.
//
// Unlike a full SPF verifier, this package does not evaluate whether a given
// IP is authorized to send mail. It extracts the structural facts that matter
// for a domain's configuration health:
//
//   - the include: targets and the redirect= modifier
//   - the mechanisms that consume DNS lookups (include, exists, redirect,
//     a, mx, ptr), which RFC 7208 caps at 10 per evaluation
//   - the terminal "all" qualifier that decides the default policy
//
// Resolve walks the include: tree depth-first over a dns.Resolver,
// accumulating the DNS-lookup cost of the whole record. A global visited set
// prevents cycles, and a depth limit bounds hostile or broken chains. The
// redirect= modifier is parsed but deliberately not traversed; it only takes
// effect when no mechanism matches, and following it would double-count
// lookups for the common case.
package spf
