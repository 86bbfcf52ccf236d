package spf

import "strings"

// Record is the structural summary of one SPF TXT record.
//
// Parsing is deliberately lenient: a malformed record never produces an
// error, only empty fields. Posture analysis has to cope with whatever a
// domain actually publishes.
type Record struct {
	// Raw is the record text as published.
	Raw string `json:"raw"`

	// Includes are the include: targets in record order, duplicates kept.
	Includes []string `json:"includes"`

	// Redirect is the target of the first redirect= modifier, if any.
	Redirect string `json:"redirect,omitempty"`

	// LookupMechanisms are the mechanisms that consume a DNS lookup during
	// SPF evaluation (include, exists, redirect, a, mx, ptr), in record
	// order, duplicates kept. The a/mx/ptr forms with a domain-spec or CIDR
	// suffix are recorded under their bare mechanism name.
	LookupMechanisms []string `json:"lookup_mechanisms"`

	// AllMechanism is the first terminal "all" directive with an explicit
	// qualifier, normalized to lower case: "+all", "-all", "~all" or "?all".
	// Empty when the record has none.
	AllMechanism string `json:"all_mechanism,omitempty"`
}

// Parse extracts the structural fields from one raw SPF TXT string.
// The caller is expected to have filtered for the v=spf1 prefix already;
// Parse itself does not care whether the prefix is present.
func Parse(raw string) Record {
	rec := Record{Raw: raw}

	for _, field := range strings.Fields(raw) {
		token := field
		qualifier := ""
		if len(token) > 1 {
			switch token[0] {
			case '+', '-', '~', '?':
				qualifier = string(token[0])
				token = token[1:]
			}
		}

		lower := strings.ToLower(token)
		switch {
		case strings.HasPrefix(lower, "include:"):
			target := token[len("include:"):]
			if target == "" {
				continue
			}
			rec.Includes = append(rec.Includes, target)
			rec.LookupMechanisms = append(rec.LookupMechanisms, "include:"+target)

		case strings.HasPrefix(lower, "exists:"):
			target := token[len("exists:"):]
			if target == "" {
				continue
			}
			rec.LookupMechanisms = append(rec.LookupMechanisms, "exists:"+target)

		case strings.HasPrefix(lower, "redirect="):
			target := token[len("redirect="):]
			if target == "" {
				continue
			}
			if rec.Redirect == "" {
				rec.Redirect = target
			}
			rec.LookupMechanisms = append(rec.LookupMechanisms, "redirect="+target)

		case lower == "all":
			if qualifier != "" && rec.AllMechanism == "" {
				rec.AllMechanism = qualifier + "all"
			}

		case lower == "a" || lower == "mx" || lower == "ptr":
			rec.LookupMechanisms = append(rec.LookupMechanisms, lower)

		case hasMechPrefix(lower, "a") || hasMechPrefix(lower, "mx") || hasMechPrefix(lower, "ptr"):
			// a:domain, mx:domain/24, a/28 and friends still cost one lookup
			rec.LookupMechanisms = append(rec.LookupMechanisms, mechName(lower))
		}
	}

	return rec
}

// hasMechPrefix reports whether token is mech followed by a domain-spec or
// CIDR suffix ("a:colo.example.com", "mx/24").
func hasMechPrefix(token, mech string) bool {
	if !strings.HasPrefix(token, mech) || len(token) <= len(mech) {
		return false
	}
	c := token[len(mech)]
	return c == ':' || c == '/'
}

// mechName returns the mechanism name before any ':' or '/' suffix.
func mechName(token string) string {
	if i := strings.IndexAny(token, ":/"); i >= 0 {
		return token[:i]
	}
	return token
}

// IsSPF reports whether a TXT string looks like an SPF record.
func IsSPF(txt string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(txt)), "v=spf1")
}
