package talon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/synqronlabs/talon/dkim"
	"github.com/synqronlabs/talon/spf"
)

// ScoreInput carries the parsed facts the scoring rules evaluate.
type ScoreInput struct {
	SPFRecords     []string
	SPFDetails     []spf.Record
	SPFLookupCount int
	SPFErrors      []string
	DMARCRaw       string
	DMARCTags      map[string]string
	DKIMInfos      []dkim.SelectorInfo

	// LookupLimit is the SPF DNS-lookup budget; 0 selects
	// DefaultLookupLimit.
	LookupLimit int
}

// Score turns parsed posture facts into a 0-100 score with ordered reasons.
//
// It is a pure function. Rules run in a fixed order (SPF presence, SPF
// policy strictness, lookup budget, DMARC, DKIM) and each appends its
// reasons as it fires; callers and tests may rely on that order. The score
// starts at 100 and is clamped to [0, 100] once at the end, not per rule.
func Score(in ScoreInput) Conclusions {
	limit := in.LookupLimit
	if limit <= 0 {
		limit = DefaultLookupLimit
	}

	score := 100
	var reasons []string

	if len(in.SPFRecords) == 0 {
		score -= 40
		reasons = append(reasons, "No SPF record found (high risk of spoofing).")
	} else {
		if len(in.SPFRecords) > 1 {
			score -= 30
			reasons = append(reasons, "Multiple SPF records found (invalid SPF configuration).")
		}

		for _, d := range in.SPFDetails {
			switch strings.ToLower(d.AllMechanism) {
			case "":
				score -= 5
				reasons = append(reasons, "SPF record has no 'all' mechanism - may allow unintended senders.")
			case "+all":
				score -= 25
				reasons = append(reasons, "SPF uses +all (permits everything) - critical misconfiguration.")
			case "?all":
				score -= 10
				reasons = append(reasons, "SPF uses ?all (neutral) - weak protection.")
			case "~all":
				score -= 3
				reasons = append(reasons, "SPF uses ~all (softfail) - allows some leeway.")
			case "-all":
				reasons = append(reasons, "SPF uses -all (reject) - strict, good.")
			}
		}

		if in.SPFLookupCount > limit {
			score -= 20
			reasons = append(reasons, fmt.Sprintf("SPF mechanisms likely cause %d DNS lookups (> %d). This can break SPF enforcement.", in.SPFLookupCount, limit))
		} else if in.SPFLookupCount > limit-3 {
			score -= 7
			reasons = append(reasons, fmt.Sprintf("SPF mechanisms cause %d DNS lookups (close to limit).", in.SPFLookupCount))
		}
	}

	if in.DMARCRaw == "" {
		score -= 30
		reasons = append(reasons, "No DMARC record found (no domain-wide policy for unauthenticated mail).")
	} else {
		switch strings.ToLower(in.DMARCTags["p"]) {
		case "", "none":
			score -= 10
			reasons = append(reasons, "DMARC policy p=none (monitoring only). Consider p=quarantine or p=reject.")
		case "quarantine":
			score -= 3
			reasons = append(reasons, "DMARC policy p=quarantine (moderate).")
		case "reject":
			reasons = append(reasons, "DMARC policy p=reject (strong).")
		}

		pct := 100
		if v, ok := in.DMARCTags["pct"]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				pct = n
			}
		}
		if pct < 100 {
			score -= 5
			reasons = append(reasons, fmt.Sprintf("DMARC pct=%d (not applied to all mail).", pct))
		}

		if _, ok := in.DMARCTags["rua"]; !ok {
			score -= 3
			reasons = append(reasons, "No RUA (aggregate) reporting configured (you won't get aggregate reports).")
		}
	}

	if len(in.DKIMInfos) == 0 {
		score -= 10
		reasons = append(reasons, "No DKIM selectors found using heuristics (may not use DKIM).")
	} else {
		for _, info := range in.DKIMInfos {
			bits := info.KeyBitsApprox
			if bits == 0 {
				continue
			}
			switch {
			case bits < 1024:
				score -= 10
				reasons = append(reasons, fmt.Sprintf("DKIM selector %s has a weak public key (~%d bits estimated).", info.Selector, bits))
			case bits < 2048:
				score -= 3
				reasons = append(reasons, fmt.Sprintf("DKIM selector %s uses ~%d bits (consider 2048).", info.Selector, bits))
			default:
				reasons = append(reasons, fmt.Sprintf("DKIM selector %s key size looks OK (~%d bits).", info.Selector, bits))
			}
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Conclusions{Score: score, Reasons: reasons}
}
