package talon

import (
	"fmt"
	"sort"
	"strings"
)

// RenderHuman formats a report as a deterministic multi-line text document
// with SPF, DMARC, DKIM and summary sections. Intended for terminals; use
// the JSON or MessagePack forms for machine consumption.
func RenderHuman(r *Report) string {
	var b strings.Builder
	rule := strings.Repeat("-", 60)

	fmt.Fprintf(&b, "Email authentication report for: %s\n", r.Domain)
	fmt.Fprintf(&b, "Checked at (UTC): %s\n", r.TimeUTC.Format("2006-01-02T15:04:05Z"))
	b.WriteString(rule + "\n")

	b.WriteString("SPF:\n")
	if len(r.SPF.Records) == 0 {
		b.WriteString("  - No SPF TXT record found.\n")
	} else {
		for i, rec := range r.SPF.Records {
			fmt.Fprintf(&b, "  - Record #%d: %s\n", i+1, rec)
		}
		fmt.Fprintf(&b, "  - Estimated DNS-lookup-like mechanisms: %d\n", r.SPF.LookupCount)
		for _, e := range r.SPF.Errors {
			fmt.Fprintf(&b, "    ! error: %s\n", e)
		}
		for _, d := range r.SPF.Details {
			if d.AllMechanism != "" {
				fmt.Fprintf(&b, "  - SPF 'all' mechanism: %s\n", d.AllMechanism)
			}
		}
	}

	b.WriteString("\nDMARC:\n")
	if r.DMARC.Raw == "" {
		b.WriteString("  - No DMARC record (no _dmarc.domain TXT).\n")
	} else {
		fmt.Fprintf(&b, "  - DMARC record: %s\n", r.DMARC.Raw)
		if r.DMARC.Domain != "" && r.DMARC.Domain != r.Domain {
			fmt.Fprintf(&b, "  - Found at organizational domain: %s\n", r.DMARC.Domain)
		}
		keys := make([]string, 0, len(r.DMARC.Tags))
		for k := range r.DMARC.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "    - %s = %s\n", k, r.DMARC.Tags[k])
		}
	}

	b.WriteString("\nDKIM:\n")
	if len(r.DKIM.FoundSelectors) == 0 {
		b.WriteString("  - No DKIM selectors found with heuristic list.\n")
		if !r.DKIM.AggressiveChecked {
			b.WriteString("    (you can try aggressive discovery to search more selectors)\n")
		}
	} else {
		for _, info := range r.DKIM.FoundSelectors {
			fmt.Fprintf(&b, "  - Selector: %s (DNS name: %s)\n", info.Selector, info.Name)
			if info.KeyBitsApprox > 0 {
				fmt.Fprintf(&b, "    - approx key bits: %d\n", info.KeyBitsApprox)
			}
			if info.KeyType != "" {
				fmt.Fprintf(&b, "    - key type: %s\n", info.KeyType)
			}
			raw := info.Raw
			if len(raw) > 200 {
				raw = raw[:200]
			}
			fmt.Fprintf(&b, "    - raw TXT (first 200 chars): %s\n", raw)
		}
	}

	b.WriteString("\nSummary & score:\n")
	fmt.Fprintf(&b, "  - Score (0-100): %d\n", r.Conclusions.Score)
	for _, reason := range r.Conclusions.Reasons {
		fmt.Fprintf(&b, "    - %s\n", reason)
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Elapsed time: %.2fs\n", r.ElapsedSeconds)

	return b.String()
}
