package talon

import (
	"time"

	"github.com/synqronlabs/talon/dkim"
	"github.com/synqronlabs/talon/spf"
)

// Report is the complete email-authentication posture assessment for one
// domain. It is assembled once per analysis invocation and never mutated
// afterwards.
type Report struct {
	// ID uniquely identifies this analysis invocation (ULID).
	ID string `json:"id"`

	// Domain is the domain that was analyzed, normalized (trimmed,
	// trailing dot removed).
	Domain string `json:"domain"`

	// TimeUTC is when the analysis started.
	TimeUTC time.Time `json:"time_utc"`

	SPF   SPFSection   `json:"spf"`
	DMARC DMARCSection `json:"dmarc"`
	DKIM  DKIMSection  `json:"dkim"`

	Conclusions Conclusions `json:"conclusions"`

	// Authentic indicates the top-level SPF and DMARC answers carried the
	// DNSSEC AD bit. Always false with a non-DNSSEC resolver.
	Authentic bool `json:"dnssec_authentic"`

	// ElapsedSeconds is the wall-clock duration of the analysis,
	// rounded to two decimals.
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// SPFSection aggregates the SPF facts for a report. The resolution fields
// are merged across all top-level SPF records.
type SPFSection struct {
	// Records are the raw v=spf1 TXT strings published at the domain.
	Records []string `json:"records"`

	// Details are the parsed records, one per entry in Records.
	Details []spf.Record `json:"details"`

	// ResolvedDomains are the distinct include targets reached across all
	// records, sorted.
	ResolvedDomains []string `json:"resolved_domains"`

	// LookupCount is the estimated DNS-lookup cost summed over all records.
	LookupCount int `json:"estimated_dns_lookup_count"`

	// Errors lists resolution problems (failed includes, depth cutoffs).
	Errors []string `json:"errors,omitempty"`
}

// DMARCSection holds the DMARC record facts for a report.
type DMARCSection struct {
	// Raw is the record text, "" when the domain publishes none.
	Raw string `json:"raw,omitempty"`

	// Domain is the level at which the record was found; differs from the
	// report domain when the organizational-domain fallback applied.
	Domain string `json:"domain,omitempty"`

	// Tags is the parsed tag map. Empty when no record exists.
	Tags map[string]string `json:"tags"`
}

// DKIMSection holds the DKIM discovery outcome for a report.
type DKIMSection struct {
	// FoundSelectors are the selectors that answered, in candidate-list
	// order.
	FoundSelectors []dkim.SelectorInfo `json:"found_selectors"`

	// AggressiveChecked records which candidate list was probed.
	AggressiveChecked bool `json:"aggressive_checked"`
}

// Conclusions is the scoring outcome: a 0-100 score with the ordered list
// of justifications that produced it. The order of Reasons follows the
// fixed rule-evaluation order of Score and is part of the contract.
type Conclusions struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}
