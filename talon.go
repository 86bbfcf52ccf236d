// Package talon evaluates a domain's email-authentication posture by
// inspecting its published SPF, DKIM and DMARC DNS records.
//
// One call produces one Report: the raw records, their parsed structure, the
// estimated SPF DNS-lookup cost across the full include: tree, the DKIM
// selectors discoverable by heuristic probing, and a deterministic 0-100
// score with ordered, human-readable justifications.
//
//	analyzer := talon.NewAnalyzer(talon.AnalyzerConfig{})
//	report, err := analyzer.AnalyzeDomain(ctx, "example.com", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(talon.RenderHuman(report))
//
// The analyzer performs no network I/O itself beyond DNS TXT queries through
// its dns.Resolver, and analysis of a domain that publishes nothing is a
// normal (low-scoring) outcome, not an error. Independent reports may run
// concurrently; within one report, probing is intentionally sequential to
// bound the query rate against the target's nameservers.
package talon

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/synqronlabs/talon/dkim"
	"github.com/synqronlabs/talon/dmarc"
	"github.com/synqronlabs/talon/dns"
	"github.com/synqronlabs/talon/spf"
)

// Default tunables.
const (
	// DefaultLookupLimit is the SPF DNS-lookup budget from RFC 7208
	// Section 4.6.4. Exceeding it breaks SPF enforcement at many
	// receivers.
	DefaultLookupLimit = 10

	// DefaultMaxIncludeDepth bounds include: recursion.
	DefaultMaxIncludeDepth = spf.DefaultMaxDepth

	// DefaultTimeout is the per-query DNS timeout.
	DefaultTimeout = 5 * time.Second
)

// Analysis errors.
var (
	ErrEmptyDomain = errors.New("talon: empty domain")
)

// AnalyzerConfig contains configuration for an Analyzer.
// The zero value selects a live DNS resolver with default limits.
type AnalyzerConfig struct {
	// Resolver performs the TXT lookups. When nil, a dns.NewResolver with
	// the configured Timeout is used.
	Resolver dns.Resolver

	// LookupLimit is the SPF DNS-lookup budget used by scoring.
	// Default: DefaultLookupLimit.
	LookupLimit int

	// MaxIncludeDepth bounds SPF include: recursion.
	// Default: DefaultMaxIncludeDepth.
	MaxIncludeDepth int

	// Timeout is the per-query DNS timeout, applied when constructing the
	// default resolver. Default: DefaultTimeout.
	Timeout time.Duration

	// Logger receives debug output. Default: discard.
	Logger *slog.Logger
}

// Analyzer produces posture reports. It holds no per-report state and is
// safe for concurrent use.
type Analyzer struct {
	resolver    dns.Resolver
	lookupLimit int
	maxDepth    int
	log         *slog.Logger
}

// NewAnalyzer creates an Analyzer, filling in defaults for zero-value
// config fields.
func NewAnalyzer(config AnalyzerConfig) *Analyzer {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Resolver == nil {
		config.Resolver = dns.NewResolver(dns.ResolverConfig{Timeout: config.Timeout})
	}
	if config.LookupLimit <= 0 {
		config.LookupLimit = DefaultLookupLimit
	}
	if config.MaxIncludeDepth <= 0 {
		config.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	return &Analyzer{
		resolver:    config.Resolver,
		lookupLimit: config.LookupLimit,
		maxDepth:    config.MaxIncludeDepth,
		log:         config.Logger,
	}
}

// AnalyzeDomain runs a one-shot analysis with default configuration.
func AnalyzeDomain(ctx context.Context, domain string, aggressiveDKIM bool) (*Report, error) {
	return NewAnalyzer(AnalyzerConfig{}).AnalyzeDomain(ctx, domain, aggressiveDKIM)
}

// AnalyzeDomain inspects the domain's SPF, DMARC and DKIM records and
// assembles the full report.
//
// A domain that publishes nothing yields a complete low-scoring report, not
// an error; errors are reserved for unusable input. DNS problems along the
// way degrade individual sections and are noted in the report.
func (a *Analyzer) AnalyzeDomain(ctx context.Context, domain string, aggressiveDKIM bool) (*Report, error) {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), ".")
	if domain == "" {
		return nil, ErrEmptyDomain
	}

	start := time.Now()
	a.log.Debug("analyzing domain", "domain", domain, "aggressive_dkim", aggressiveDKIM)

	report := &Report{
		ID:      ulid.Make().String(),
		Domain:  domain,
		TimeUTC: start.UTC(),
	}

	spfSection, spfAuthentic := a.analyzeSPF(ctx, domain)
	report.SPF = spfSection

	raw, foundDomain, dmarcAuthentic := dmarc.Lookup(ctx, a.resolver, domain)
	report.DMARC.Raw = raw
	report.DMARC.Tags = dmarc.ParseTags(raw)
	if raw != "" {
		report.DMARC.Domain = foundDomain
	}

	report.DKIM.FoundSelectors = dkim.Discover(ctx, a.resolver, domain, aggressiveDKIM)
	report.DKIM.AggressiveChecked = aggressiveDKIM

	report.Authentic = spfAuthentic && dmarcAuthentic

	report.Conclusions = Score(ScoreInput{
		SPFRecords:     report.SPF.Records,
		SPFDetails:     report.SPF.Details,
		SPFLookupCount: report.SPF.LookupCount,
		SPFErrors:      report.SPF.Errors,
		DMARCRaw:       report.DMARC.Raw,
		DMARCTags:      report.DMARC.Tags,
		DKIMInfos:      report.DKIM.FoundSelectors,
		LookupLimit:    a.lookupLimit,
	})

	report.ElapsedSeconds = math.Round(time.Since(start).Seconds()*100) / 100
	a.log.Debug("analysis complete",
		"domain", domain,
		"score", report.Conclusions.Score,
		"elapsed_seconds", report.ElapsedSeconds)

	return report, nil
}

// analyzeSPF fetches the domain's SPF records, parses each one and walks its
// include tree, merging lookup counts, resolved domains and errors across
// all top-level records.
func (a *Analyzer) analyzeSPF(ctx context.Context, domain string) (SPFSection, bool) {
	var section SPFSection

	records, authentic, err := spf.LookupRecords(ctx, a.resolver, domain)
	if err != nil {
		section.Errors = append(section.Errors, err.Error())
	}
	section.Records = records

	resolved := make(map[string]bool)
	for _, rec := range records {
		section.Details = append(section.Details, spf.Parse(rec))

		res := spf.Resolve(ctx, a.resolver, domain, rec, a.maxDepth)
		section.LookupCount += res.LookupCount
		section.Errors = append(section.Errors, res.Errors...)
		for _, d := range res.ResolvedDomains {
			resolved[d] = true
		}
	}

	section.ResolvedDomains = make([]string, 0, len(resolved))
	for d := range resolved {
		section.ResolvedDomains = append(section.ResolvedDomains, d)
	}
	sort.Strings(section.ResolvedDomains)

	return section, authentic
}

// analyzeDMARC fetches and parses the DMARC record, for callers that want
// the DMARC facts without a full report.
func (a *Analyzer) analyzeDMARC(ctx context.Context, domain string) DMARCSection {
	var section DMARCSection
	raw, foundDomain, _ := dmarc.Lookup(ctx, a.resolver, domain)
	section.Raw = raw
	section.Tags = dmarc.ParseTags(raw)
	if raw != "" {
		section.Domain = foundDomain
	}
	return section
}

// ProbeSelector checks a single DKIM selector against the domain.
func (a *Analyzer) ProbeSelector(ctx context.Context, domain, selector string) dkim.SelectorInfo {
	return dkim.Probe(ctx, a.resolver, domain, selector)
}

// DiscoverSelectors runs heuristic DKIM selector discovery against the
// domain.
func (a *Analyzer) DiscoverSelectors(ctx context.Context, domain string, aggressive bool) []dkim.SelectorInfo {
	return dkim.Discover(ctx, a.resolver, domain, aggressive)
}
