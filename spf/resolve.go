package spf

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/synqronlabs/talon/dns"
)

// DefaultMaxDepth is the default include-recursion depth limit.
const DefaultMaxDepth = 10

// ResolveResult is the outcome of walking one SPF record's include tree.
type ResolveResult struct {
	// ResolvedDomains are the distinct include targets that were
	// successfully queried, sorted for deterministic output.
	ResolvedDomains []string `json:"resolved_domains"`

	// LookupCount is the total number of DNS-lookup-costing mechanisms
	// found across the whole resolved tree. It is a conservative estimate
	// of the cost a verifier would pay evaluating the record.
	LookupCount int `json:"lookup_count"`

	// Errors describes include targets that could not be resolved and
	// branches cut off by the depth limit. The walk continues past them.
	Errors []string `json:"errors"`
}

// Resolve follows the include: chains of one SPF record depth-first,
// accumulating the DNS-lookup cost of the whole tree.
//
// A visited set global to the walk guarantees each include target is queried
// at most once, which both deduplicates work and makes cycles harmless.
// Branches deeper than maxDepth are abandoned with an error string.
// maxDepth <= 0 selects DefaultMaxDepth.
//
// The redirect= modifier is not followed; see the package documentation.
func Resolve(ctx context.Context, resolver dns.Resolver, domain, spfText string, maxDepth int) ResolveResult {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	w := &walker{
		resolver: resolver,
		maxDepth: maxDepth,
		visited:  make(map[string]bool),
		resolved: make(map[string]bool),
	}
	w.walk(ctx, domain, spfText, 0)

	domains := make([]string, 0, len(w.resolved))
	for d := range w.resolved {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	return ResolveResult{
		ResolvedDomains: domains,
		LookupCount:     w.lookups,
		Errors:          w.errors,
	}
}

// walker carries the state of one resolution call. It is local to the call,
// so concurrent Resolve invocations share nothing.
type walker struct {
	resolver dns.Resolver
	maxDepth int
	visited  map[string]bool
	resolved map[string]bool
	errors   []string
	lookups  int
}

func (w *walker) walk(ctx context.Context, name, txt string, depth int) {
	if depth > w.maxDepth {
		w.errors = append(w.errors, fmt.Sprintf("spf include recursion depth exceeded at %s", name))
		return
	}

	// The node's own mechanisms count even when its includes fail below.
	rec := Parse(txt)
	w.lookups += len(rec.LookupMechanisms)

	for _, target := range rec.Includes {
		target = strings.TrimSpace(target)
		if target == "" || w.visited[target] {
			continue
		}
		w.visited[target] = true

		result, err := w.resolver.LookupTXT(ctx, target)
		if err != nil && !dns.IsAbsence(err) {
			w.errors = append(w.errors, fmt.Sprintf("error resolving include %s: %v", target, err))
			continue
		}

		// The target resolved, whether or not it publishes SPF.
		w.resolved[target] = true

		for _, s := range result.Records {
			if IsSPF(s) {
				w.walk(ctx, target, s, depth+1)
			}
		}
	}
}
