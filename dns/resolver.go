package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// Result contains the answer to a TXT query.
type Result struct {
	// Records are the TXT strings in answer order. Multi-part character
	// strings are joined per RFC 7208 Section 3.3.
	Records []string

	// Authentic indicates the response carried the DNSSEC AD bit.
	// Only meaningful when the resolver was configured with DNSSEC enabled.
	Authentic bool
}

// Resolver is the DNS capability consumed by the analysis packages.
// Implementations must be safe for concurrent use.
type Resolver interface {
	// LookupTXT retrieves TXT records for the given name.
	// Returns ErrDNSNotFound when the name does not exist or has no TXT
	// records.
	LookupTXT(ctx context.Context, name string) (Result, error)
}

// ResolverConfig contains configuration for the DNS resolver.
type ResolverConfig struct {
	// Nameservers is a list of DNS servers to query (e.g., "8.8.8.8:53").
	// If empty, system resolvers from /etc/resolv.conf are used,
	// falling back to public DNS (8.8.8.8, 1.1.1.1).
	Nameservers []string

	// DNSSEC enables the DO bit on queries. Requires DNSSEC-validating
	// upstream resolvers; the Authentic field in Result reflects the AD bit.
	DNSSEC bool

	// Timeout is the timeout for an individual DNS query. Default is 5 seconds.
	Timeout time.Duration
}

// DNSResolver implements Resolver using github.com/miekg/dns.
//
// Each query is attempted once per configured nameserver. Failed queries are
// not retried: a timed-out probe is reported as such so the caller can degrade
// to an empty answer.
type DNSResolver struct {
	config ResolverConfig
	client *mdns.Client
}

var _ Resolver = (*DNSResolver)(nil)

// NewResolver creates a new DNS resolver.
func NewResolver(config ResolverConfig) *DNSResolver {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if len(config.Nameservers) == 0 {
		config.Nameservers = getSystemNameservers()
	}

	return &DNSResolver{
		config: config,
		client: &mdns.Client{
			Timeout: config.Timeout,
		},
	}
}

// getSystemNameservers tries to get system DNS servers from resolv.conf.
func getSystemNameservers() []string {
	config, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(config.Servers) == 0 {
		// Fallback to common public DNS servers
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}

	servers := make([]string, 0, len(config.Servers))
	for _, s := range config.Servers {
		if !strings.Contains(s, ":") {
			s = s + ":53"
		}
		servers = append(servers, s)
	}
	return servers
}

// ensureAbsolute ensures the domain name ends with a dot (FQDN format).
func ensureAbsolute(name string) string {
	if !strings.HasSuffix(name, ".") {
		return name + "."
	}
	return name
}

// LookupTXT retrieves TXT records for the given name.
func (r *DNSResolver) LookupTXT(ctx context.Context, name string) (Result, error) {
	m := new(mdns.Msg)
	m.SetQuestion(ensureAbsolute(name), mdns.TypeTXT)
	m.RecursionDesired = true

	if r.config.DNSSEC {
		m.SetEdns0(4096, true) // Enable EDNS0 with DO bit
	}

	var lastErr error
	authentic := false

	for _, server := range r.config.Nameservers {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		resp, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			if isTimeoutErr(err) {
				lastErr = fmt.Errorf("%w: %v", ErrDNSTimeout, err)
			} else {
				lastErr = fmt.Errorf("dns query failed: %w", err)
			}
			continue
		}

		if r.config.DNSSEC && resp.AuthenticatedData {
			authentic = true
		}

		switch resp.Rcode {
		case mdns.RcodeSuccess:
			var records []string
			for _, rr := range resp.Answer {
				if txt, ok := rr.(*mdns.TXT); ok {
					// TXT records may be split into multiple character
					// strings, join them per RFC 7208 Section 3.3
					records = append(records, strings.Join(txt.Txt, ""))
				}
			}
			if len(records) == 0 {
				return Result{Authentic: authentic}, ErrDNSNotFound
			}
			return Result{Records: records, Authentic: authentic}, nil

		case mdns.RcodeNameError: // NXDOMAIN
			return Result{Authentic: authentic}, ErrDNSNotFound

		case mdns.RcodeServerFailure:
			// SERVFAIL might indicate DNSSEC validation failure
			if r.config.DNSSEC {
				lastErr = ErrDNSBogus
			} else {
				lastErr = ErrDNSServFail
			}
			continue

		case mdns.RcodeRefused:
			lastErr = ErrDNSRefused
			continue

		default:
			lastErr = fmt.Errorf("dns: unexpected rcode %d", resp.Rcode)
			continue
		}
	}

	if lastErr != nil {
		return Result{Authentic: authentic}, lastErr
	}
	return Result{Authentic: authentic}, ErrDNSServFail
}

// isTimeoutErr reports whether a transport error was caused by a deadline.
func isTimeoutErr(err error) bool {
	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// Config returns the resolver's current configuration.
func (r *DNSResolver) Config() ResolverConfig {
	return r.config
}
