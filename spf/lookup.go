package spf

import (
	"context"
	"errors"
	"fmt"

	"github.com/synqronlabs/talon/dns"
)

// SPF lookup errors.
var (
	// ErrDNS indicates a DNS transport error while fetching SPF records.
	ErrDNS = errors.New("spf: DNS lookup error")
)

// LookupRecords returns the SPF records (TXT strings with a v=spf1 prefix)
// published at domain, in answer order.
//
// Absence of records, a non-existent name and a query timeout all yield an
// empty slice with a nil error; only harder transport failures are returned
// as an error. The second return value reports DNSSEC authenticity of the
// answer.
func LookupRecords(ctx context.Context, resolver dns.Resolver, domain string) ([]string, bool, error) {
	result, err := resolver.LookupTXT(ctx, domain)
	if err != nil {
		if dns.IsAbsence(err) {
			return nil, result.Authentic, nil
		}
		return nil, result.Authentic, fmt.Errorf("%w: %v", ErrDNS, err)
	}

	var spfs []string
	for _, txt := range result.Records {
		if IsSPF(txt) {
			spfs = append(spfs, txt)
		}
	}
	return spfs, result.Authentic, nil
}
