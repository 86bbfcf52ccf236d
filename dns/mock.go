package dns

import (
	"context"
	"slices"
)

// MockResolver is a Resolver used for testing.
// Set TXT records in the map, which maps FQDNs (with trailing dot) to values.
type MockResolver struct {
	TXT map[string][]string

	// Fail contains names whose queries return ErrDNSServFail.
	// Names are FQDNs with trailing dot.
	Fail []string

	// Timeout contains names whose queries return ErrDNSTimeout.
	// Names are FQDNs with trailing dot.
	Timeout []string

	// AllAuthentic sets the Authentic flag on every successful response.
	AllAuthentic bool
}

var _ Resolver = MockResolver{}

// ensureFQDN ensures the name ends with a dot.
func ensureFQDN(name string) string {
	if len(name) == 0 || name[len(name)-1] != '.' {
		return name + "."
	}
	return name
}

// LookupTXT returns TXT records for the given name.
func (r MockResolver) LookupTXT(ctx context.Context, name string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	fqdn := ensureFQDN(name)
	if slices.Contains(r.Fail, fqdn) {
		return Result{}, ErrDNSServFail
	}
	if slices.Contains(r.Timeout, fqdn) {
		return Result{}, ErrDNSTimeout
	}

	records, ok := r.TXT[fqdn]
	if !ok || len(records) == 0 {
		return Result{Authentic: r.AllAuthentic}, ErrDNSNotFound
	}

	return Result{Records: records, Authentic: r.AllAuthentic}, nil
}
