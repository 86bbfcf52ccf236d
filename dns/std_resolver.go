package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// StdResolver implements Resolver using the standard library net package.
// It cannot report DNSSEC validation (Authentic is always false).
// Use DNSResolver for DNSSEC support and custom nameservers.
type StdResolver struct {
	resolver *net.Resolver
}

var _ Resolver = (*StdResolver)(nil)

// NewStdResolver creates a resolver using the standard library.
func NewStdResolver() *StdResolver {
	return &StdResolver{
		resolver: net.DefaultResolver,
	}
}

// NewStdResolverWithDialer creates a resolver using a custom dialer.
// This allows configuring custom DNS servers while using the stdlib interface.
func NewStdResolverWithDialer(dial func(ctx context.Context, network, address string) (net.Conn, error)) *StdResolver {
	return &StdResolver{
		resolver: &net.Resolver{
			PreferGo: true,
			Dial:     dial,
		},
	}
}

// LookupTXT retrieves TXT records using the standard library.
func (r *StdResolver) LookupTXT(ctx context.Context, name string) (Result, error) {
	// Strip trailing dot for stdlib compatibility
	name = strings.TrimSuffix(name, ".")

	records, err := r.resolver.LookupTXT(ctx, name)
	if err != nil {
		return Result{}, convertError(err)
	}

	if len(records) == 0 {
		return Result{}, ErrDNSNotFound
	}

	return Result{Records: records}, nil
}

// convertError converts standard library DNS errors to package errors.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return ErrDNSNotFound
		}
		if dnsErr.IsTimeout {
			return ErrDNSTimeout
		}
		if dnsErr.IsTemporary {
			return ErrDNSServFail
		}
	}

	return fmt.Errorf("dns lookup failed: %w", err)
}
