package dns

import "errors"

// DNS lookup errors.
var (
	// ErrDNSNotFound indicates the name does not exist (NXDOMAIN) or has no
	// records of the requested type.
	ErrDNSNotFound = errors.New("dns: name not found")

	// ErrDNSTimeout indicates the query did not complete within the
	// configured timeout.
	ErrDNSTimeout = errors.New("dns: query timed out")

	// ErrDNSServFail indicates the server returned SERVFAIL.
	ErrDNSServFail = errors.New("dns: server failure")

	// ErrDNSRefused indicates the server refused the query.
	ErrDNSRefused = errors.New("dns: query refused")

	// ErrDNSBogus indicates DNSSEC validation failed upstream.
	ErrDNSBogus = errors.New("dns: DNSSEC validation failed")
)

// IsNotFound reports whether err indicates an absent name or record.
// Absence is a normal outcome for posture checks, not a failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDNSNotFound)
}

// IsTimeout reports whether err indicates a query timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrDNSTimeout)
}

// IsServFail reports whether err indicates a server failure.
func IsServFail(err error) bool {
	return errors.Is(err, ErrDNSServFail)
}

// IsTemporary reports whether err is likely to resolve on a later attempt.
func IsTemporary(err error) bool {
	return IsTimeout(err) || IsServFail(err)
}

// IsAbsence reports whether err should be treated as "no record published"
// rather than a transport problem: non-existent names and timeouts both
// degrade to an empty answer for best-effort probing.
func IsAbsence(err error) bool {
	return IsNotFound(err) || IsTimeout(err)
}
