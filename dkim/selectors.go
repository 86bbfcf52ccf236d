package dkim

// DefaultSelectors is the short candidate list used for a quick probe:
// the generic names plus the biggest providers.
var DefaultSelectors = []string{
	"default", "selector1", "s1", "google", "google1", "mail", "smtp", "dkim",
	"mx", "selector", "k1", "k2", "mta",
}

// AggressiveSelectors is the extended candidate list covering the major
// ESPs, hosted-mail products and date-based rotation schemes. Probing it is
// slower and noisier against the target's nameservers.
var AggressiveSelectors = []string{
	"default", "selector", "selector1", "selector2", "s", "s1", "s2", "sel",
	"mail", "smtp", "mx",
	"dkim", "k", "key", "google", "google1", "google2", "mta", "amazonses",
	"k1", "k2",
	"201608", "2019", "2020", "2021", "2022", "mail1", "mail2", "smtp1",
	"sendgrid", "mailgun", "mandrill", "zoho", "outlook", "office", "o365",
	"microsoft", "sparkpost",
	"postfix", "postmark", "mailchimp", "ses", "sendinblue", "elasticemail",
	"yandex", "icloud",
	"protonmail", "fastmail", "gws", "gapp", "domainkey", "email", "hosted",
	"secure", "info", "securemail",
}

// Candidates returns the selector list for the requested probing mode.
// The returned slice must not be modified.
func Candidates(aggressive bool) []string {
	if aggressive {
		return AggressiveSelectors
	}
	return DefaultSelectors
}
