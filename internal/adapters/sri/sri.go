// Package sri holds what every SRI adapter shares: the outbound HTTP
// contract and the normalization of the remote system's wire quirks.
package sri

import (
	"html"
	"net/http"
	"strings"
)

// UserAgent is sent verbatim on every outbound request. The SRI's bot
// filtering rejects unknown clients, so this legacy browser string must not
// change.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/51.0.2704.103 Safari/537.36"

// Doer is the outbound HTTP surface the SRI adapters need. Both
// *http.Client and the infrastructure TracedClient satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DecodeBody normalizes a REST response body: the captcha and registry
// services double-encode HTML entities, so two unescape passes are needed
// before JSON parsing. SOAP replies are parsed as-is.
func DecodeBody(body []byte) string {
	return html.UnescapeString(html.UnescapeString(string(body)))
}

// StripBrackets removes the enclosing list brackets the cédula service
// inconsistently wraps around its singleton JSON object.
func StripBrackets(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.TrimSpace(s)
}

// IsTimeout reports whether an HTTP client error looks like a timeout, which
// callers classify separately from other transport failures.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "Client.Timeout")
}
