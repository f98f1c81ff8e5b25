// Package session obtains captcha-gated SRI sessions and exchanges their
// challenges for short-lived authorization tokens.
package session

import (
	"net/http"
	"net/url"
)

// Session is a single-use remote session: the cookie collection the SRI tied
// the captcha to, plus the raw challenge payload. It is consumed by exactly
// one challenge solve and one data fetch, then discarded; the SRI scopes
// captcha validity to the session, so reuse is not supported.
type Session struct {
	Jar     http.CookieJar
	Captcha string
}

// Cookies returns the session cookies applicable to the given URL.
func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	if s == nil || s.Jar == nil {
		return nil
	}
	return s.Jar.Cookies(u)
}

// Attach copies the session cookies onto an outbound request.
func (s *Session) Attach(req *http.Request) {
	for _, cookie := range s.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
}
