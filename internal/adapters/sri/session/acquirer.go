package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/cookiejar"

	ctxutil "github.com/yamgooo/sri-client-go/internal/infrastructure/context"
	httpx "github.com/yamgooo/sri-client-go/internal/infrastructure/http"

	"github.com/yamgooo/sri-client-go/internal/adapters/sri"
	"github.com/yamgooo/sri-client-go/internal/core/result"
)

// Acquirer obtains fresh SRI sessions from the captcha issuance endpoint.
type Acquirer struct {
	baseURL string
	client  *httpx.TracedClient
	log     *slog.Logger
}

// NewAcquirer creates a session acquirer against the captcha service.
func NewAcquirer(baseURL string, client *httpx.TracedClient, log *slog.Logger) *Acquirer {
	return &Acquirer{baseURL: baseURL, client: client, log: log}
}

// Acquire requests a new captcha challenge, collecting the session cookies
// the SRI sets along the way (redirects included). The response body is the
// opaque challenge payload. No retry happens here; the caller decides.
func (a *Acquirer) Acquire(ctx context.Context) result.Result[*Session] {
	correlationID := ctxutil.GetCorrelationID(ctx)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return result.Failf[*Session](result.ServerError, "failed to create cookie jar: %v", err)
	}

	nonce, err := cacheBustingNonce()
	if err != nil {
		return result.Failf[*Session](result.ServerError, "failed to generate nonce: %v", err)
	}

	url := fmt.Sprintf("%s/generarCaptcha?r=%s", a.baseURL, nonce)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result.Failf[*Session](result.ServerError, "failed to build captcha request: %v", err)
	}
	req.Header.Set("User-Agent", sri.UserAgent)

	resp, err := a.client.WithJar(jar).Do(req)
	if err != nil {
		if sri.IsTimeout(err) {
			a.log.Warn("Captcha request timed out", "correlation_id", correlationID, "error", err)
			return result.Fail[*Session](result.ServerError, "timeout while requesting captcha challenge")
		}
		a.log.Error("Captcha request failed", "correlation_id", correlationID, "error", err)
		return result.Failf[*Session](result.ServerError, "failed to request captcha challenge: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.log.Warn("Captcha service returned non-2xx status",
			"correlation_id", correlationID,
			"status", resp.StatusCode,
		)
		return result.Failf[*Session](result.ServerError, "captcha service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result.Failf[*Session](result.ServerError, "failed to read captcha payload: %v", err)
	}

	return result.Ok(&Session{Jar: jar, Captcha: sri.DecodeBody(body)})
}

// cacheBustingNonce produces a random 6-digit value. It only defeats caching
// on the captcha endpoint; it is not a security token.
func cacheBustingNonce() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
