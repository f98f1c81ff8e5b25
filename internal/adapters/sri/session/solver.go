package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	ctxutil "github.com/yamgooo/sri-client-go/internal/infrastructure/context"

	"github.com/yamgooo/sri-client-go/internal/adapters/sri"
	"github.com/yamgooo/sri-client-go/internal/core/result"
)

// Solver exchanges a captcha challenge plus its session for a short-lived
// authorization token.
type Solver struct {
	baseURL string
	client  sri.Doer
	log     *slog.Logger
}

// NewSolver creates a challenge solver against the captcha service.
func NewSolver(baseURL string, client sri.Doer, log *slog.Logger) *Solver {
	return &Solver{baseURL: baseURL, client: client, log: log}
}

// challengePayload is the JSON shape of a captcha challenge. The first entry
// of values identifies the puzzle answer.
type challengePayload struct {
	Values []string `json:"values"`
}

// Solve validates the challenge against the SRI, reusing the session's
// cookies, and returns the raw token the service emits. The token string is
// the decoded response body as-is; no further parsing happens here.
func (s *Solver) Solve(ctx context.Context, payload string, sess *Session) result.Result[string] {
	correlationID := ctxutil.GetCorrelationID(ctx)

	if strings.TrimSpace(payload) == "" {
		return result.Fail[string](result.BadRequest, "captcha challenge payload is empty")
	}

	var challenge challengePayload
	if err := json.Unmarshal([]byte(payload), &challenge); err != nil {
		s.log.Warn("Captcha payload is not valid JSON", "correlation_id", correlationID, "error", err)
		return result.Fail[string](result.BadRequest, "captcha challenge payload is not valid JSON")
	}
	if len(challenge.Values) == 0 {
		return result.Fail[string](result.BadRequest, "captcha challenge payload has no values")
	}
	answer := challenge.Values[0]
	if strings.TrimSpace(answer) == "" {
		return result.Fail[string](result.BadRequest, "captcha challenge payload has a blank answer value")
	}

	url := fmt.Sprintf("%s/validarCaptcha/%s?emitirToken=true", s.baseURL, answer)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result.Failf[string](result.ServerError, "failed to build captcha validation request: %v", err)
	}
	req.Header.Set("User-Agent", sri.UserAgent)
	sess.Attach(req)

	resp, err := s.client.Do(req)
	if err != nil {
		if sri.IsTimeout(err) {
			s.log.Warn("Captcha validation timed out", "correlation_id", correlationID, "error", err)
			return result.Fail[string](result.ServerError, "timeout while validating captcha")
		}
		s.log.Error("Captcha validation failed", "correlation_id", correlationID, "error", err)
		return result.Failf[string](result.ServerError, "failed to validate captcha: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn("Captcha validation returned non-2xx status",
			"correlation_id", correlationID,
			"status", resp.StatusCode,
		)
		return result.Failf[string](result.BadRequest, "captcha validation returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result.Failf[string](result.ServerError, "failed to read captcha token: %v", err)
	}

	return result.Ok(sri.DecodeBody(body))
}
