// Package registry queries the SRI taxpayer registry (catastro) and the
// national ID lookup service behind it.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	ctxutil "github.com/yamgooo/sri-client-go/internal/infrastructure/context"

	"github.com/yamgooo/sri-client-go/internal/adapters/sri"
	"github.com/yamgooo/sri-client-go/internal/adapters/sri/session"
	"github.com/yamgooo/sri-client-go/internal/core/result"
	"github.com/yamgooo/sri-client-go/internal/core/taxpayer"
)

// Client talks to the catastro and cédula REST services.
type Client struct {
	catastroBaseURL string
	cedulaBaseURL   string
	client          sri.Doer
	log             *slog.Logger
}

// NewClient creates a registry client.
func NewClient(catastroBaseURL, cedulaBaseURL string, client sri.Doer, log *slog.Logger) *Client {
	return &Client{
		catastroBaseURL: catastroBaseURL,
		cedulaBaseURL:   cedulaBaseURL,
		client:          client,
		log:             log,
	}
}

// Exists performs the lightweight existence probe for a RUC or cédula.
// Only the literal body "true" confirms existence; any other answer is a
// deliberate NotFound, never an error.
func (c *Client) Exists(ctx context.Context, identifier string) result.Result[bool] {
	correlationID := ctxutil.GetCorrelationID(ctx)

	reqURL := fmt.Sprintf("%s/ConsolidadoContribuyente/existePorNumeroRuc?numeroRuc=%s",
		c.catastroBaseURL, url.QueryEscape(identifier))

	body, status, err := c.get(ctx, reqURL, "", nil)
	if err != nil {
		if sri.IsTimeout(err) {
			return result.Fail[bool](result.ServerError, "timeout while checking taxpayer existence")
		}
		c.log.Error("Existence probe failed", "correlation_id", correlationID, "error", err)
		return result.Failf[bool](result.ServerError, "failed to check taxpayer existence: %v", err)
	}

	if status < 200 || status > 299 {
		c.log.Warn("Existence probe returned non-2xx status",
			"correlation_id", correlationID,
			"status", status,
		)
		return result.Fail[bool](result.NotFound, "el contribuyente no existe")
	}

	if sri.DecodeBody(body) != "true" {
		return result.Fail[bool](result.NotFound, "el contribuyente no existe")
	}

	return result.Ok(true)
}

// FetchTaxpayer retrieves the consolidated record for a RUC using the
// captcha-derived token. The bearer credential is the Mensaje field of the
// token JSON; the cédula flow uses a different key (see FetchNationalID).
func (c *Client) FetchTaxpayer(ctx context.Context, ruc, token string, sess *session.Session) result.Result[taxpayer.Taxpayer] {
	correlationID := ctxutil.GetCorrelationID(ctx)

	bearer, ok := bearerFromToken(token, "Mensaje")
	if !ok {
		return result.Fail[taxpayer.Taxpayer](result.BadRequest, "authorization token is not valid JSON or lacks the Mensaje field")
	}

	reqURL := fmt.Sprintf("%s/ConsolidadoContribuyente/obtenerPorNumerosRuc?&ruc=%s",
		c.catastroBaseURL, url.QueryEscape(ruc))

	body, status, err := c.get(ctx, reqURL, bearer, sess)
	if err != nil {
		if sri.IsTimeout(err) {
			return result.Fail[taxpayer.Taxpayer](result.ServerError, "timeout while fetching taxpayer record")
		}
		c.log.Error("Taxpayer fetch failed", "correlation_id", correlationID, "ruc", ruc, "error", err)
		return result.Failf[taxpayer.Taxpayer](result.ServerError, "failed to fetch taxpayer record: %v", err)
	}

	if status < 200 || status > 299 {
		c.log.Warn("Taxpayer fetch returned non-2xx status",
			"correlation_id", correlationID,
			"ruc", ruc,
			"status", status,
		)
		return result.Failf[taxpayer.Taxpayer](result.ServerError, "taxpayer service returned status %d", status)
	}

	var records []taxpayer.Taxpayer
	if err := json.Unmarshal([]byte(sri.DecodeBody(body)), &records); err != nil {
		c.log.Warn("Taxpayer response is not a valid record list",
			"correlation_id", correlationID,
			"ruc", ruc,
			"error", err,
		)
		return result.Fail[taxpayer.Taxpayer](result.BadRequest, "taxpayer response could not be parsed")
	}

	if len(records) == 0 {
		return result.Fail[taxpayer.Taxpayer](result.NotFound, "no taxpayer record found for the requested RUC")
	}
	// Defensive check against a misrouted response.
	if records[0].NumeroRuc != ruc {
		c.log.Warn("Taxpayer response identifier mismatch",
			"correlation_id", correlationID,
			"requested", ruc,
			"received", records[0].NumeroRuc,
		)
		return result.Fail[taxpayer.Taxpayer](result.NotFound, "returned taxpayer record does not match the requested RUC")
	}

	return result.Ok(records[0])
}

// FetchEstablishments retrieves the establishments of a RUC within the same
// session. Callers treat a failure here as an empty list; a taxpayer may
// legitimately have a primary record while establishment data is momentarily
// unavailable.
func (c *Client) FetchEstablishments(ctx context.Context, ruc, token string, sess *session.Session) result.Result[[]taxpayer.Establishment] {
	correlationID := ctxutil.GetCorrelationID(ctx)

	bearer, ok := bearerFromToken(token, "Mensaje")
	if !ok {
		return result.Fail[[]taxpayer.Establishment](result.BadRequest, "authorization token is not valid JSON or lacks the Mensaje field")
	}

	reqURL := fmt.Sprintf("%s/Establecimiento/consultarPorNumeroRuc?numeroRuc=%s",
		c.catastroBaseURL, url.QueryEscape(ruc))

	body, status, err := c.get(ctx, reqURL, bearer, sess)
	if err != nil {
		return result.Failf[[]taxpayer.Establishment](result.ServerError, "failed to fetch establishments: %v", err)
	}

	if status < 200 || status > 299 {
		return result.Failf[[]taxpayer.Establishment](result.ServerError, "establishment service returned status %d", status)
	}

	var establishments []taxpayer.Establishment
	if err := json.Unmarshal([]byte(sri.DecodeBody(body)), &establishments); err != nil {
		c.log.Warn("Establishment response could not be parsed",
			"correlation_id", correlationID,
			"ruc", ruc,
			"error", err,
		)
		return result.Fail[[]taxpayer.Establishment](result.BadRequest, "establishment response could not be parsed")
	}

	return result.Ok(establishments)
}

// FetchNationalID retrieves the civil registry record for a cédula. The
// service wraps its singleton object in list brackets inconsistently, so
// the brackets are stripped before parsing. The bearer credential here lives
// under the lowercase mensaje key of the token JSON, unlike the RUC flow.
func (c *Client) FetchNationalID(ctx context.Context, cedula, token string, sess *session.Session) result.Result[taxpayer.NationalIDRecord] {
	correlationID := ctxutil.GetCorrelationID(ctx)

	bearer, ok := bearerFromToken(token, "mensaje")
	if !ok {
		return result.Fail[taxpayer.NationalIDRecord](result.BadRequest, "authorization token is not valid JSON or lacks the mensaje field")
	}

	reqURL := fmt.Sprintf("%s/datosPersona?numeroIdentificacion=%s",
		c.cedulaBaseURL, url.QueryEscape(cedula))

	body, status, err := c.get(ctx, reqURL, bearer, sess)
	if err != nil {
		if sri.IsTimeout(err) {
			return result.Fail[taxpayer.NationalIDRecord](result.ServerError, "timeout while fetching national ID record")
		}
		c.log.Error("National ID fetch failed", "correlation_id", correlationID, "cedula", cedula, "error", err)
		return result.Failf[taxpayer.NationalIDRecord](result.ServerError, "failed to fetch national ID record: %v", err)
	}

	if status < 200 || status > 299 {
		c.log.Warn("National ID fetch returned non-2xx status",
			"correlation_id", correlationID,
			"status", status,
		)
		return result.Failf[taxpayer.NationalIDRecord](result.ServerError, "national ID service returned status %d", status)
	}

	payload := sri.StripBrackets(sri.DecodeBody(body))
	if payload == "" {
		return result.Fail[taxpayer.NationalIDRecord](result.NotFound, "no record found for the requested national ID")
	}

	var record taxpayer.NationalIDRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		c.log.Warn("National ID response could not be parsed",
			"correlation_id", correlationID,
			"error", err,
		)
		return result.Fail[taxpayer.NationalIDRecord](result.BadRequest, "national ID response could not be parsed")
	}

	if record.Identificacion == "" {
		return result.Fail[taxpayer.NationalIDRecord](result.NotFound, "no record found for the requested national ID")
	}

	return result.Ok(record)
}

// get issues an authenticated GET, attaching the session cookies and bearer
// header when present, and returns the raw body and status.
func (c *Client) get(ctx context.Context, reqURL, bearer string, sess *session.Session) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", sri.UserAgent)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	if sess != nil {
		sess.Attach(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// bearerFromToken extracts the bearer credential from the captcha token
// JSON. The field name differs between the RUC and cédula services, so the
// lookup is by exact key.
func bearerFromToken(token, key string) (string, bool) {
	var fields map[string]string
	if err := json.Unmarshal([]byte(token), &fields); err != nil {
		return "", false
	}
	bearer, ok := fields[key]
	if !ok || strings.TrimSpace(bearer) == "" {
		return "", false
	}
	return bearer, true
}
