package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yamgooo/sri-client-go/internal/core/audit"
	ctxutil "github.com/yamgooo/sri-client-go/internal/infrastructure/context"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/security"
)

// TracedClient wraps an HTTP client to provide request/response tracing for
// calls to SRI services. It logs every exchange, sanitizes sensitive data
// (cookies, tokens) and optionally persists an audit trail.
type TracedClient struct {
	client       *http.Client
	log          *slog.Logger
	auditRepo    audit.Repository
	service      string
	auditEnabled bool
	logReqBody   bool
	logRespBody  bool
	maxBodySize  int
}

// TracedClientConfig holds configuration for the traced HTTP client.
type TracedClientConfig struct {
	Timeout         time.Duration
	AuditEnabled    bool
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodySize     int
	MaxConnsPerHost int // Maximum connections per host (0 = default 20)
}

// NewTracedClient creates a new traced HTTP client with connection pooling.
// The SRI services are slow under load, so ResponseHeaderTimeout never drops
// below 60 seconds regardless of the configured client timeout.
func NewTracedClient(cfg *TracedClientConfig, log *slog.Logger, auditRepo audit.Repository, service string) *TracedClient {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 102400 // 100KB default
	}

	maxConnsPerHost := cfg.MaxConnsPerHost
	if maxConnsPerHost == 0 {
		maxConnsPerHost = 20
	}

	responseHeaderTimeout := cfg.Timeout
	if responseHeaderTimeout < 60*time.Second {
		responseHeaderTimeout = 60 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   maxConnsPerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: responseHeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &TracedClient{
		client: NewClient(&ClientConfig{
			Timeout:   cfg.Timeout,
			Transport: transport,
		}),
		log:          log,
		auditRepo:    auditRepo,
		service:      service,
		auditEnabled: cfg.AuditEnabled,
		logReqBody:   cfg.LogRequestBody,
		logRespBody:  cfg.LogResponseBody,
		maxBodySize:  cfg.MaxBodySize,
	}
}

// WithJar returns a copy of the client scoped to the given cookie jar.
// The copy shares the underlying transport (and its connection pool) but
// persists Set-Cookie headers across redirects into the jar. Session
// acquisition uses this so each SRI session gets its own cookie collection.
func (c *TracedClient) WithJar(jar http.CookieJar) *TracedClient {
	scoped := *c
	inner := *c.client
	inner.Jar = jar
	scoped.client = &inner
	return &scoped
}

// Timeout returns the configured per-request timeout.
func (c *TracedClient) Timeout() time.Duration {
	return c.client.Timeout
}

// Do executes an HTTP request with tracing and audit capabilities.
func (c *TracedClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	correlationID := ctxutil.GetCorrelationID(ctx)
	operation := c.extractOperation(req)
	start := time.Now()

	// Capture request body for logging/audit, then restore it.
	var requestBody []byte
	if req.Body != nil {
		var err error
		requestBody, err = io.ReadAll(req.Body)
		if err != nil {
			c.log.Error("Failed to read request body for tracing",
				"error", err,
				"correlation_id", correlationID,
			)
		}
		req.Body = io.NopCloser(bytes.NewBuffer(requestBody))
	}

	c.logRequest(correlationID, operation, req, requestBody)

	resp, err := c.client.Do(req)
	duration := time.Since(start)

	// Capture response body for logging/audit, then restore it for the caller.
	var responseBody []byte
	if resp != nil && resp.Body != nil {
		responseBody, _ = io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewBuffer(responseBody))
	}

	c.logResponse(correlationID, operation, req, resp, err, duration, responseBody)

	if c.auditEnabled && c.auditRepo != nil {
		if correlationID == "" {
			correlationID = fmt.Sprintf("audit-%d", time.Now().UnixNano())
			c.log.Warn("Missing correlation ID, generated fallback",
				"fallback_id", correlationID,
				"operation", operation,
			)
		}

		// Persist asynchronously with a Background context: the request
		// context is released as soon as the caller is done with the
		// response, which would cut off audit persistence.
		go func() {
			defer func() {
				if r := recover(); r != nil {
					c.log.Error("Panic in audit log persistence",
						"panic", r,
						"correlation_id", correlationID,
						"operation", operation,
						"service", c.service,
					)
				}
			}()

			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			c.persistAuditLog(saveCtx, correlationID, operation, req, resp, err, duration, requestBody, responseBody)
		}()
	}

	return resp, err
}

// logRequest logs the outgoing HTTP request.
func (c *TracedClient) logRequest(correlationID, operation string, req *http.Request, body []byte) {
	attrs := []any{
		"correlation_id", correlationID,
		"service", c.service,
		"operation", operation,
		"method", req.Method,
		"url", security.SanitizeURL(req.URL.String()),
	}

	if c.logReqBody && len(body) > 0 {
		sanitizedBody := security.SanitizeBody(body, c.maxBodySize)
		attrs = append(attrs, "request_body", string(sanitizedBody))
	}

	c.log.Info("sri_request", attrs...)
}

// logResponse logs the HTTP response received.
func (c *TracedClient) logResponse(correlationID, operation string, req *http.Request, resp *http.Response, err error, duration time.Duration, body []byte) {
	attrs := []any{
		"correlation_id", correlationID,
		"service", c.service,
		"operation", operation,
		"method", req.Method,
		"url", security.SanitizeURL(req.URL.String()),
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		attrs = append(attrs, "error", err.Error())
		c.log.Error("sri_request_failed", attrs...)
		return
	}

	attrs = append(attrs, "status", resp.StatusCode)
	attrs = append(attrs, "response_size_bytes", len(body))

	if c.logRespBody && len(body) > 0 {
		sanitizedBody := security.SanitizeBody(body, c.maxBodySize)
		attrs = append(attrs, "response_body", string(sanitizedBody))
	}

	switch {
	case resp.StatusCode >= 500:
		c.log.Error("sri_response", attrs...)
	case resp.StatusCode >= 400:
		c.log.Warn("sri_response", attrs...)
	default:
		c.log.Info("sri_response", attrs...)
	}
}

// persistAuditLog saves the request/response audit trail.
func (c *TracedClient) persistAuditLog(ctx context.Context, correlationID, operation string, req *http.Request, resp *http.Response, err error, duration time.Duration, requestBody, responseBody []byte) {
	call := audit.OutboundCall{
		CorrelationID:  correlationID,
		Service:        c.service,
		Operation:      operation,
		RequestMethod:  req.Method,
		RequestURL:     security.SanitizeURL(req.URL.String()),
		RequestHeaders: security.SanitizeHeaders(req.Header),
		DurationMs:     duration.Milliseconds(),
	}

	if len(requestBody) > 0 {
		call.RequestBody = security.SanitizeBody(requestBody, c.maxBodySize)
	}

	if resp != nil {
		status := resp.StatusCode
		call.ResponseStatus = &status
		call.ResponseHeaders = security.SanitizeHeaders(resp.Header)
		if len(responseBody) > 0 {
			call.ResponseBody = security.SanitizeBody(responseBody, c.maxBodySize)
		}
	}

	if err != nil {
		call.ErrorMessage = err.Error()
	}

	if err := c.auditRepo.Save(ctx, call); err != nil {
		c.log.Error("Failed to persist audit log",
			"error", err,
			"correlation_id", correlationID,
			"service", c.service,
			"operation", operation,
			"url", security.SanitizeURL(req.URL.String()),
		)
		return
	}

	c.log.Debug("Audit log persisted",
		"correlation_id", correlationID,
		"service", c.service,
		"operation", operation,
		"duration_ms", call.DurationMs,
	)
}

// extractOperation attempts to extract a meaningful operation name from the request.
func (c *TracedClient) extractOperation(req *http.Request) string {
	path := req.URL.Path
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) > 0 && parts[len(parts)-1] != "" {
		operation := parts[len(parts)-1]
		if len(operation) > 0 {
			operation = strings.ToUpper(operation[:1]) + operation[1:]
		}
		return operation
	}

	return fmt.Sprintf("%s_%s", req.Method, c.service)
}

// Client returns the underlying HTTP client for compatibility.
func (c *TracedClient) Client() *http.Client {
	return c.client
}
