package soap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	ctxutil "github.com/yamgooo/sri-client-go/internal/infrastructure/context"

	"github.com/yamgooo/sri-client-go/internal/adapters/sri"
	"github.com/yamgooo/sri-client-go/internal/core/document"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/config"
)

// Endpoints selects the reception and authorization URLs per environment.
type Endpoints struct {
	ReceptionTest           string
	ReceptionProduction     string
	AuthorizationTest       string
	AuthorizationProduction string
}

func (e Endpoints) reception(env document.Environment) string {
	if env == document.Production {
		return e.ReceptionProduction
	}
	return e.ReceptionTest
}

func (e Endpoints) authorization(env document.Environment) string {
	if env == document.Production {
		return e.AuthorizationProduction
	}
	return e.AuthorizationTest
}

// Submitter sends signed documents to the SRI web services. Each operation
// is build-envelope, send-with-retry, parse-and-classify; retry covers only
// the transport step, never classification of a 2xx reply.
type Submitter struct {
	endpoints Endpoints
	client    sri.Doer
	log       *slog.Logger
}

// NewSubmitter creates a document submitter.
func NewSubmitter(endpoints Endpoints, client sri.Doer, log *slog.Logger) *Submitter {
	return &Submitter{endpoints: endpoints, client: client, log: log}
}

// Validate submits a signed document to the reception service and classifies
// the answer: the literal estado RECIBIDA is success, anything else is
// DEVUELTA. A document without a readable claveAcceso is returned without
// touching the network.
func (s *Submitter) Validate(ctx context.Context, signedXML []byte, env document.Environment, cfg config.ServiceConfiguration) document.ReceptionResult {
	correlationID := ctxutil.GetCorrelationID(ctx)
	res := document.ReceptionResult{
		Status:      document.StatusReturned,
		ProcessedAt: time.Now(),
		RequestID:   correlationID,
	}

	accessKey := extractAccessKey(signedXML)
	if accessKey == "" {
		res.ErrorMessage = "signed document is not well-formed XML or lacks a claveAcceso element"
		return res
	}
	res.AccessKey = accessKey

	envelope, err := buildReceptionEnvelope(signedXML)
	if err != nil {
		res.ErrorMessage = fmt.Sprintf("failed to build reception envelope: %v", err)
		return res
	}

	body, failMsg := s.sendWithRetry(ctx, s.endpoints.reception(env), envelope, cfg)
	if failMsg != "" {
		res.ErrorMessage = failMsg
		return res
	}

	reply, err := parseReceptionReply(body)
	if err != nil {
		s.log.Warn("Reception reply could not be parsed",
			"correlation_id", correlationID,
			"error", err,
		)
		res.ErrorMessage = "reception reply could not be parsed"
		return res
	}

	res.Messages = reply.messages
	if reply.status == string(document.StatusReceived) {
		res.Success = true
		res.Status = document.StatusReceived
		return res
	}

	res.Status = document.StatusReturned
	if msg := joinMessages(reply.messages); msg != "" {
		res.ErrorMessage = msg
	} else {
		res.ErrorMessage = fmt.Sprintf("document was not received (estado %q)", reply.status)
	}
	return res
}

// Authorize asks the authorization service about an access key. The literal
// estado AUTORIZADO on the first autorizacion entry is success; a missing
// container and a container with zero entries produce distinct diagnostics,
// both NO AUTORIZADO.
func (s *Submitter) Authorize(ctx context.Context, accessKey string, env document.Environment, cfg config.ServiceConfiguration) document.AuthorizationResult {
	correlationID := ctxutil.GetCorrelationID(ctx)
	res := document.AuthorizationResult{
		Status:      document.StatusNotAuthorized,
		AccessKey:   accessKey,
		ProcessedAt: time.Now(),
		RequestID:   correlationID,
	}

	envelope, err := buildAuthorizationEnvelope(accessKey)
	if err != nil {
		res.ErrorMessage = fmt.Sprintf("failed to build authorization envelope: %v", err)
		return res
	}

	body, failMsg := s.sendWithRetry(ctx, s.endpoints.authorization(env), envelope, cfg)
	if failMsg != "" {
		res.ErrorMessage = failMsg
		return res
	}

	reply, err := parseAuthorizationReply(body)
	if err != nil {
		s.log.Warn("Authorization reply could not be parsed",
			"correlation_id", correlationID,
			"error", err,
		)
		res.ErrorMessage = "authorization reply could not be parsed"
		return res
	}

	if !reply.containerFound {
		res.ErrorMessage = "invalid response format: authorization response container not found"
		return res
	}
	if reply.entryCount == 0 {
		res.ErrorMessage = "no authorization data found for the requested access key"
		return res
	}

	res.DocumentCount = reply.entryCount
	res.AuthorizationNumber = reply.authorizationNumber
	res.AuthorizationDate = reply.authorizationDate
	res.Environment = reply.environment
	res.DocumentContent = reply.documentContent
	res.Messages = reply.messages

	if reply.status == string(document.StatusAuthorized) {
		res.Success = true
		res.Status = document.StatusAuthorized
		return res
	}

	res.Status = document.StatusNotAuthorized
	if msg := joinMessages(reply.messages); msg != "" {
		res.ErrorMessage = msg
	} else {
		res.ErrorMessage = fmt.Sprintf("document was not authorized (estado %q)", reply.status)
	}
	return res
}

// sendWithRetry POSTs a SOAP envelope, retrying transport failures (network
// errors, timeouts and non-2xx replies) up to cfg.MaxRetries attempts with
// cfg.RetryDelay between them. Each attempt is bounded by cfg.Timeout, so a
// reconfigured policy applies to every subsequent call. The reply body is
// returned verbatim; escaped content inside it is the XML parser's business.
func (s *Submitter) sendWithRetry(ctx context.Context, url string, envelope []byte, cfg config.ServiceConfiguration) (string, string) {
	correlationID := ctxutil.GetCorrelationID(ctx)

	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(envelope))
		if err != nil {
			cancel()
			return "", fmt.Sprintf("failed to build request: %v", err)
		}
		req.Header.Set("Content-Type", "text/xml")
		req.Header.Set("SOAPAction", "")
		req.Header.Set("User-Agent", sri.UserAgent)

		resp, err := s.client.Do(req)
		if err == nil {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			cancel()

			if resp.StatusCode >= 200 && resp.StatusCode <= 299 && readErr == nil {
				return string(body), ""
			}

			s.log.Warn("SRI web service returned a retryable reply",
				"correlation_id", correlationID,
				"url", url,
				"status", resp.StatusCode,
				"attempt", attempt,
				"max_attempts", attempts,
			)
		} else {
			cancel()
			s.log.Warn("SRI web service request failed",
				"correlation_id", correlationID,
				"url", url,
				"error", err,
				"is_timeout", sri.IsTimeout(err),
				"attempt", attempt,
				"max_attempts", attempts,
			)
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return "", fmt.Sprintf("context cancelled during retry: %v", ctx.Err())
			case <-time.After(cfg.RetryDelay()):
			}
		}
	}

	s.log.Error("All attempts to contact the SRI web service failed",
		"correlation_id", correlationID,
		"url", url,
		"attempts", attempts,
	)
	return "", fmt.Sprintf("all %d attempts to contact the SRI web service failed", attempts)
}
