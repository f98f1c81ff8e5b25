// Package document orchestrates signed document submission to the SRI:
// reception (validation) and authorization.
package document

import (
	"context"
	"log/slog"
	"sync"

	ctxutil "github.com/yamgooo/sri-client-go/internal/infrastructure/context"

	"github.com/yamgooo/sri-client-go/internal/adapters/sri/soap"
	"github.com/yamgooo/sri-client-go/internal/core/document"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/config"
)

// Submitter is the SOAP submission surface.
type Submitter interface {
	Validate(ctx context.Context, signedXML []byte, env document.Environment, cfg config.ServiceConfiguration) document.ReceptionResult
	Authorize(ctx context.Context, accessKey string, env document.Environment, cfg config.ServiceConfiguration) document.AuthorizationResult
}

var _ Submitter = (*soap.Submitter)(nil)

// Service exposes the document operations with a mutable retry/timeout
// policy. Configuration updates apply to future requests only; an in-flight
// request keeps the snapshot it started with.
type Service struct {
	submitter Submitter
	log       *slog.Logger

	mu  sync.RWMutex
	cfg config.ServiceConfiguration
}

// NewService creates the document service. An invalid configuration is a
// construction-time failure.
func NewService(submitter Submitter, cfg config.ServiceConfiguration, log *slog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{submitter: submitter, cfg: cfg, log: log}, nil
}

// Configuration returns the current retry/timeout policy.
func (s *Service) Configuration() config.ServiceConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfiguration replaces the policy for future requests after
// validating it.
func (s *Service) UpdateConfiguration(cfg config.ServiceConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.log.Info("Service configuration updated",
		"timeout_seconds", cfg.TimeoutSeconds,
		"max_retries", cfg.MaxRetries,
		"retry_delay_seconds", cfg.RetryDelaySeconds,
	)
	return nil
}

// ValidateDocument submits a signed document to the reception service of the
// selected environment.
func (s *Service) ValidateDocument(ctx context.Context, signedXML []byte, env document.Environment) document.ReceptionResult {
	ctx, correlationID := ctxutil.EnsureCorrelationID(ctx)
	cfg := s.Configuration()

	s.log.Info("Submitting document for validation",
		"correlation_id", correlationID,
		"environment", env.String(),
		"size_bytes", len(signedXML),
	)

	res := s.submitter.Validate(ctx, signedXML, env, cfg)

	if res.Success {
		s.log.Info("Document received",
			"correlation_id", correlationID,
			"access_key", res.AccessKey,
		)
	} else {
		s.log.Warn("Document returned",
			"correlation_id", correlationID,
			"access_key", res.AccessKey,
			"error", res.ErrorMessage,
		)
	}
	return res
}

// RequestAuthorization asks the authorization service of the selected
// environment about an access key.
func (s *Service) RequestAuthorization(ctx context.Context, accessKey string, env document.Environment) document.AuthorizationResult {
	ctx, correlationID := ctxutil.EnsureCorrelationID(ctx)
	cfg := s.Configuration()

	s.log.Info("Requesting document authorization",
		"correlation_id", correlationID,
		"environment", env.String(),
		"access_key", accessKey,
	)

	res := s.submitter.Authorize(ctx, accessKey, env, cfg)

	if res.Success {
		s.log.Info("Document authorized",
			"correlation_id", correlationID,
			"authorization_number", res.AuthorizationNumber,
		)
	} else {
		s.log.Warn("Document not authorized",
			"correlation_id", correlationID,
			"access_key", accessKey,
			"error", res.ErrorMessage,
		)
	}
	return res
}
