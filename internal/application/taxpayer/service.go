// Package taxpayer orchestrates the captcha-gated SRI lookups: by RUC (with
// establishment composition) and by cédula.
package taxpayer

import (
	"context"
	"log/slog"

	ctxutil "github.com/yamgooo/sri-client-go/internal/infrastructure/context"

	"github.com/yamgooo/sri-client-go/internal/adapters/sri/registry"
	"github.com/yamgooo/sri-client-go/internal/adapters/sri/session"
	"github.com/yamgooo/sri-client-go/internal/core/result"
	"github.com/yamgooo/sri-client-go/internal/core/taxpayer"
)

// SessionAcquirer obtains a fresh single-use session.
type SessionAcquirer interface {
	Acquire(ctx context.Context) result.Result[*session.Session]
}

// ChallengeSolver exchanges a challenge and session for a token.
type ChallengeSolver interface {
	Solve(ctx context.Context, payload string, sess *session.Session) result.Result[string]
}

// Registry is the catastro/cédula query surface.
type Registry interface {
	Exists(ctx context.Context, identifier string) result.Result[bool]
	FetchTaxpayer(ctx context.Context, ruc, token string, sess *session.Session) result.Result[taxpayer.Taxpayer]
	FetchEstablishments(ctx context.Context, ruc, token string, sess *session.Session) result.Result[[]taxpayer.Establishment]
	FetchNationalID(ctx context.Context, cedula, token string, sess *session.Session) result.Result[taxpayer.NationalIDRecord]
}

// Service runs the lookup state machines. Each public operation mints a
// correlation ID at entry and threads it through every step.
type Service struct {
	acquirer SessionAcquirer
	solver   ChallengeSolver
	registry Registry
	log      *slog.Logger
}

// NewService creates the lookup service.
func NewService(acquirer SessionAcquirer, solver ChallengeSolver, reg Registry, log *slog.Logger) *Service {
	return &Service{acquirer: acquirer, solver: solver, registry: reg, log: log}
}

var _ Registry = (*registry.Client)(nil)

// GetByRUC looks up the complete taxpayer record for a 13-digit RUC:
// validate, probe existence, acquire session, solve captcha, fetch record,
// then fetch establishments. The establishment fetch is tolerant: its
// failure degrades to an empty list instead of failing the lookup.
func (s *Service) GetByRUC(ctx context.Context, ruc string) (res result.Result[taxpayer.CompleteTaxpayer]) {
	ctx, correlationID := ctxutil.EnsureCorrelationID(ctx)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic during RUC lookup", "correlation_id", correlationID, "panic", r)
			res = result.Fail[taxpayer.CompleteTaxpayer](result.ServerError, "unexpected error during RUC lookup")
		}
	}()

	if !taxpayer.ValidRUC(ruc) {
		return result.Fail[taxpayer.CompleteTaxpayer](result.BadRequest, "RUC must be exactly 13 digits")
	}

	if probe := s.registry.Exists(ctx, ruc); !probe.Success {
		s.log.Info("RUC lookup stopped at existence probe",
			"correlation_id", correlationID,
			"ruc", ruc,
			"status", probe.Status.String(),
		)
		return result.Propagate[taxpayer.CompleteTaxpayer](probe)
	}

	sess, token, fail := s.authenticate(ctx, correlationID)
	if fail != nil {
		return result.Propagate[taxpayer.CompleteTaxpayer](*fail)
	}

	record := s.registry.FetchTaxpayer(ctx, ruc, token, sess)
	if !record.Success {
		s.log.Warn("RUC record fetch failed",
			"correlation_id", correlationID,
			"ruc", ruc,
			"status", record.Status.String(),
			"message", record.Message,
		)
		return result.Propagate[taxpayer.CompleteTaxpayer](record)
	}

	var establishments []taxpayer.Establishment
	if est := s.registry.FetchEstablishments(ctx, ruc, token, sess); est.Success {
		establishments = est.Data
	} else {
		// Tolerated: the taxpayer record stands on its own.
		s.log.Warn("Establishment fetch failed, continuing with empty list",
			"correlation_id", correlationID,
			"ruc", ruc,
			"message", est.Message,
		)
	}

	s.log.Info("RUC lookup completed",
		"correlation_id", correlationID,
		"ruc", ruc,
		"establishments", len(establishments),
	)
	return result.Ok(taxpayer.Compose(record.Data, establishments))
}

// GetByCedula looks up the civil registry record for a 10-digit cédula.
// Same shape as the RUC flow without the secondary fetch.
func (s *Service) GetByCedula(ctx context.Context, cedula string) (res result.Result[taxpayer.NationalIDRecord]) {
	ctx, correlationID := ctxutil.EnsureCorrelationID(ctx)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic during cédula lookup", "correlation_id", correlationID, "panic", r)
			res = result.Fail[taxpayer.NationalIDRecord](result.ServerError, "unexpected error during cédula lookup")
		}
	}()

	if !taxpayer.ValidCedula(cedula) {
		return result.Fail[taxpayer.NationalIDRecord](result.BadRequest, "cédula must be exactly 10 digits")
	}

	if probe := s.registry.Exists(ctx, cedula); !probe.Success {
		s.log.Info("Cédula lookup stopped at existence probe",
			"correlation_id", correlationID,
			"status", probe.Status.String(),
		)
		return result.Propagate[taxpayer.NationalIDRecord](probe)
	}

	sess, token, fail := s.authenticate(ctx, correlationID)
	if fail != nil {
		return result.Propagate[taxpayer.NationalIDRecord](*fail)
	}

	record := s.registry.FetchNationalID(ctx, cedula, token, sess)
	if !record.Success {
		s.log.Warn("Cédula record fetch failed",
			"correlation_id", correlationID,
			"status", record.Status.String(),
			"message", record.Message,
		)
		return record
	}

	s.log.Info("Cédula lookup completed", "correlation_id", correlationID)
	return record
}

// authenticate runs the session + captcha steps shared by both flows. The
// returned session is single-use: it backs exactly one data fetch.
func (s *Service) authenticate(ctx context.Context, correlationID string) (*session.Session, string, *result.Result[string]) {
	sess := s.acquirer.Acquire(ctx)
	if !sess.Success {
		s.log.Error("Session acquisition failed",
			"correlation_id", correlationID,
			"message", sess.Message,
		)
		fail := result.Failf[string](result.ServerError, "Failed to obtain cookies: %s", sess.Message)
		return nil, "", &fail
	}

	token := s.solver.Solve(ctx, sess.Data.Captcha, sess.Data)
	if !token.Success {
		s.log.Error("Captcha solve failed",
			"correlation_id", correlationID,
			"status", token.Status.String(),
			"message", token.Message,
		)
		fail := result.Failf[string](result.BadRequest, "Failed to validate captcha: %s", token.Message)
		return nil, "", &fail
	}

	return sess.Data, token.Data, nil
}
