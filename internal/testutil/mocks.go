package testutil

import (
	"context"

	"github.com/yamgooo/sri-client-go/internal/adapters/sri/session"
	"github.com/yamgooo/sri-client-go/internal/core/document"
	"github.com/yamgooo/sri-client-go/internal/core/result"
	"github.com/yamgooo/sri-client-go/internal/core/taxpayer"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/config"
)

// MockSessionAcquirer is a mock session acquirer for testing.
type MockSessionAcquirer struct {
	AcquireFunc func(ctx context.Context) result.Result[*session.Session]
	Calls       int
}

func (m *MockSessionAcquirer) Acquire(ctx context.Context) result.Result[*session.Session] {
	m.Calls++
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx)
	}
	return result.Ok(&session.Session{Captcha: `{"values":["test"]}`})
}

// MockChallengeSolver is a mock captcha solver for testing.
type MockChallengeSolver struct {
	SolveFunc func(ctx context.Context, payload string, sess *session.Session) result.Result[string]
	Calls     int
}

func (m *MockChallengeSolver) Solve(ctx context.Context, payload string, sess *session.Session) result.Result[string] {
	m.Calls++
	if m.SolveFunc != nil {
		return m.SolveFunc(ctx, payload, sess)
	}
	return result.Ok(`{"Mensaje":"token","mensaje":"token"}`)
}

// MockRegistry is a mock registry client for testing.
type MockRegistry struct {
	ExistsFunc              func(ctx context.Context, identifier string) result.Result[bool]
	FetchTaxpayerFunc       func(ctx context.Context, ruc, token string, sess *session.Session) result.Result[taxpayer.Taxpayer]
	FetchEstablishmentsFunc func(ctx context.Context, ruc, token string, sess *session.Session) result.Result[[]taxpayer.Establishment]
	FetchNationalIDFunc     func(ctx context.Context, cedula, token string, sess *session.Session) result.Result[taxpayer.NationalIDRecord]
	ExistsCalls             int
}

func (m *MockRegistry) Exists(ctx context.Context, identifier string) result.Result[bool] {
	m.ExistsCalls++
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, identifier)
	}
	return result.Ok(true)
}

func (m *MockRegistry) FetchTaxpayer(ctx context.Context, ruc, token string, sess *session.Session) result.Result[taxpayer.Taxpayer] {
	if m.FetchTaxpayerFunc != nil {
		return m.FetchTaxpayerFunc(ctx, ruc, token, sess)
	}
	return result.Ok(taxpayer.Taxpayer{NumeroRuc: ruc})
}

func (m *MockRegistry) FetchEstablishments(ctx context.Context, ruc, token string, sess *session.Session) result.Result[[]taxpayer.Establishment] {
	if m.FetchEstablishmentsFunc != nil {
		return m.FetchEstablishmentsFunc(ctx, ruc, token, sess)
	}
	return result.Ok([]taxpayer.Establishment{})
}

func (m *MockRegistry) FetchNationalID(ctx context.Context, cedula, token string, sess *session.Session) result.Result[taxpayer.NationalIDRecord] {
	if m.FetchNationalIDFunc != nil {
		return m.FetchNationalIDFunc(ctx, cedula, token, sess)
	}
	return result.Ok(taxpayer.NationalIDRecord{Identificacion: cedula})
}

// MockSubmitter is a mock SOAP submitter for testing.
type MockSubmitter struct {
	ValidateFunc  func(ctx context.Context, signedXML []byte, env document.Environment, cfg config.ServiceConfiguration) document.ReceptionResult
	AuthorizeFunc func(ctx context.Context, accessKey string, env document.Environment, cfg config.ServiceConfiguration) document.AuthorizationResult
}

func (m *MockSubmitter) Validate(ctx context.Context, signedXML []byte, env document.Environment, cfg config.ServiceConfiguration) document.ReceptionResult {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, signedXML, env, cfg)
	}
	return document.ReceptionResult{Success: true, Status: document.StatusReceived}
}

func (m *MockSubmitter) Authorize(ctx context.Context, accessKey string, env document.Environment, cfg config.ServiceConfiguration) document.AuthorizationResult {
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, accessKey, env, cfg)
	}
	return document.AuthorizationResult{Success: true, Status: document.StatusAuthorized, AccessKey: accessKey}
}
