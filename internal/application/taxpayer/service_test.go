package taxpayer

import (
	"context"
	"strings"
	"testing"

	"github.com/yamgooo/sri-client-go/internal/adapters/sri/session"
	"github.com/yamgooo/sri-client-go/internal/core/result"
	"github.com/yamgooo/sri-client-go/internal/core/taxpayer"
	"github.com/yamgooo/sri-client-go/internal/testutil"
)

const (
	testRUC    = "1790016919001"
	testCedula = "1712345678"
)

func newTestService(acquirer *testutil.MockSessionAcquirer, solver *testutil.MockChallengeSolver, reg *testutil.MockRegistry) *Service {
	if acquirer == nil {
		acquirer = &testutil.MockSessionAcquirer{}
	}
	if solver == nil {
		solver = &testutil.MockChallengeSolver{}
	}
	if reg == nil {
		reg = &testutil.MockRegistry{}
	}
	return NewService(acquirer, solver, reg, testutil.NewNullLogger())
}

func TestService_GetByRUC(t *testing.T) {
	reg := &testutil.MockRegistry{
		FetchTaxpayerFunc: func(_ context.Context, ruc, _ string, _ *session.Session) result.Result[taxpayer.Taxpayer] {
			return result.Ok(taxpayer.Taxpayer{NumeroRuc: ruc, RazonSocial: "EMPRESA S.A."})
		},
		FetchEstablishmentsFunc: func(_ context.Context, _, _ string, _ *session.Session) result.Result[[]taxpayer.Establishment] {
			return result.Ok([]taxpayer.Establishment{{DireccionCompleta: "AV. AMAZONAS", NombreFantasiaComercial: "MATRIZ"}})
		},
	}
	service := newTestService(nil, nil, reg)

	res := service.GetByRUC(context.Background(), testRUC)
	if !res.Success {
		t.Fatalf("expected success, got %s: %s", res.Status, res.Message)
	}
	if res.Data.Contribuyente.RazonSocial != "EMPRESA S.A." {
		t.Errorf("unexpected record: %+v", res.Data.Contribuyente)
	}
	if res.Data.Contribuyente.Direccion != "AV. AMAZONAS" {
		t.Error("expected establishment-derived address on the parent record")
	}
	if len(res.Data.Establecimientos) != 1 {
		t.Errorf("expected 1 establishment, got %d", len(res.Data.Establecimientos))
	}
}

func TestService_GetByRUC_InvalidFormatSkipsNetwork(t *testing.T) {
	acquirer := &testutil.MockSessionAcquirer{}
	reg := &testutil.MockRegistry{}
	service := newTestService(acquirer, nil, reg)

	for _, ruc := range []string{"", "123", "17900169190011", "179001691900a"} {
		res := service.GetByRUC(context.Background(), ruc)
		if res.Success || res.Status != result.BadRequest {
			t.Errorf("GetByRUC(%q): expected BAD_REQUEST, got %s", ruc, res.Status)
		}
		if res.Message != "RUC must be exactly 13 digits" {
			t.Errorf("unexpected message: %q", res.Message)
		}
	}
	if acquirer.Calls != 0 || reg.ExistsCalls != 0 {
		t.Error("expected no remote calls for invalid input")
	}
}

func TestService_GetByRUC_NonExistentStopsEarly(t *testing.T) {
	acquirer := &testutil.MockSessionAcquirer{}
	reg := &testutil.MockRegistry{
		ExistsFunc: func(_ context.Context, _ string) result.Result[bool] {
			return result.Fail[bool](result.NotFound, "el contribuyente no existe")
		},
	}
	service := newTestService(acquirer, nil, reg)

	res := service.GetByRUC(context.Background(), testRUC)
	if res.Success || res.Status != result.NotFound {
		t.Fatalf("expected NOT_FOUND, got %s", res.Status)
	}
	if res.Message != "el contribuyente no existe" {
		t.Errorf("unexpected message: %q", res.Message)
	}
	if acquirer.Calls != 0 {
		t.Error("expected no session acquisition after a failed existence probe")
	}
}

func TestService_GetByRUC_SessionFailurePrefix(t *testing.T) {
	acquirer := &testutil.MockSessionAcquirer{
		AcquireFunc: func(_ context.Context) result.Result[*session.Session] {
			return result.Fail[*session.Session](result.ServerError, "timeout while requesting captcha challenge")
		},
	}
	service := newTestService(acquirer, nil, nil)

	res := service.GetByRUC(context.Background(), testRUC)
	if res.Success || res.Status != result.ServerError {
		t.Fatalf("expected SERVER_ERROR, got %s", res.Status)
	}
	if res.Message != "Failed to obtain cookies: timeout while requesting captcha challenge" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestService_GetByRUC_CaptchaFailurePrefix(t *testing.T) {
	solver := &testutil.MockChallengeSolver{
		SolveFunc: func(_ context.Context, _ string, _ *session.Session) result.Result[string] {
			return result.Fail[string](result.BadRequest, "captcha validation returned status 403")
		},
	}
	service := newTestService(nil, solver, nil)

	res := service.GetByRUC(context.Background(), testRUC)
	if res.Success || res.Status != result.BadRequest {
		t.Fatalf("expected BAD_REQUEST, got %s", res.Status)
	}
	if res.Message != "Failed to validate captcha: captcha validation returned status 403" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestService_GetByRUC_EstablishmentFailureTolerated(t *testing.T) {
	reg := &testutil.MockRegistry{
		FetchTaxpayerFunc: func(_ context.Context, ruc, _ string, _ *session.Session) result.Result[taxpayer.Taxpayer] {
			return result.Ok(taxpayer.Taxpayer{NumeroRuc: ruc, Direccion: "DIRECCION ORIGINAL"})
		},
		FetchEstablishmentsFunc: func(_ context.Context, _, _ string, _ *session.Session) result.Result[[]taxpayer.Establishment] {
			return result.Fail[[]taxpayer.Establishment](result.ServerError, "establishment service returned status 500")
		},
	}
	service := newTestService(nil, nil, reg)

	res := service.GetByRUC(context.Background(), testRUC)
	if !res.Success {
		t.Fatalf("expected success despite establishment failure, got %s: %s", res.Status, res.Message)
	}
	if len(res.Data.Establecimientos) != 0 {
		t.Errorf("expected empty establishment list, got %d", len(res.Data.Establecimientos))
	}
	if res.Data.Contribuyente.Direccion != "DIRECCION ORIGINAL" {
		t.Error("expected parent record untouched when establishments are unavailable")
	}
}

func TestService_GetByRUC_PrimaryFetchFailureIsStrict(t *testing.T) {
	reg := &testutil.MockRegistry{
		FetchTaxpayerFunc: func(_ context.Context, _, _ string, _ *session.Session) result.Result[taxpayer.Taxpayer] {
			return result.Fail[taxpayer.Taxpayer](result.NotFound, "no taxpayer record found for the requested RUC")
		},
	}
	service := newTestService(nil, nil, reg)

	res := service.GetByRUC(context.Background(), testRUC)
	if res.Success || res.Status != result.NotFound {
		t.Fatalf("expected NOT_FOUND, got %s", res.Status)
	}
}

func TestService_GetByRUC_PanicBecomesServerError(t *testing.T) {
	reg := &testutil.MockRegistry{
		FetchTaxpayerFunc: func(_ context.Context, _, _ string, _ *session.Session) result.Result[taxpayer.Taxpayer] {
			panic("boom")
		},
	}
	service := newTestService(nil, nil, reg)

	res := service.GetByRUC(context.Background(), testRUC)
	if res.Success || res.Status != result.ServerError {
		t.Fatalf("expected SERVER_ERROR after panic, got %s", res.Status)
	}
	if !strings.Contains(res.Message, "unexpected error") {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestService_GetByCedula(t *testing.T) {
	reg := &testutil.MockRegistry{
		FetchNationalIDFunc: func(_ context.Context, cedula, _ string, _ *session.Session) result.Result[taxpayer.NationalIDRecord] {
			return result.Ok(taxpayer.NationalIDRecord{Identificacion: cedula, NombreCompleto: "PEREZ JUAN"})
		},
	}
	service := newTestService(nil, nil, reg)

	res := service.GetByCedula(context.Background(), testCedula)
	if !res.Success {
		t.Fatalf("expected success, got %s: %s", res.Status, res.Message)
	}
	if res.Data.NombreCompleto != "PEREZ JUAN" {
		t.Errorf("unexpected record: %+v", res.Data)
	}
}

func TestService_GetByCedula_InvalidFormatSkipsNetwork(t *testing.T) {
	acquirer := &testutil.MockSessionAcquirer{}
	reg := &testutil.MockRegistry{}
	service := newTestService(acquirer, nil, reg)

	for _, cedula := range []string{"", "171234567", testRUC, "17123456x8"} {
		res := service.GetByCedula(context.Background(), cedula)
		if res.Success || res.Status != result.BadRequest {
			t.Errorf("GetByCedula(%q): expected BAD_REQUEST, got %s", cedula, res.Status)
		}
		if res.Message != "cédula must be exactly 10 digits" {
			t.Errorf("unexpected message: %q", res.Message)
		}
	}
	if acquirer.Calls != 0 || reg.ExistsCalls != 0 {
		t.Error("expected no remote calls for invalid input")
	}
}
