package postgres

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/yamgooo/sri-client-go/internal/core/audit"
)

// Note: exercising Save/FindByCorrelationID requires a PostgreSQL database;
// those paths are covered by integration environments. These tests validate
// structure only.

func TestRepositoryImplementsInterface(t *testing.T) {
	var _ audit.Repository = (*Repository)(nil)
}

func TestOutboundCallStructure(t *testing.T) {
	status := 200
	call := audit.OutboundCall{
		CorrelationID: "test-123",
		Service:       "sri-catastro",
		Operation:     "ExistePorNumeroRuc",
		RequestMethod: "GET",
		RequestURL:    "https://srienlinea.sri.gob.ec/rest/existePorNumeroRuc?numeroRuc=1790012345001",
		RequestHeaders: map[string]string{
			"User-Agent": "Mozilla/5.0",
		},
		ResponseStatus: &status,
		ResponseHeaders: map[string]string{
			"Content-Type": "application/json",
		},
		ResponseBody: json.RawMessage(`{"_raw":"true","_format":"text"}`),
		DurationMs:   150,
		CreatedAt:    time.Now(),
	}

	headers, err := json.Marshal(call.RequestHeaders)
	if err != nil {
		t.Fatalf("marshal request headers: %v", err)
	}
	var roundTrip map[string]string
	if err := json.Unmarshal(headers, &roundTrip); err != nil {
		t.Fatalf("unmarshal request headers: %v", err)
	}
	if roundTrip["User-Agent"] != "Mozilla/5.0" {
		t.Errorf("expected User-Agent to survive round trip, got %q", roundTrip["User-Agent"])
	}
}
