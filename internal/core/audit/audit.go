package audit

import (
	"context"
	"encoding/json"
	"time"
)

// OutboundCall is an audit record for a single HTTP exchange with an SRI
// service. It captures enough request/response detail to reconstruct what
// was sent and received during a lookup or document submission.
type OutboundCall struct {
	ID              int64
	CorrelationID   string
	Service         string // e.g. "sri-captcha", "sri-catastro", "sri-comprobantes"
	Operation       string
	RequestMethod   string
	RequestURL      string
	RequestHeaders  map[string]string
	RequestBody     json.RawMessage
	ResponseStatus  *int
	ResponseHeaders map[string]string
	ResponseBody    json.RawMessage
	DurationMs      int64
	ErrorMessage    string
	CreatedAt       time.Time
}

// Repository persists and retrieves outbound call records.
type Repository interface {
	// Save persists an audit record.
	Save(ctx context.Context, call OutboundCall) error

	// FindByCorrelationID retrieves every call made under one correlation ID,
	// oldest first. Useful to replay a full lookup (captcha, token, fetches).
	FindByCorrelationID(ctx context.Context, correlationID string) ([]OutboundCall, error)
}
