package context

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// CorrelationIDKey is the context key for correlation IDs.
const CorrelationIDKey contextKey = "correlation_id"

// NewCorrelationID generates a fresh correlation ID. One is minted at the
// entry of every public SRI operation and threaded through each step so the
// captcha, token and fetch calls of a single lookup can be cross-referenced.
func NewCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// GetCorrelationID retrieves the correlation ID from the context.
// Returns an empty string if no correlation ID is present.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// EnsureCorrelationID returns the context's correlation ID, minting and
// attaching a new one when absent.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if id := GetCorrelationID(ctx); id != "" {
		return ctx, id
	}
	id := NewCorrelationID()
	return WithCorrelationID(ctx, id), id
}
