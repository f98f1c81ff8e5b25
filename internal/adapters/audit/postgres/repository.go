// Package postgres persists the outbound call audit trail.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/yamgooo/sri-client-go/internal/core/audit"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the audit.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewRepository creates a new PostgreSQL audit repository.
func NewRepository(pool *pgxpool.Pool, log *slog.Logger) audit.Repository {
	return &Repository{pool: pool, log: log}
}

// Save persists an audit record.
func (r *Repository) Save(ctx context.Context, call audit.OutboundCall) error {
	query := `
		INSERT INTO sri_outbound_call (
			correlation_id, service, operation, request_method, request_url,
			request_headers, request_body, response_status, response_headers,
			response_body, duration_ms, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	requestHeadersJSON, err := json.Marshal(call.RequestHeaders)
	if err != nil {
		return fmt.Errorf("marshal request headers: %w", err)
	}
	responseHeadersJSON, err := json.Marshal(call.ResponseHeaders)
	if err != nil {
		return fmt.Errorf("marshal response headers: %w", err)
	}

	var requestBodyJSON, responseBodyJSON any
	if len(call.RequestBody) > 0 {
		requestBodyJSON = call.RequestBody
	}
	if len(call.ResponseBody) > 0 {
		responseBodyJSON = call.ResponseBody
	}

	_, err = r.pool.Exec(ctx, query,
		call.CorrelationID,
		call.Service,
		call.Operation,
		call.RequestMethod,
		call.RequestURL,
		requestHeadersJSON,
		requestBodyJSON,
		call.ResponseStatus,
		responseHeadersJSON,
		responseBodyJSON,
		call.DurationMs,
		call.ErrorMessage,
	)
	if err != nil {
		if r.log != nil {
			r.log.Error("Failed to insert audit record",
				"correlation_id", call.CorrelationID,
				"service", call.Service,
				"operation", call.Operation,
				"error", err,
			)
		}
		return fmt.Errorf("insert audit record: %w", err)
	}

	return nil
}

// FindByCorrelationID retrieves every call made under one correlation ID.
func (r *Repository) FindByCorrelationID(ctx context.Context, correlationID string) ([]audit.OutboundCall, error) {
	query := `
		SELECT id, correlation_id, service, operation, request_method, request_url,
		       request_headers, request_body, response_status, response_headers,
		       response_body, duration_ms, error_message, created_at
		FROM sri_outbound_call
		WHERE correlation_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, correlationID)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var calls []audit.OutboundCall
	for rows.Next() {
		var call audit.OutboundCall
		var requestHeadersJSON, responseHeadersJSON []byte
		var requestBodyJSON, responseBodyJSON []byte

		err := rows.Scan(
			&call.ID,
			&call.CorrelationID,
			&call.Service,
			&call.Operation,
			&call.RequestMethod,
			&call.RequestURL,
			&requestHeadersJSON,
			&requestBodyJSON,
			&call.ResponseStatus,
			&responseHeadersJSON,
			&responseBodyJSON,
			&call.DurationMs,
			&call.ErrorMessage,
			&call.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		if err := json.Unmarshal(requestHeadersJSON, &call.RequestHeaders); err != nil {
			return nil, fmt.Errorf("unmarshal request headers: %w", err)
		}
		if err := json.Unmarshal(responseHeadersJSON, &call.ResponseHeaders); err != nil {
			return nil, fmt.Errorf("unmarshal response headers: %w", err)
		}

		call.RequestBody = requestBodyJSON
		call.ResponseBody = responseBodyJSON

		calls = append(calls, call)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return calls, nil
}
