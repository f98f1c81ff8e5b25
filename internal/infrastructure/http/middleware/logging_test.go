package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"

	ctxutil "github.com/yamgooo/sri-client-go/internal/infrastructure/context"
)

func TestRequestLogger_SeedsCorrelationID(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	var correlationID string
	handler := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID = ctxutil.GetCorrelationID(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if correlationID == "" {
		t.Error("expected a correlation ID seeded into the request context")
	}
}

func TestRequestLogger_ReusesChiRequestID(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	var correlationID string
	handler := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID = ctxutil.GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req = req.WithContext(context.WithValue(req.Context(), chimw.RequestIDKey, "req-42"))

	handler.ServeHTTP(httptest.NewRecorder(), req)

	if correlationID != "req-42" {
		t.Errorf("expected chi request ID reused, got %q", correlationID)
	}
}

func TestRequestLogger_LogsStatusAndPath(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/taxpayers/ruc/123", nil))

	out := buf.String()
	if !strings.Contains(out, "status=404") {
		t.Errorf("expected status in log output, got %q", out)
	}
	if !strings.Contains(out, "path=/taxpayers/ruc/123") {
		t.Errorf("expected path in log output, got %q", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected WARN level for 4xx, got %q", out)
	}
}

func TestResponseWriter_CapturesWrites(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}

	if _, err := rw.Write([]byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rw.statusCode != http.StatusOK {
		t.Errorf("expected implicit 200, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 5 {
		t.Errorf("expected 5 bytes recorded, got %d", rw.bytesWritten)
	}

	rw = &responseWriter{ResponseWriter: httptest.NewRecorder()}
	rw.WriteHeader(http.StatusAccepted)
	if rw.statusCode != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rw.statusCode)
	}
}
