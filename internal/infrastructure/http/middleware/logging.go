package middleware

import (
	"log/slog"
	"net/http"
	"time"

	ctxutil "github.com/yamgooo/sri-client-go/internal/infrastructure/context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// responseWriter wraps http.ResponseWriter to capture status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// RequestLogger logs HTTP requests and responses and seeds the request
// context with a correlation ID, so a gateway request and the SRI calls it
// triggers share one identifier. Log levels follow the status code.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chimw.GetReqID(r.Context())
			if requestID == "" {
				requestID = ctxutil.NewCorrelationID()
			}
			ctx := ctxutil.WithCorrelationID(r.Context(), requestID)

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r.WithContext(ctx))

			duration := time.Since(start)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"status", rw.statusCode,
				"duration_ms", float64(duration.Nanoseconds()) / 1e6,
				"bytes", rw.bytesWritten,
				"correlation_id", requestID,
			}

			if userAgent := r.Header.Get("User-Agent"); userAgent != "" {
				attrs = append(attrs, "user_agent", userAgent)
			}

			switch {
			case rw.statusCode >= 500:
				log.Error("HTTP request", attrs...)
			case rw.statusCode >= 400:
				log.Warn("HTTP request", attrs...)
			default:
				log.Info("HTTP request", attrs...)
			}
		})
	}
}
