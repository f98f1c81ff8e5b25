package testutil

import (
	"io"
	"log/slog"
	"os"
)

// NewTestLogger logs to stderr at debug level, for tests where seeing the
// SRI adapter's log lines helps diagnose a failure.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// NewNullLogger swallows everything. The default for tests that only assert
// on results.
func NewNullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
