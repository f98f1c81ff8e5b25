package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const colorReset = "\033[0m"

// levelColors maps slog level markers to ANSI colors for terminal output.
var levelColors = map[string]string{
	"level=DEBUG": "\033[36m",
	"level=INFO":  "\033[32m",
	"level=WARN":  "\033[33m",
	"level=ERROR": "\033[31m",
}

// colorWriter wraps an io.Writer and colorizes the level marker emitted by
// slog's text handler.
type colorWriter struct {
	writer  io.Writer
	enabled bool
}

func (cw *colorWriter) Write(p []byte) (n int, err error) {
	if !cw.enabled {
		return cw.writer.Write(p)
	}

	text := string(p)
	for marker, color := range levelColors {
		text = strings.ReplaceAll(text, marker, color+marker+colorReset)
	}

	_, err = cw.writer.Write([]byte(text))
	return len(p), err
}

// isTerminal checks if the writer is a terminal (TTY).
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	info, err := file.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

// New builds a structured slog logger honoring the configured level and
// environment: colored text output for development, JSON for everything else.
func New(appName, level, environment string) *slog.Logger {
	env := strings.ToLower(strings.TrimSpace(environment))
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}

	var handler slog.Handler
	if env == "local" || env == "dev" || env == "development" {
		handler = slog.NewTextHandler(&colorWriter{writer: os.Stdout, enabled: isTerminal(os.Stdout)}, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("app", appName)
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
