package moltbook

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DebugLogger provides debug logging for Moltbook API calls.
// When enabled, it logs request metadata, response status and error details.
// It never receives the API key or the Authorization header.
type DebugLogger struct {
	enabled bool
	logger  *slog.Logger
	closer  io.Closer
}

// NewDebugLogger creates a new debug logger.
// If logPath is empty, logs to stderr; otherwise the file is rotated by size.
func NewDebugLogger(enabled bool, logPath string) (*DebugLogger, error) {
	var writer io.Writer = os.Stderr
	var closer io.Closer

	if enabled && logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			return nil, fmt.Errorf("open debug log: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			LocalTime:  true,
		}
		writer = lj
		closer = lj
	}

	return newDebugLogger(enabled, writer, closer), nil
}

func newDebugLogger(enabled bool, w io.Writer, closer io.Closer) *DebugLogger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &DebugLogger{
		enabled: enabled,
		logger:  slog.New(handler).With(slog.String("component", "moltbook")),
		closer:  closer,
	}
}

// Close closes the debug logger if it's writing to a file.
func (l *DebugLogger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Enabled reports whether messages are written.
func (l *DebugLogger) Enabled() bool {
	return l != nil && l.enabled
}

// Log writes a debug message if logging is enabled.
func (l *DebugLogger) Log(msg string, args ...any) {
	if !l.Enabled() {
		return
	}
	l.logger.Debug(msg, args...)
}

// LogAttempt logs an outgoing HTTP attempt. attempt is 1-based.
func (l *DebugLogger) LogAttempt(method, path string, attempt int) {
	l.Log("request", slog.String("method", method), slog.String("path", path), slog.Int("attempt", attempt))
}

// LogResponse logs an HTTP response. Bodies are not logged: registration
// responses carry a freshly issued key.
func (l *DebugLogger) LogResponse(op string, statusCode int, elapsed time.Duration, size int) {
	l.Log("response",
		slog.String("op", op),
		slog.Int("status", statusCode),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
		slog.Int("bytes", size),
	)
}

// LogError logs an error with full details.
func (l *DebugLogger) LogError(op string, err error) {
	if !l.Enabled() {
		return
	}
	l.Log("error", slog.String("op", op), slog.String("error", truncateForLog(err.Error(), 2000)))
}

// truncateForLog truncates a string for logging purposes.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}
