// Package logging is the structured logger shared by the simulator and the
// mission server. Entries are JSON lines from log/slog. A correlation id
// carried in the context (one per pilot session or local mission) is added
// to every entry, and secret-looking attributes are masked.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelEnvVar names the environment variable holding the log level.
const LevelEnvVar = "DRONESTRIKE_LOG_LEVEL"

// correlationAttr is the attribute key of the context's correlation id.
const correlationAttr = "correlation_id"

// redactedKeys are attribute key fragments whose values are never written.
var redactedKeys = []string{"password", "token", "secret", "authorization", "cookie"}

// Logger is a slog.Logger whose level methods take a context.
type Logger struct {
	*slog.Logger
}

// NewLogger logs to stdout at the level named by DRONESTRIKE_LOG_LEVEL.
func NewLogger() *Logger {
	return New(os.Stdout, ParseLevel(os.Getenv(LevelEnvVar)))
}

// New creates a Logger writing JSON to w. The terminal client points it at
// a file so log lines stay off the screen.
func New(w io.Writer, level slog.Level) *Logger {
	return &Logger{slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact,
	}))}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, slog.LevelError)
}

// With returns a Logger that adds args to every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	if id := correlationID(ctx); id != "" {
		args = append(args, correlationAttr, id)
	}
	l.Log(ctx, level, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args)
}

// Error logs msg with err's text under "error". A nil err is omitted.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.log(ctx, slog.LevelError, msg, args)
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args)
}

type correlationKey struct{}

// WithCorrelationID tags ctx with id, generating one when id is empty.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = GenerateCorrelationID()
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// GenerateCorrelationID returns 16 random hex digits.
func GenerateCorrelationID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// ParseLevel maps a level name to a slog level. Unknown names give INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func redact(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, fragment := range redactedKeys {
		if strings.Contains(key, fragment) {
			return slog.String(a.Key, "[REDACTED]")
		}
	}
	return a
}

// WrapError prefixes err with a formatted context, keeping it unwrappable.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	return fmt.Errorf("%s: %w", format, err)
}
