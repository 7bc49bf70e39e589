// Package logger configures the process-wide zap logger and provides
// request-scoped field helpers.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Common structured-field keys.
const (
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldJobs      = "jobs"
)

// New builds the process logger. Console encoding by default, JSON for
// log collectors; debug switches the level.
func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}
	return cfg.Build()
}

// WithRequest returns a logger carrying the request id and method fields.
// A nil logger falls back to a no-op so call sites never have to check.
func WithRequest(logger *zap.Logger, requestID, method string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	fields := make([]zap.Field, 0, 2)
	if requestID != "" {
		fields = append(fields, zap.String(FieldRequestID, requestID))
	}
	if method != "" {
		fields = append(fields, zap.String(FieldMethod, method))
	}
	return logger.With(fields...)
}

// TruncateForLog shortens candidate or job text for log lines, appending
// an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
