// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ThreadIDKey is the context key for the conversation thread ID
	ThreadIDKey contextKey = "thread_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and thread_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("request_id", requestID)),
		}
	}

	if threadID, ok := ctx.Value(ThreadIDKey).(string); ok && threadID != "" {
		newLogger = newLogger.WithThreadID(threadID)
	}

	return newLogger
}

// WithThreadID returns a logger scoped to a conversation thread.
func (l *Logger) WithThreadID(threadID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("thread_id", threadID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// ToolCall logs the execution of a model-requested tool.
func (l *Logger) ToolCall(threadID, tool, callID string, err error) {
	if err == nil {
		l.Info("tool_call",
			slog.String("thread_id", threadID),
			slog.String("tool", tool),
			slog.String("call_id", callID),
		)
		return
	}
	l.Warn("tool_call",
		slog.String("thread_id", threadID),
		slog.String("tool", tool),
		slog.String("call_id", callID),
		slog.String("error", err.Error()),
	)
}

// ExternalCall logs a call to an external backend (AMS360, AgencyZoom, model).
func (l *Logger) ExternalCall(system, operation string, err error) {
	if err == nil {
		l.Info("external_call",
			slog.String("system", system),
			slog.String("operation", operation),
		)
		return
	}
	l.Error("external_call",
		slog.String("system", system),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
