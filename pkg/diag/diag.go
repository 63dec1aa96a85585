// Package diag defines the observability contracts shared by the extension
// framework: a structured logger, an operation metrics recorder and a tracer.
// The framework only depends on these interfaces; concrete exporters live in
// internal/observability.
package diag

import (
	"context"
	"time"
)

// Logger is the structured logging surface used across the framework. The
// method set matches *slog.Logger so a slog logger can be passed directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsRecorder captures operation outcomes and configuration diagnostics.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	ParseFailure(kind string)
}

// Tracer opens spans around save and load passes.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is closed with the operation's terminal error, if any.
type TraceSpan interface {
	End(err error)
}

// Clock supplies timestamps for duration accounting.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// NopLogger discards every record.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) Observe(context.Context, string, bool, time.Duration) {}
func (NopMetrics) ParseFailure(string)                                  {}

// NopTracer returns spans that do nothing.
type NopTracer struct{}

func (NopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) End(error) {}

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// LoggerOrNop returns l, or NopLogger when l is nil.
func LoggerOrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// MetricsOrNop returns m, or NopMetrics when m is nil.
func MetricsOrNop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return NopMetrics{}
	}
	return m
}
