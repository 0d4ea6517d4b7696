package logkit

import (
	"context"
	"time"

	"github.com/GriffinCanCode/minitel/internal/shared/id"
	"github.com/GriffinCanCode/minitel/internal/telemetry/attr"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
	"go.uber.org/zap"
)

// Record is one immutable log record handed to the sink.
type Record struct {
	Timestamp time.Time  `json:"timestamp"`
	Level     Level      `json:"level"`
	Logger    string     `json:"logger"`
	Message   string     `json:"message"`
	Fields    attr.Map   `json:"fields,omitempty"`
	TraceID   id.TraceID `json:"trace_id,omitempty"`
	SpanID    id.SpanID  `json:"span_id,omitempty"`
}

// Sink receives emitted log records.
type Sink interface {
	EmitRecord(r Record) error
}

// Logger emits leveled records annotated with the active trace context.
//
// Records below the configured minimum level are filtered before any
// record is constructed. Sink failures degrade to a fallback line and
// never propagate to calling code.
type Logger struct {
	name     string
	min      Level
	sink     Sink
	now      func() time.Time
	fallback *zap.Logger
}

// Option configures a Logger.
type Option func(*Logger)

// WithMinLevel sets the minimum emitted level.
func WithMinLevel(min Level) Option {
	return func(l *Logger) { l.min = min }
}

// WithClock sets a custom time source. Useful for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithFallback sets the logger used when the sink fails.
func WithFallback(fallback *zap.Logger) Option {
	return func(l *Logger) { l.fallback = fallback }
}

// New creates a named logger emitting to sink.
func New(name string, sink Sink, opts ...Option) *Logger {
	l := &Logger{
		name:     name,
		min:      LevelInfo,
		sink:     sink,
		now:      time.Now,
		fallback: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Named returns a logger with the given name sharing this logger's sink
// and configuration.
func (l *Logger) Named(name string) *Logger {
	clone := *l
	clone.name = name
	return &clone
}

// MinLevel returns the configured minimum level.
func (l *Logger) MinLevel() Level { return l.min }

// Log emits one record if level passes the minimum-level filter.
//
// The record merges scoped fields from ctx (innermost wins), then data
// (highest precedence), and carries the active span's trace/span ids when
// one is open in ctx.
func (l *Logger) Log(ctx context.Context, level Level, msg string, data map[string]interface{}) {
	if level < l.min {
		return
	}

	rec := Record{
		Timestamp: l.now(),
		Level:     level,
		Logger:    l.name,
		Message:   msg,
		Fields:    scopedFields(ctx).Merge(attr.From(data)),
	}
	if traceID, spanID, ok := trace.Correlation(ctx); ok {
		rec.TraceID = traceID
		rec.SpanID = spanID
	}

	l.emit(rec)
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(ctx context.Context, msg string, data map[string]interface{}) {
	l.Log(ctx, LevelDebug, msg, data)
}

// Info logs at INFO level.
func (l *Logger) Info(ctx context.Context, msg string, data map[string]interface{}) {
	l.Log(ctx, LevelInfo, msg, data)
}

// Warning logs at WARNING level.
func (l *Logger) Warning(ctx context.Context, msg string, data map[string]interface{}) {
	l.Log(ctx, LevelWarning, msg, data)
}

// Error logs at ERROR level.
func (l *Logger) Error(ctx context.Context, msg string, data map[string]interface{}) {
	l.Log(ctx, LevelError, msg, data)
}

// Critical logs at CRITICAL level.
func (l *Logger) Critical(ctx context.Context, msg string, data map[string]interface{}) {
	l.Log(ctx, LevelCritical, msg, data)
}

// emit hands the record to the sink, degrading to the fallback channel on
// any failure. Logging must never raise into calling code.
func (l *Logger) emit(rec Record) {
	defer func() {
		if r := recover(); r != nil {
			l.fallback.Warn("log sink panicked",
				zap.String("logger", rec.Logger),
				zap.String("message", rec.Message),
				zap.Any("panic", r),
			)
		}
	}()
	if err := l.sink.EmitRecord(rec); err != nil {
		l.fallback.Warn("log sink failed",
			zap.String("logger", rec.Logger),
			zap.String("message", rec.Message),
			zap.Error(err),
		)
	}
}
