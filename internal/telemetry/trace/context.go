package trace

import (
	"context"

	"github.com/GriffinCanCode/minitel/internal/shared/id"
)

// The active-span pointer travels in context.Context, Go's task-local
// storage. Two goroutines working from independent contexts can never
// nest under each other's spans.
type contextKey struct{}

var activeSpanKey contextKey

// ContextWithSpan returns a context carrying span as the active span.
func ContextWithSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, activeSpanKey, span)
}

// SpanFromContext returns the span carried by ctx, open or not.
// Returns nil if ctx carries no span.
func SpanFromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(activeSpanKey).(*Span)
	return span
}

// Correlation returns the trace and span identifiers of the active span
// in ctx, if one is carried and still open. The correlated logger reads
// this on every log call.
func Correlation(ctx context.Context) (id.TraceID, id.SpanID, bool) {
	span := SpanFromContext(ctx)
	if span == nil {
		return "", "", false
	}
	span.tracker.mu.RLock()
	ended := span.ended
	span.tracker.mu.RUnlock()
	if ended {
		return "", "", false
	}
	return span.TraceID, span.SpanID, true
}
