package trace

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/minitel/internal/shared/id"
	"github.com/GriffinCanCode/minitel/internal/telemetry/attr"
	"go.uber.org/zap"
)

// Trace is the completed execution tree emitted to the sink when a root
// span ends. Spans appear in end order.
type Trace struct {
	TraceID id.TraceID `json:"trace_id"`
	Spans   []*Span    `json:"spans"`
}

// Sink receives completed traces. Implementations live outside the core;
// emission failures are swallowed and never reach instrumented code.
type Sink interface {
	EmitTrace(t Trace) error
}

// Tracker manages nested span lifecycle and emits one aggregated trace
// when a root span completes.
//
// The open-span registry and per-trace completed buffers are shared state
// guarded by a mutex; the active-span pointer itself lives in the caller's
// context so independent goroutines stay isolated.
type Tracker struct {
	mu        sync.RWMutex
	open      map[id.SpanID]*Span
	completed map[id.TraceID][]*Span

	sink     Sink
	gen      *id.Generator
	now      func() time.Time
	fallback *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithGenerator sets a custom ID generator.
func WithGenerator(gen *id.Generator) Option {
	return func(t *Tracker) { t.gen = gen }
}

// WithClock sets a custom time source. Useful for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the fallback logger used when sink emission fails.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) { t.fallback = logger }
}

// New creates a tracker emitting completed traces to sink.
func New(sink Sink, opts ...Option) *Tracker {
	t := &Tracker{
		open:      make(map[id.SpanID]*Span),
		completed: make(map[id.TraceID][]*Span),
		sink:      sink,
		gen:       id.Default(),
		now:       time.Now,
		fallback:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start opens a span. If ctx carries no open span, a fresh trace is
// created and the new span becomes its root. The returned context carries
// the new span as the active span; pass it to child operations and to
// log calls that should correlate.
func (t *Tracker) Start(ctx context.Context, name string, attributes map[string]interface{}) (context.Context, *Span) {
	span := &Span{
		SpanID:     t.gen.NewSpanID(),
		Name:       name,
		StartTime:  t.now(),
		Attributes: attr.From(attributes),
		tracker:    t,
	}

	t.mu.Lock()
	if parent := SpanFromContext(ctx); parent != nil && !parent.ended {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	} else {
		// Root detection is structural: no active span at open time.
		span.TraceID = t.gen.NewTraceID()
	}
	t.open[span.SpanID] = span
	t.mu.Unlock()

	return ContextWithSpan(ctx, span), span
}

// EndActive ends the active span carried by ctx, if any.
func (t *Tracker) EndActive(ctx context.Context) {
	if span := SpanFromContext(ctx); span != nil {
		t.end(span, nil)
	}
}

// EndSpan ends the open span with the given id. Unknown or already-ended
// ids are a silent no-op.
func (t *Tracker) EndSpan(sid id.SpanID) {
	t.mu.RLock()
	span := t.open[sid]
	t.mu.RUnlock()
	if span != nil {
		t.end(span, nil)
	}
}

// AddEvent appends an event to the active span in ctx. No-op when no span
// is active.
func (t *Tracker) AddEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	if span := SpanFromContext(ctx); span != nil {
		span.AddEvent(name, attributes)
	}
}

// Span runs fn inside a span, guaranteeing the span ends on every exit
// path. An error returned by fn tags the span as ended-with-error and is
// passed through; a panic ends the span before re-panicking.
func (t *Tracker) Span(ctx context.Context, name string, attributes map[string]interface{}, fn func(ctx context.Context) error) (err error) {
	spanCtx, span := t.Start(ctx, name, attributes)
	defer func() {
		if r := recover(); r != nil {
			span.EndError(panicError{r})
			panic(r)
		}
		span.EndError(err)
	}()
	err = fn(spanCtx)
	return err
}

// OpenSpans returns the number of spans currently open across all traces.
func (t *Tracker) OpenSpans() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.open)
}

func (t *Tracker) end(s *Span, outcome error) {
	t.mu.Lock()
	if _, ok := t.open[s.SpanID]; !ok {
		// Already ended, or evicted when its root closed first.
		t.mu.Unlock()
		return
	}
	delete(t.open, s.SpanID)

	s.ended = true
	s.EndTime = t.now()
	if s.EndTime.Before(s.StartTime) {
		s.EndTime = s.StartTime
	}
	s.Duration = s.EndTime.Sub(s.StartTime)
	switch {
	case outcome != nil:
		s.Status = StatusError
		s.StatusMessage = outcome.Error()
	case s.Status == StatusUnset:
		s.Status = StatusOK
	}

	t.completed[s.TraceID] = append(t.completed[s.TraceID], s)

	var flush *Trace
	if s.IsRoot() {
		spans := t.completed[s.TraceID]
		delete(t.completed, s.TraceID)
		// Closing a root with open descendants orphans them: their
		// later End hits the unknown-id no-op path.
		for sid, open := range t.open {
			if open.TraceID == s.TraceID {
				open.ended = true
				delete(t.open, sid)
			}
		}
		flush = &Trace{TraceID: s.TraceID, Spans: spans}
	}
	t.mu.Unlock()

	if flush != nil {
		t.emit(*flush)
	}
}

// emit hands a completed trace to the sink. Sink failures never reach
// the instrumented code path.
func (t *Tracker) emit(tr Trace) {
	defer func() {
		if r := recover(); r != nil {
			t.fallback.Warn("trace sink panicked",
				zap.String("trace_id", tr.TraceID.String()),
				zap.Any("panic", r),
			)
		}
	}()
	if err := t.sink.EmitTrace(tr); err != nil {
		t.fallback.Warn("trace sink failed",
			zap.String("trace_id", tr.TraceID.String()),
			zap.Error(err),
		)
	}
}

type panicError struct {
	value interface{}
}

func (p panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return err.Error()
	}
	return "panic in traced section"
}
