package trace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/minitel/internal/shared/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSink records emitted traces for assertions.
type captureSink struct {
	mu     sync.Mutex
	traces []Trace
	fail   error
}

func (c *captureSink) EmitTrace(t Trace) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.traces = append(c.traces, t)
	return nil
}

func (c *captureSink) all() []Trace {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Trace(nil), c.traces...)
}

func TestStartAssignsIdentifiers(t *testing.T) {
	sink := &captureSink{}
	tracker := New(sink)
	ctx := context.Background()

	rootCtx, root := tracker.Start(ctx, "root", map[string]interface{}{"k": 1})
	require.NotEmpty(t, root.TraceID)
	require.NotEmpty(t, root.SpanID)
	assert.True(t, root.IsRoot())
	assert.Equal(t, int64(1), root.Attributes["k"].Any())

	_, child := tracker.Start(rootCtx, "child", nil)
	assert.Equal(t, root.TraceID, child.TraceID, "child shares the trace")
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.False(t, child.IsRoot())
}

func TestRootEndEmitsWholeTrace(t *testing.T) {
	sink := &captureSink{}
	tracker := New(sink)

	rootCtx, root := tracker.Start(context.Background(), "root", nil)
	childCtx, child := tracker.Start(rootCtx, "child", nil)
	_, grandchild := tracker.Start(childCtx, "grandchild", nil)

	grandchild.End()
	child.End()
	require.Empty(t, sink.all(), "no emission before the root closes")

	root.End()

	traces := sink.all()
	require.Len(t, traces, 1, "exactly one emission per completed root")
	assert.Equal(t, root.TraceID, traces[0].TraceID)

	ids := make(map[id.SpanID]bool)
	for _, s := range traces[0].Spans {
		ids[s.SpanID] = true
	}
	assert.Len(t, ids, 3)
	assert.True(t, ids[root.SpanID])
	assert.True(t, ids[child.SpanID])
	assert.True(t, ids[grandchild.SpanID])
	assert.Equal(t, 0, tracker.OpenSpans())
}

func TestEndUnknownSpanIsNoOp(t *testing.T) {
	sink := &captureSink{}
	tracker := New(sink)

	rootCtx, root := tracker.Start(context.Background(), "root", nil)
	_, child := tracker.Start(rootCtx, "child", nil)

	tracker.EndSpan("span_NOTREAL")
	assert.Equal(t, 2, tracker.OpenSpans(), "registry unchanged")

	child.End()
	child.End() // double End is a no-op
	assert.Equal(t, 1, tracker.OpenSpans())

	root.End()
	require.Len(t, sink.all(), 1)
	assert.Len(t, sink.all()[0].Spans, 2, "double End does not duplicate the span")
}

func TestRootEndOrphansOpenChildren(t *testing.T) {
	sink := &captureSink{}
	tracker := New(sink)

	rootCtx, root := tracker.Start(context.Background(), "root", nil)
	_, child := tracker.Start(rootCtx, "child", nil)

	// Caller error: closing the root while the child is open.
	root.End()

	require.Len(t, sink.all(), 1)
	assert.Len(t, sink.all()[0].Spans, 1, "only completed spans are emitted")
	assert.Equal(t, 0, tracker.OpenSpans(), "open descendants evicted")

	// Orphaned child's later End must not corrupt state or re-emit.
	child.End()
	assert.Len(t, sink.all(), 1)
}

func TestCorrelationTracksActiveSpan(t *testing.T) {
	tracker := New(&captureSink{})
	ctx := context.Background()

	_, _, ok := Correlation(ctx)
	assert.False(t, ok, "no span active outside any trace")

	rootCtx, root := tracker.Start(ctx, "root", nil)
	traceID, spanID, ok := Correlation(rootCtx)
	require.True(t, ok)
	assert.Equal(t, root.TraceID, traceID)
	assert.Equal(t, root.SpanID, spanID)

	childCtx, child := tracker.Start(rootCtx, "child", nil)
	_, spanID, ok = Correlation(childCtx)
	require.True(t, ok)
	assert.Equal(t, child.SpanID, spanID, "most recently opened unclosed span is active")

	child.End()
	_, _, ok = Correlation(childCtx)
	assert.False(t, ok, "ended span no longer correlates")

	_, spanID, ok = Correlation(rootCtx)
	require.True(t, ok)
	assert.Equal(t, root.SpanID, spanID, "parent context still correlates to the parent")
}

func TestEventsAndAttributes(t *testing.T) {
	sink := &captureSink{}
	tracker := New(sink)

	rootCtx, root := tracker.Start(context.Background(), "root", nil)
	tracker.AddEvent(rootCtx, "checkpoint", map[string]interface{}{"batch": 7})
	tracker.AddEvent(context.Background(), "dropped", nil) // no active span: no-op
	root.SetAttribute("shard", "eu-1")

	root.End()
	root.SetAttribute("late", true) // after End: no-op

	spans := sink.all()[0].Spans
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "checkpoint", spans[0].Events[0].Name)
	assert.Equal(t, int64(7), spans[0].Events[0].Attributes["batch"].Any())
	assert.Equal(t, "eu-1", spans[0].Attributes["shard"].Any())
	assert.NotContains(t, spans[0].Attributes, "late")
}

func TestSpanTiming(t *testing.T) {
	sink := &captureSink{}
	current := time.Unix(1000, 0)
	tracker := New(sink, WithClock(func() time.Time { return current }))

	_, span := tracker.Start(context.Background(), "work", nil)
	current = current.Add(250 * time.Millisecond)
	span.End()

	emitted := sink.all()[0].Spans[0]
	assert.Equal(t, 250*time.Millisecond, emitted.Duration)
	assert.False(t, emitted.EndTime.Before(emitted.StartTime))
}

func TestScopedSpan(t *testing.T) {
	sink := &captureSink{}
	tracker := New(sink)

	t.Run("Normal return", func(t *testing.T) {
		err := tracker.Span(context.Background(), "ok", nil, func(ctx context.Context) error {
			_, _, ok := Correlation(ctx)
			assert.True(t, ok)
			return nil
		})
		require.NoError(t, err)
		last := sink.all()[len(sink.all())-1].Spans[0]
		assert.Equal(t, StatusOK, last.Status)
	})

	t.Run("Error tags the outcome", func(t *testing.T) {
		boom := errors.New("boom")
		err := tracker.Span(context.Background(), "fails", nil, func(ctx context.Context) error {
			return boom
		})
		assert.Equal(t, boom, err, "error passes through")
		last := sink.all()[len(sink.all())-1].Spans[0]
		assert.Equal(t, StatusError, last.Status)
		assert.Equal(t, "boom", last.StatusMessage)
	})

	t.Run("Panic still ends the span", func(t *testing.T) {
		before := tracker.OpenSpans()
		assert.Panics(t, func() {
			_ = tracker.Span(context.Background(), "panics", nil, func(ctx context.Context) error {
				panic("bad")
			})
		})
		assert.Equal(t, before, tracker.OpenSpans(), "no leaked open span")
		last := sink.all()[len(sink.all())-1].Spans[0]
		assert.Equal(t, StatusError, last.Status)
	})
}

func TestSinkFailureLeavesStateIntact(t *testing.T) {
	sink := &captureSink{fail: errors.New("sink down")}
	tracker := New(sink)

	_, span := tracker.Start(context.Background(), "root", nil)
	assert.NotPanics(t, func() { span.End() })
	assert.Equal(t, 0, tracker.OpenSpans())

	// Subsequent traces still work once the sink recovers.
	sink.fail = nil
	_, span2 := tracker.Start(context.Background(), "root2", nil)
	span2.End()
	assert.Len(t, sink.all(), 1)
}

func TestConcurrentTracesStayIsolated(t *testing.T) {
	sink := &captureSink{}
	tracker := New(sink)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rootCtx, root := tracker.Start(context.Background(), "worker", nil)
			childCtx, child := tracker.Start(rootCtx, "step", nil)

			// The active span seen by this goroutine is its own child.
			_, spanID, ok := Correlation(childCtx)
			assert.True(t, ok)
			assert.Equal(t, child.SpanID, spanID)
			assert.Equal(t, root.SpanID, child.ParentID)
			assert.Equal(t, root.TraceID, child.TraceID)

			child.End()
			root.End()
		}()
	}
	wg.Wait()

	traces := sink.all()
	require.Len(t, traces, workers)
	seen := make(map[id.TraceID]bool)
	for _, tr := range traces {
		assert.False(t, seen[tr.TraceID], "each worker owns a distinct trace")
		seen[tr.TraceID] = true
		require.Len(t, tr.Spans, 2)
		for _, s := range tr.Spans {
			assert.Equal(t, tr.TraceID, s.TraceID, "no cross-contamination of parent ids")
		}
	}
}

func TestEndActive(t *testing.T) {
	sink := &captureSink{}
	tracker := New(sink)

	rootCtx, _ := tracker.Start(context.Background(), "root", nil)
	tracker.EndActive(rootCtx)
	assert.Len(t, sink.all(), 1)

	// No active span: no-op.
	tracker.EndActive(context.Background())
	assert.Len(t, sink.all(), 1)
}
