package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/GriffinCanCode/minitel/internal/resource"
	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	traces  []trace.Trace
	reports []metric.Report
	records []logkit.Record
}

func (m *memorySink) EmitTrace(t trace.Trace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traces = append(m.traces, t)
	return nil
}

func (m *memorySink) EmitReport(r metric.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *memorySink) EmitRecord(r logkit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func TestEndToEndCorrelation(t *testing.T) {
	sink := &memorySink{}
	tel := New(resource.New("orders", "1.0.0", "test", nil), sink, Config{})
	logger := tel.Logger("orders.worker")

	err := tel.Tracker.Span(context.Background(), "process", nil, func(ctx context.Context) error {
		logger.Info(ctx, "working", nil)
		tel.Metrics.Inc("processed", 1, nil)
		return nil
	})
	require.NoError(t, err)
	tel.Close()

	require.Len(t, sink.traces, 1)
	require.Len(t, sink.records, 1)
	require.Len(t, sink.reports, 1)

	span := sink.traces[0].Spans[0]
	assert.Equal(t, span.TraceID, sink.records[0].TraceID, "log correlates to the span it ran under")
	assert.Equal(t, span.SpanID, sink.records[0].SpanID)
	assert.Equal(t, "orders.worker", sink.records[0].Logger)
	assert.Equal(t, 1.0, sink.reports[0].Counters[0].Value)
}

func TestNilSinkDiscards(t *testing.T) {
	tel := New(resource.New("svc", "", "", nil), nil, Config{})
	assert.NotPanics(t, func() {
		_, span := tel.Tracker.Start(context.Background(), "op", nil)
		span.End()
		tel.Metrics.Inc("c", 1, nil)
		tel.Logger("").Info(context.Background(), "m", nil)
		tel.Close()
	})
}

func TestResourceDefaults(t *testing.T) {
	res := resource.New("svc", "", "", map[string]interface{}{"region": "eu"})
	assert.Equal(t, "0.0.0", res.Version)
	assert.Equal(t, "development", res.Environment)
	assert.NotEmpty(t, res.InstanceID)
	assert.Equal(t, "eu", res.Attributes["region"].Any())
}

func TestLoggerMinLevelShared(t *testing.T) {
	sink := &memorySink{}
	tel := New(resource.New("svc", "", "", nil), sink, Config{MinLevel: logkit.LevelError})

	tel.Logger("a").Info(context.Background(), "dropped", nil)
	tel.Logger("b").Error(context.Background(), "kept", nil)

	require.Len(t, sink.records, 1)
	assert.Equal(t, "b", sink.records[0].Logger)
}
