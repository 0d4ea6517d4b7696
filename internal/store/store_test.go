package store

import (
	"fmt"
	"testing"

	"github.com/GriffinCanCode/minitel/internal/shared/id"
	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceRetention(t *testing.T) {
	h := NewHistory(3, 10)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.EmitTrace(trace.Trace{TraceID: id.TraceID(fmt.Sprintf("trace_%d", i))}))
	}

	traces := h.Traces()
	require.Len(t, traces, 3, "retention bounded")
	assert.Equal(t, id.TraceID("trace_2"), traces[0].TraceID, "oldest evicted first")
	assert.Equal(t, id.TraceID("trace_4"), traces[2].TraceID)

	got, ok := h.Trace("trace_3")
	require.True(t, ok)
	assert.Equal(t, id.TraceID("trace_3"), got.TraceID)

	_, ok = h.Trace("trace_0")
	assert.False(t, ok, "evicted traces are gone")
}

func TestRecordRetention(t *testing.T) {
	h := NewHistory(10, 2)

	for i := 0; i < 4; i++ {
		require.NoError(t, h.EmitRecord(logkit.Record{Message: fmt.Sprintf("m%d", i)}))
	}

	records := h.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "m2", records[0].Message)
	assert.Equal(t, "m3", records[1].Message)
}

func TestLastReport(t *testing.T) {
	h := NewHistory(10, 10)
	assert.Nil(t, h.LastReport())

	require.NoError(t, h.EmitReport(metric.Report{Counters: []metric.CounterSnapshot{{Name: "a", Value: 1}}}))
	require.NoError(t, h.EmitReport(metric.Report{Counters: []metric.CounterSnapshot{{Name: "a", Value: 2}}}))

	last := h.LastReport()
	require.NotNil(t, last)
	assert.Equal(t, 2.0, last.Counters[0].Value, "only the latest report is kept")
}
