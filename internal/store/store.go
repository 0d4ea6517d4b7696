// Package store retains recent telemetry in memory for the HTTP API.
// Retention is bounded and process-lifetime only; nothing persists.
package store

import (
	"sync"

	"github.com/GriffinCanCode/minitel/internal/shared/id"
	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
)

// History is a sink keeping ring buffers of the most recent traces and
// log records plus the latest metrics report.
type History struct {
	mu sync.RWMutex

	traces    []trace.Trace
	maxTraces int

	records    []logkit.Record
	maxRecords int

	lastReport *metric.Report
}

// NewHistory creates a history store retaining up to maxTraces traces
// and maxRecords log records.
func NewHistory(maxTraces, maxRecords int) *History {
	if maxTraces <= 0 {
		maxTraces = 256
	}
	if maxRecords <= 0 {
		maxRecords = 1024
	}
	return &History{
		maxTraces:  maxTraces,
		maxRecords: maxRecords,
	}
}

func (h *History) EmitTrace(t trace.Trace) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.traces = append(h.traces, t)
	if len(h.traces) > h.maxTraces {
		h.traces = h.traces[len(h.traces)-h.maxTraces:]
	}
	return nil
}

func (h *History) EmitReport(r metric.Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastReport = &r
	return nil
}

func (h *History) EmitRecord(r logkit.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	if len(h.records) > h.maxRecords {
		h.records = h.records[len(h.records)-h.maxRecords:]
	}
	return nil
}

// Traces returns retained traces, most recent last.
func (h *History) Traces() []trace.Trace {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]trace.Trace(nil), h.traces...)
}

// Trace returns one retained trace by id.
func (h *History) Trace(traceID id.TraceID) (trace.Trace, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := len(h.traces) - 1; i >= 0; i-- {
		if h.traces[i].TraceID == traceID {
			return h.traces[i], true
		}
	}
	return trace.Trace{}, false
}

// Records returns retained log records, most recent last.
func (h *History) Records() []logkit.Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]logkit.Record(nil), h.records...)
}

// LastReport returns the most recently flushed metrics report, or nil
// when no flush has happened yet.
func (h *History) LastReport() *metric.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastReport
}
