package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/minitel/internal/infrastructure/config"
	"github.com/GriffinCanCode/minitel/internal/shared/id"
	"github.com/GriffinCanCode/minitel/internal/store"
	"github.com/GriffinCanCode/minitel/internal/telemetry"
	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/sink"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
)

type handlers struct {
	config    *config.Config
	telemetry *telemetry.Telemetry
	history   *store.History
	broadcast *sink.Broadcaster
	started   time.Time
}

func newHandlers(cfg *config.Config, tel *telemetry.Telemetry, history *store.History, broadcast *sink.Broadcaster) *handlers {
	return &handlers{
		config:    cfg,
		telemetry: tel,
		history:   history,
		broadcast: broadcast,
		started:   time.Now(),
	}
}

// Root reports basic service identity.
func (h *handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "online",
		"service":     h.config.Service.Name,
		"version":     h.config.Service.Version,
		"environment": h.config.Service.Environment,
	})
}

// Health reports engine state for liveness checks.
func (h *handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"uptime_seconds":  int64(time.Since(h.started).Seconds()),
		"open_spans":      h.telemetry.Tracker.OpenSpans(),
		"retained_traces": len(h.history.Traces()),
		"retained_logs":   len(h.history.Records()),
		"subscribers":     h.broadcast.Subscribers(),
	})
}

// traceSummary is the list view of a completed trace.
type traceSummary struct {
	TraceID    id.TraceID   `json:"trace_id"`
	Root       string       `json:"root"`
	Status     trace.Status `json:"status"`
	StartTime  time.Time    `json:"start_time"`
	DurationMS float64      `json:"duration_ms"`
	SpanCount  int          `json:"span_count"`
}

// ListTraces returns summaries of retained traces, most recent first.
func (h *handlers) ListTraces(c *gin.Context) {
	traces := h.history.Traces()
	limit := queryInt(c, "limit", len(traces))

	summaries := make([]traceSummary, 0, limit)
	for i := len(traces) - 1; i >= 0 && len(summaries) < limit; i-- {
		summaries = append(summaries, summarizeTrace(traces[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"traces": summaries,
		"total":  len(traces),
	})
}

// GetTrace returns one retained trace with all its spans.
func (h *handlers) GetTrace(c *gin.Context) {
	traceID := id.TraceID(c.Param("id"))
	t, ok := h.history.Trace(traceID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "trace not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// Report returns the latest metrics report. ?fresh=true forces a flush
// first so the response reflects the current interval.
func (h *handlers) Report(c *gin.Context) {
	if c.Query("fresh") == "true" {
		h.telemetry.Metrics.Flush()
	}
	report := h.history.LastReport()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report flushed yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Logs returns retained log records, most recent first. Supports
// ?level= to drop records below a level and ?limit= to cap the count.
func (h *handlers) Logs(c *gin.Context) {
	records := h.history.Records()

	min := logkit.LevelDebug
	if raw := c.Query("level"); raw != "" {
		min = logkit.ParseLevel(raw)
	}

	limit := queryInt(c, "limit", len(records))
	out := make([]logkit.Record, 0, limit)
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		if records[i].Level >= min {
			out = append(out, records[i])
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  out,
		"total": len(records),
	})
}

func summarizeTrace(t trace.Trace) traceSummary {
	s := traceSummary{
		TraceID:   t.TraceID,
		SpanCount: len(t.Spans),
	}
	for _, sp := range t.Spans {
		if sp.IsRoot() {
			s.Root = sp.Name
			s.Status = sp.Status
			s.StartTime = sp.StartTime
			s.DurationMS = float64(sp.Duration) / float64(time.Millisecond)
			break
		}
	}
	return s
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
