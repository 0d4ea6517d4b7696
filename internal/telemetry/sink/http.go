package sink

import (
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/minitel/internal/resource"
	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
	"github.com/go-resty/resty/v2"
)

// HTTPConfig configures the HTTP forwarding sink.
type HTTPConfig struct {
	// URL is the collector base URL; signals post to /traces, /metrics
	// and /logs beneath it.
	URL string
	// Timeout bounds each request. Defaults to 5s.
	Timeout time.Duration
	// RetryCount is the per-request retry budget. Defaults to 2.
	RetryCount int
	// TripAfter is the consecutive-failure count that opens the export
	// guard. Defaults to 5.
	TripAfter int
	// Cooldown is how long the guard stays open before forwarding is
	// attempted again. Defaults to 30s.
	Cooldown time.Duration
}

// HTTP forwards telemetry as generic JSON to a remote collector.
//
// An export guard trips after consecutive delivery failures and drops
// signals for a cooldown period instead of stacking timeouts onto every
// span close while the collector is down.
type HTTP struct {
	client *resty.Client
	res    *resource.Resource

	mu        sync.Mutex
	failures  int
	tripAfter int
	cooldown  time.Duration
	openUntil time.Time
}

// NewHTTP creates an HTTP forwarding sink.
func NewHTTP(cfg HTTPConfig, res *resource.Resource) *HTTP {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryCount == 0 {
		cfg.RetryCount = 2
	}
	if cfg.TripAfter == 0 {
		cfg.TripAfter = 5
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json")

	return &HTTP{
		client:    client,
		res:       res,
		tripAfter: cfg.TripAfter,
		cooldown:  cfg.Cooldown,
	}
}

func (h *HTTP) EmitTrace(t trace.Trace) error {
	return h.post("/traces", envelope{Kind: "trace", Time: time.Now(), Resource: h.res, Trace: &t})
}

func (h *HTTP) EmitReport(r metric.Report) error {
	return h.post("/metrics", envelope{Kind: "metrics", Time: time.Now(), Resource: h.res, Report: &r})
}

func (h *HTTP) EmitRecord(r logkit.Record) error {
	return h.post("/logs", envelope{Kind: "log", Time: time.Now(), Resource: h.res, Record: &r})
}

func (h *HTTP) post(path string, body envelope) error {
	if !h.allow() {
		return fmt.Errorf("telemetry forwarding suspended: collector unreachable")
	}

	resp, err := h.client.R().SetBody(body).Post(path)
	if err != nil {
		h.record(false)
		return fmt.Errorf("failed to forward telemetry: %w", err)
	}
	if resp.IsError() {
		h.record(false)
		return fmt.Errorf("collector rejected telemetry: %s", resp.Status())
	}
	h.record(true)
	return nil
}

func (h *HTTP) allow() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return time.Now().After(h.openUntil)
}

func (h *HTTP) record(success bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if success {
		h.failures = 0
		return
	}
	h.failures++
	if h.failures >= h.tripAfter {
		h.openUntil = time.Now().Add(h.cooldown)
		h.failures = 0
	}
}
