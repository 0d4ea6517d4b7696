package sink

import (
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
	"github.com/prometheus/client_golang/prometheus"
)

// Prom bridges flushed metric reports onto a Prometheus registry.
//
// It holds the most recent report and exposes it as const metrics on
// scrape: counters and gauges directly, histogram summaries as summary
// metrics carrying the engine's nearest-rank quantiles. Traces and logs
// pass through untouched.
type Prom struct {
	mu   sync.RWMutex
	last *metric.Report
}

// NewProm creates the bridge and registers it on reg. Registration
// panics on duplicate collectors, matching promauto behaviour.
func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{}
	reg.MustRegister(p)
	return p
}

func (p *Prom) EmitReport(r metric.Report) error {
	p.mu.Lock()
	p.last = &r
	p.mu.Unlock()
	return nil
}

func (p *Prom) EmitTrace(trace.Trace) error    { return nil }
func (p *Prom) EmitRecord(logkit.Record) error { return nil }

// Describe is intentionally empty: series come and go with tag sets, so
// the bridge is an unchecked collector.
func (p *Prom) Describe(chan<- *prometheus.Desc) {}

// Collect renders the last flushed report.
func (p *Prom) Collect(ch chan<- prometheus.Metric) {
	p.mu.RLock()
	report := p.last
	p.mu.RUnlock()
	if report == nil {
		return
	}

	for _, c := range report.Counters {
		names, values := labelPairs(c.Tags)
		name := promName(c.Name)
		if !strings.HasSuffix(name, "_total") {
			name += "_total"
		}
		desc := prometheus.NewDesc(name, "Accumulated counter series.", names, nil)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, c.Value, values...)
	}
	for _, g := range report.Gauges {
		names, values := labelPairs(g.Tags)
		desc := prometheus.NewDesc(promName(g.Name), "Last-written gauge series.", names, nil)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, g.Value, values...)
	}
	for _, h := range report.Histograms {
		names, values := labelPairs(h.Tags)
		desc := prometheus.NewDesc(promName(h.Name), "Flushed histogram summary (nearest-rank quantiles).", names, nil)
		ch <- prometheus.MustNewConstSummary(desc, uint64(h.Count), h.Sum, map[float64]float64{
			0.5:  h.P50,
			0.9:  h.P90,
			0.99: h.P99,
		}, values...)
	}
}

func labelPairs(tags map[string]string) ([]string, []string) {
	if len(tags) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(tags))
	for k := range tags {
		names = append(names, k)
	}
	sort.Strings(names)

	values := make([]string, len(names))
	sane := make([]string, len(names))
	for i, k := range names {
		sane[i] = promName(k)
		values[i] = tags[k]
	}
	return sane, values
}

// promName maps an engine metric name onto the Prometheus charset.
func promName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
			sb.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
