// Package telemetry bundles the span tracker, metric aggregator and
// correlated loggers behind one entry point sharing a sink set.
package telemetry

import (
	"time"

	"github.com/GriffinCanCode/minitel/internal/resource"
	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
	"github.com/GriffinCanCode/minitel/internal/telemetry/sink"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
	"go.uber.org/zap"
)

// Config holds the knobs shared by all three signals.
type Config struct {
	// MinLevel is the minimum emitted log level.
	MinLevel logkit.Level
	// FlushInterval drives opportunistic metric flushing.
	FlushInterval time.Duration
	// Fallback receives internal failures (sink errors). Defaults to a
	// no-op logger.
	Fallback *zap.Logger
}

// Telemetry owns one tracker, one aggregator and a family of named
// loggers, all emitting to the same sink.
type Telemetry struct {
	Resource resource.Resource
	Tracker  *trace.Tracker
	Metrics  *metric.Aggregator

	sink sink.Sink
	cfg  Config
	root *logkit.Logger
}

// New wires the engine for a service. A nil sink discards everything.
func New(res resource.Resource, s sink.Sink, cfg Config) *Telemetry {
	if s == nil {
		s = sink.Discard{}
	}
	if cfg.Fallback == nil {
		cfg.Fallback = zap.NewNop()
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = metric.DefaultFlushInterval
	}

	t := &Telemetry{
		Resource: res,
		Tracker: trace.New(s,
			trace.WithLogger(cfg.Fallback),
		),
		Metrics: metric.New(s,
			metric.WithFlushInterval(cfg.FlushInterval),
			metric.WithLogger(cfg.Fallback),
		),
		sink: s,
		cfg:  cfg,
	}
	t.root = logkit.New(res.Service, s,
		logkit.WithMinLevel(cfg.MinLevel),
		logkit.WithFallback(cfg.Fallback),
	)
	return t
}

// Logger returns a named logger sharing the engine's sink and minimum
// level. An empty name yields the service-named root logger.
func (t *Telemetry) Logger(name string) *logkit.Logger {
	if name == "" {
		return t.root
	}
	return t.root.Named(name)
}

// Close flushes pending metrics so a clean shutdown does not drop the
// last interval's observations.
func (t *Telemetry) Close() {
	t.Metrics.Flush()
}
