package main

import (
	"context"
	"errors"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GriffinCanCode/minitel/internal/telemetry"
)

// Demo workload latency and failure shapes. Latencies are log-normal in
// milliseconds so the flushed percentiles have a believable tail.
var (
	dbLatency     = distuv.LogNormal{Mu: 1.6, Sigma: 0.4} // ~5ms median
	renderLatency = distuv.LogNormal{Mu: 2.3, Sigma: 0.6} // ~10ms median
	failChance    = distuv.Bernoulli{P: 0.05}
	batchSize     = distuv.Poisson{Lambda: 3}
)

var errDemoUpstream = errors.New("upstream unavailable")

// runDemo drives the engine with synthetic requests until ctx is
// cancelled, so every endpoint has data to serve out of the box.
func runDemo(ctx context.Context, tel *telemetry.Telemetry) {
	logger := tel.Logger("demo")
	logger.Info(ctx, "demo workload started", nil)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var queueDepth float64
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "demo workload stopped", nil)
			return
		case <-ticker.C:
		}

		queueDepth += batchSize.Rand() - 3
		if queueDepth < 0 {
			queueDepth = 0
		}
		tel.Metrics.SetGauge("demo_queue_depth", queueDepth, nil)

		handleDemoRequest(ctx, tel, i)
	}
}

func handleDemoRequest(ctx context.Context, tel *telemetry.Telemetry, seq int) {
	logger := tel.Logger("demo")

	tel.Tracker.Span(ctx, "demo.request", map[string]interface{}{
		"sequence": int64(seq),
	}, func(ctx context.Context) error {
		tel.Metrics.Inc("demo_requests_total", 1, nil)

		err := tel.Tracker.Span(ctx, "demo.db.query", nil, func(ctx context.Context) error {
			elapsed := simulate(dbLatency.Rand())
			tel.Metrics.Observe("demo_db_latency_ms", elapsed, nil)
			if failChance.Rand() == 1 {
				return errDemoUpstream
			}
			return nil
		})
		if err != nil {
			tel.Metrics.Inc("demo_errors_total", 1, map[string]string{"stage": "db"})
			logger.Error(ctx, "demo request failed", map[string]interface{}{
				"sequence": seq,
				"error":    err.Error(),
			})
			return err
		}

		return tel.Tracker.Span(ctx, "demo.render", nil, func(ctx context.Context) error {
			elapsed := simulate(renderLatency.Rand())
			tel.Metrics.Observe("demo_render_latency_ms", elapsed, nil)
			logger.Debug(ctx, "demo request served", map[string]interface{}{
				"sequence":   seq,
				"elapsed_ms": elapsed,
			})
			return nil
		})
	})
}

// simulate sleeps for the sampled duration, capped so a tail sample
// cannot stall the ticker loop, and returns the milliseconds slept.
func simulate(ms float64) float64 {
	if ms > 100 {
		ms = 100
	}
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
	return ms
}
