/*
Package metric accumulates and periodically summarizes numeric
observations without a metrics SDK.

# Overview

Three series kinds share one aggregator: counters (monotonic accumulation,
never reset), gauges (last-written value), and histograms (pending buffers
drained into count/sum/min/max/mean and nearest-rank p50/p90/p99 on each
flush). Series are keyed by metric name plus tag set, with tags sorted by
key so call-site ordering never splits a series.

# Usage

	agg := metric.New(sink, metric.WithFlushInterval(5*time.Second))

	agg.Inc("requests", 1, map[string]string{"route": "/apps"})
	agg.SetGauge("inflight", 12, nil)
	agg.Observe("latency_ms", 3.4, nil)
	agg.Flush() // or wait for the interval to elapse

	timer := metric.NewTimer(agg, "op_ms", nil)
	// ... perform operation ...
	timer.Stop()

Automatic flushing is best-effort: the interval is checked on each record
call rather than by a background goroutine, so an idle process emits
nothing until the next call arrives.

Registering one metric name as two different kinds panics at the first
conflicting call; every other operation is infallible by design.
*/
package metric
