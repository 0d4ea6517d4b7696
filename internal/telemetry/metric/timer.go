package metric

import "time"

// Timer measures an operation and records its duration into a histogram
// series on Stop. The conventional way to record span-shaped durations
// through the aggregator.
type Timer struct {
	start time.Time
	agg   *Aggregator
	name  string
	tags  map[string]string
}

// NewTimer starts a timer for the named histogram series.
func NewTimer(agg *Aggregator, name string, tags map[string]string) *Timer {
	return &Timer{
		start: agg.now(),
		agg:   agg,
		name:  name,
		tags:  tags,
	}
}

// Stop records the elapsed time in milliseconds.
func (t *Timer) Stop() {
	elapsed := t.agg.now().Sub(t.start)
	t.agg.Observe(t.name, float64(elapsed)/float64(time.Millisecond), t.tags)
}
