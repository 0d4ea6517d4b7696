package metric

import (
	"math"
	"sort"
	"time"
)

// CounterSnapshot is the accumulated value of one counter series.
type CounterSnapshot struct {
	Name  string            `json:"name"`
	Tags  map[string]string `json:"tags,omitempty"`
	Value float64           `json:"value"`
}

// GaugeSnapshot is the last-written value of one gauge series.
type GaugeSnapshot struct {
	Name  string            `json:"name"`
	Tags  map[string]string `json:"tags,omitempty"`
	Value float64           `json:"value"`
}

// Summary is the flushed aggregate of one histogram series' buffer.
//
// Percentiles use nearest-rank selection over the sorted buffer: the
// estimator picks an existing observation rather than interpolating.
// When fewer than 100 observations exist, P99 falls back to the maximum;
// a compatibility approximation, not a statistical recommendation.
type Summary struct {
	Name  string            `json:"name"`
	Tags  map[string]string `json:"tags,omitempty"`
	Count int               `json:"count"`
	Sum   float64           `json:"sum"`
	Min   float64           `json:"min"`
	Max   float64           `json:"max"`
	Mean  float64           `json:"mean"`
	P50   float64           `json:"p50"`
	P90   float64           `json:"p90"`
	P99   float64           `json:"p99"`
}

// Report is one flush emitted to the metric sink: histogram summaries for
// buffers drained by this flush, plus current counter and gauge snapshots.
type Report struct {
	Timestamp  time.Time         `json:"timestamp"`
	Counters   []CounterSnapshot `json:"counters,omitempty"`
	Gauges     []GaugeSnapshot   `json:"gauges,omitempty"`
	Histograms []Summary         `json:"histograms,omitempty"`
}

// summarize drains buf into a Summary. buf is reordered in place.
func summarize(name string, tags map[string]string, buf []float64) Summary {
	sort.Float64s(buf)
	n := len(buf)

	sum := 0.0
	for _, v := range buf {
		sum += v
	}

	s := Summary{
		Name:  name,
		Tags:  tags,
		Count: n,
		Sum:   sum,
		Min:   buf[0],
		Max:   buf[n-1],
		Mean:  sum / float64(n),
		P50:   nearestRank(buf, 0.50),
		P90:   nearestRank(buf, 0.90),
		P99:   nearestRank(buf, 0.99),
	}
	if n < 100 {
		s.P99 = s.Max
	}
	return s
}

// nearestRank returns the observation at rank ceil(p*n), with the index
// clamped to [0, n-1]. sorted must be non-empty and ascending.
func nearestRank(sorted []float64, p float64) float64 {
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
