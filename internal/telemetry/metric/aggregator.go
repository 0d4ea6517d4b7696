package metric

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind identifies the aggregation behaviour registered for a metric name.
type Kind int

const (
	KindCounter Kind = iota
	KindGauge
	KindHistogram
)

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// Sink receives flushed metric reports.
type Sink interface {
	EmitReport(r Report) error
}

// DefaultFlushInterval is the wall-clock interval after which the next
// metric call triggers an automatic flush.
const DefaultFlushInterval = 5 * time.Second

type series struct {
	name  string
	tags  map[string]string
	value float64
}

type histogram struct {
	name string
	tags map[string]string
	buf  []float64
}

// Aggregator accumulates counters, gauges and histograms keyed by
// (name, sorted tag set) and periodically summarizes them to the sink.
//
// Flush timing is opportunistic: it is checked on every record call, not
// driven by a background timer, so it only advances when some metric API
// is called.
type Aggregator struct {
	mu        sync.Mutex
	counters  map[string]*series
	gauges    map[string]*series
	hists     map[string]*histogram
	kinds     map[string]Kind
	lastFlush time.Time

	sink     Sink
	interval time.Duration
	now      func() time.Time
	fallback *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithFlushInterval sets the automatic flush interval. Zero or negative
// disables automatic flushing; explicit Flush still works.
func WithFlushInterval(d time.Duration) Option {
	return func(a *Aggregator) { a.interval = d }
}

// WithClock sets a custom time source. Useful for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLogger sets the fallback logger used when sink emission fails.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) { a.fallback = logger }
}

// New creates an aggregator flushing to sink.
func New(sink Sink, opts ...Option) *Aggregator {
	a := &Aggregator{
		counters: make(map[string]*series),
		gauges:   make(map[string]*series),
		hists:    make(map[string]*histogram),
		kinds:    make(map[string]Kind),
		sink:     sink,
		interval: DefaultFlushInterval,
		now:      time.Now,
		fallback: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.lastFlush = a.now()
	return a
}

// Inc adds value to the named counter series, creating it at zero on
// first use. Counters are conventionally monotonic; negative values are
// accepted but not recommended.
func (a *Aggregator) Inc(name string, value float64, tags map[string]string) {
	a.mu.Lock()
	a.checkKind(name, KindCounter)
	key := seriesKey(name, tags)
	s := a.counters[key]
	if s == nil {
		s = &series{name: name, tags: copyTags(tags)}
		a.counters[key] = s
	}
	s.value += value
	report := a.maybeFlushLocked()
	a.mu.Unlock()

	a.emit(report)
}

// SetGauge overwrites the named gauge series' current value.
func (a *Aggregator) SetGauge(name string, value float64, tags map[string]string) {
	a.mu.Lock()
	a.checkKind(name, KindGauge)
	key := seriesKey(name, tags)
	s := a.gauges[key]
	if s == nil {
		s = &series{name: name, tags: copyTags(tags)}
		a.gauges[key] = s
	}
	s.value = value
	report := a.maybeFlushLocked()
	a.mu.Unlock()

	a.emit(report)
}

// Observe appends value to the named histogram series' pending buffer.
// The buffer drains on the next flush.
func (a *Aggregator) Observe(name string, value float64, tags map[string]string) {
	a.mu.Lock()
	a.checkKind(name, KindHistogram)
	key := seriesKey(name, tags)
	h := a.hists[key]
	if h == nil {
		h = &histogram{name: name, tags: copyTags(tags)}
		a.hists[key] = h
	}
	h.buf = append(h.buf, value)
	report := a.maybeFlushLocked()
	a.mu.Unlock()

	a.emit(report)
}

// Flush summarizes all non-empty histogram buffers, snapshots counters
// and gauges, emits one report, and clears the histogram buffers.
// Counters and gauges are never reset.
func (a *Aggregator) Flush() {
	a.mu.Lock()
	report := a.flushLocked()
	a.mu.Unlock()

	a.emit(report)
}

// checkKind registers name under kind on first use and panics on a kind
// conflict: registering one name as two metric kinds is a programming
// error, caught loudly at the first conflicting call.
func (a *Aggregator) checkKind(name string, kind Kind) {
	if existing, ok := a.kinds[name]; ok {
		if existing != kind {
			panic(fmt.Sprintf("metric: %q already registered as %s, cannot use as %s", name, existing, kind))
		}
		return
	}
	a.kinds[name] = kind
}

func (a *Aggregator) maybeFlushLocked() *Report {
	if a.interval <= 0 {
		return nil
	}
	if a.now().Sub(a.lastFlush) < a.interval {
		return nil
	}
	return a.flushLocked()
}

func (a *Aggregator) flushLocked() *Report {
	now := a.now()
	a.lastFlush = now

	r := &Report{Timestamp: now}

	for _, s := range a.counters {
		r.Counters = append(r.Counters, CounterSnapshot{Name: s.name, Tags: s.tags, Value: s.value})
	}
	for _, s := range a.gauges {
		r.Gauges = append(r.Gauges, GaugeSnapshot{Name: s.name, Tags: s.tags, Value: s.value})
	}
	for _, h := range a.hists {
		if len(h.buf) == 0 {
			continue
		}
		r.Histograms = append(r.Histograms, summarize(h.name, h.tags, h.buf))
		h.buf = nil
	}

	sortReport(r)
	return r
}

// emit hands a report to the sink outside the aggregator lock. Sink
// failures never reach the recording code path.
func (a *Aggregator) emit(r *Report) {
	if r == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			a.fallback.Warn("metric sink panicked", zap.Any("panic", rec))
		}
	}()
	if err := a.sink.EmitReport(*r); err != nil {
		a.fallback.Warn("metric sink failed", zap.Error(err))
	}
}

// seriesKey builds the canonical series key: tags sorted by key so the
// same logical tag set maps to the same series regardless of call-site
// ordering.
func seriesKey(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(tags[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

func copyTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

func sortReport(r *Report) {
	sort.Slice(r.Counters, func(i, j int) bool {
		return snapshotLess(r.Counters[i].Name, r.Counters[i].Tags, r.Counters[j].Name, r.Counters[j].Tags)
	})
	sort.Slice(r.Gauges, func(i, j int) bool {
		return snapshotLess(r.Gauges[i].Name, r.Gauges[i].Tags, r.Gauges[j].Name, r.Gauges[j].Tags)
	})
	sort.Slice(r.Histograms, func(i, j int) bool {
		return snapshotLess(r.Histograms[i].Name, r.Histograms[i].Tags, r.Histograms[j].Name, r.Histograms[j].Tags)
	})
}

func snapshotLess(nameA string, tagsA map[string]string, nameB string, tagsB map[string]string) bool {
	if nameA != nameB {
		return nameA < nameB
	}
	return seriesKey(nameA, tagsA) < seriesKey(nameB, tagsB)
}
