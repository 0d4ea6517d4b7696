package sink

import (
	"sync"

	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
)

// Event is one signal delivered to broadcast subscribers.
type Event struct {
	Kind   string         `json:"kind"` // "trace" | "metrics" | "log"
	Trace  *trace.Trace   `json:"trace,omitempty"`
	Report *metric.Report `json:"report,omitempty"`
	Record *logkit.Record `json:"record,omitempty"`
}

// Broadcaster fans signals out to live subscribers over buffered
// channels. A slow subscriber drops events rather than blocking the
// emitting span or log call.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	size int
}

// NewBroadcaster creates a broadcaster with the given per-subscriber
// buffer size.
func NewBroadcaster(bufferSize int) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Broadcaster{
		subs: make(map[chan Event]struct{}),
		size: bufferSize,
	}
}

// Subscribe registers a new subscriber. Call the returned cancel func to
// unsubscribe; the channel closes once unsubscribed.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.size)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the current subscriber count.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broadcaster) EmitTrace(t trace.Trace) error {
	b.publish(Event{Kind: "trace", Trace: &t})
	return nil
}

func (b *Broadcaster) EmitReport(r metric.Report) error {
	b.publish(Event{Kind: "metrics", Report: &r})
	return nil
}

func (b *Broadcaster) EmitRecord(r logkit.Record) error {
	b.publish(Event{Kind: "log", Record: &r})
	return nil
}

func (b *Broadcaster) publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber buffer full, drop.
		}
	}
}
