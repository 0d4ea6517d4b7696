package trace

import (
	"time"

	"github.com/GriffinCanCode/minitel/internal/shared/id"
	"github.com/GriffinCanCode/minitel/internal/telemetry/attr"
)

// Status is the tagged outcome recorded on a completed span.
type Status string

const (
	StatusUnset Status = ""
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Span represents a single unit of traced work within a trace.
//
// A span is exclusively owned by the tracker's open registry until ended,
// then transferred to its trace's completed-span list. Mutations go through
// the owning tracker so concurrent traces never race on span state.
type Span struct {
	TraceID       id.TraceID    `json:"trace_id"`
	SpanID        id.SpanID     `json:"span_id"`
	ParentID      id.SpanID     `json:"parent_span_id,omitempty"`
	Name          string        `json:"name"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	Duration      time.Duration `json:"duration_ns"`
	Attributes    attr.Map      `json:"attributes,omitempty"`
	Events        []Event       `json:"events,omitempty"`
	Status        Status        `json:"status,omitempty"`
	StatusMessage string        `json:"status_message,omitempty"`

	tracker *Tracker
	ended   bool
}

// Event is a timestamped annotation appended to a span.
type Event struct {
	Name       string    `json:"name"`
	Timestamp  time.Time `json:"timestamp"`
	Attributes attr.Map  `json:"attributes,omitempty"`
}

// End closes the span with an ok outcome. Ending an already-ended or
// unknown span is a no-op.
func (s *Span) End() {
	s.tracker.end(s, nil)
}

// EndError closes the span tagged as ended-with-error. A nil error is
// equivalent to End.
func (s *Span) EndError(err error) {
	s.tracker.end(s, err)
}

// SetAttribute records an attribute on an open span. No-op after End.
func (s *Span) SetAttribute(key string, value interface{}) {
	s.tracker.mu.Lock()
	defer s.tracker.mu.Unlock()
	if s.ended {
		return
	}
	if s.Attributes == nil {
		s.Attributes = make(attr.Map)
	}
	s.Attributes[key] = attr.Coerce(value)
}

// AddEvent appends an event to an open span. No-op after End.
func (s *Span) AddEvent(name string, attributes map[string]interface{}) {
	s.tracker.mu.Lock()
	defer s.tracker.mu.Unlock()
	if s.ended {
		return
	}
	s.Events = append(s.Events, Event{
		Name:       name,
		Timestamp:  s.tracker.now(),
		Attributes: attr.From(attributes),
	})
}

// IsRoot reports whether this span opened its trace.
func (s *Span) IsRoot() bool {
	return s.ParentID == ""
}
