package sink

import (
	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
)

// Sink is a consumer of all three telemetry signals. The core packages
// each define their own single-signal interface; implementations here
// satisfy all of them so one sink can be shared by the whole engine.
type Sink interface {
	trace.Sink
	metric.Sink
	logkit.Sink
}

// Fanout delivers every signal to each of its sinks in order. A failing
// sink does not stop delivery to the rest; the first error is returned so
// the cores can note it on their fallback channel.
type Fanout []Sink

func (f Fanout) EmitTrace(t trace.Trace) error {
	var first error
	for _, s := range f {
		if err := s.EmitTrace(t); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) EmitReport(r metric.Report) error {
	var first error
	for _, s := range f {
		if err := s.EmitReport(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) EmitRecord(r logkit.Record) error {
	var first error
	for _, s := range f {
		if err := s.EmitRecord(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Discard swallows every signal. Useful as a default and in tests.
type Discard struct{}

func (Discard) EmitTrace(trace.Trace) error    { return nil }
func (Discard) EmitReport(metric.Report) error { return nil }
func (Discard) EmitRecord(logkit.Record) error { return nil }
