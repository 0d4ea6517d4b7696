package sink

import (
	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
	"github.com/GriffinCanCode/minitel/internal/telemetry/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Console renders telemetry to the process's standard output through zap.
// Development gets a human console encoding, production structured JSON.
type Console struct {
	logger *zap.Logger
}

// NewConsole creates a console sink writing through logger.
func NewConsole(logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{logger: logger}
}

func (c *Console) EmitTrace(t trace.Trace) error {
	for _, span := range t.Spans {
		fields := []zap.Field{
			zap.String("trace_id", span.TraceID.String()),
			zap.String("span_id", span.SpanID.String()),
			zap.String("name", span.Name),
			zap.Duration("duration", span.Duration),
		}
		if span.ParentID != "" {
			fields = append(fields, zap.String("parent_id", span.ParentID.String()))
		}
		if len(span.Attributes) > 0 {
			fields = append(fields, zap.Any("attributes", span.Attributes))
		}
		if len(span.Events) > 0 {
			fields = append(fields, zap.Int("events", len(span.Events)))
		}

		if span.Status == trace.StatusError {
			fields = append(fields, zap.String("status_message", span.StatusMessage))
			c.logger.Warn("span completed with error", fields...)
		} else {
			c.logger.Info("span completed", fields...)
		}
	}
	return nil
}

func (c *Console) EmitReport(r metric.Report) error {
	fields := []zap.Field{
		zap.Time("flushed_at", r.Timestamp),
		zap.Int("counters", len(r.Counters)),
		zap.Int("gauges", len(r.Gauges)),
		zap.Int("histograms", len(r.Histograms)),
	}
	for _, c := range r.Counters {
		fields = append(fields, zap.Float64("counter."+c.Name, c.Value))
	}
	for _, g := range r.Gauges {
		fields = append(fields, zap.Float64("gauge."+g.Name, g.Value))
	}
	for _, h := range r.Histograms {
		fields = append(fields,
			zap.Int("histogram."+h.Name+".count", h.Count),
			zap.Float64("histogram."+h.Name+".mean", h.Mean),
			zap.Float64("histogram."+h.Name+".p50", h.P50),
			zap.Float64("histogram."+h.Name+".p90", h.P90),
			zap.Float64("histogram."+h.Name+".p99", h.P99),
		)
	}
	c.logger.Info("metrics report", fields...)
	return nil
}

func (c *Console) EmitRecord(r logkit.Record) error {
	fields := []zap.Field{
		zap.String("logger", r.Logger),
	}
	if r.TraceID != "" {
		fields = append(fields,
			zap.String("trace_id", r.TraceID.String()),
			zap.String("span_id", r.SpanID.String()),
		)
	}
	for k, v := range r.Fields {
		fields = append(fields, zap.Any(k, v.Any()))
	}
	c.logger.Log(zapLevel(r.Level), r.Message, fields...)
	return nil
}

// zapLevel maps engine levels onto zap's. zap has no CRITICAL; those
// records keep ERROR severity and their level survives in the record.
func zapLevel(l logkit.Level) zapcore.Level {
	switch l {
	case logkit.LevelDebug:
		return zapcore.DebugLevel
	case logkit.LevelInfo:
		return zapcore.InfoLevel
	case logkit.LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
