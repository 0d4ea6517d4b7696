/*
Package logkit emits structured, leveled log records automatically
annotated with the active trace context.

# Overview

Every record carries the timestamp, level, logger name, message, merged
scoped fields, call-site data, and the trace/span ids of whichever span is
open in the caller's context. Scoped fields are layered through
context.Context: inner scopes win on key collision and cannot leak past
their block.

# Usage

	logger := logkit.New("ingest", sink, logkit.WithMinLevel(logkit.LevelDebug))

	ctx = logkit.WithFields(ctx, map[string]interface{}{"job": jobID})
	logger.Info(ctx, "batch accepted", map[string]interface{}{"rows": n})

Records below the minimum level are dropped before construction. A sink
failure writes one fallback line and is swallowed; telemetry must not
crash the instrumented application.
*/
package logkit
