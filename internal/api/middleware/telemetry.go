package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/minitel/internal/telemetry"
	"github.com/GriffinCanCode/minitel/internal/telemetry/metric"
)

// Instrument traces every request through the engine itself. Each
// request becomes a root span, a latency observation and a request
// counter increment, so the agent's own traffic shows up in the same
// signals it serves.
func Instrument(t *telemetry.Telemetry) gin.HandlerFunc {
	logger := t.Logger("http")

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := t.Tracker.Start(c.Request.Context(), c.Request.Method+" "+route, map[string]interface{}{
			"http.method": c.Request.Method,
			"http.route":  route,
		})
		c.Request = c.Request.WithContext(ctx)

		tags := map[string]string{"method": c.Request.Method, "route": route}
		t.Metrics.Inc("http_requests_total", 1, tags)
		timer := metric.NewTimer(t.Metrics, "http_request_duration_ms", tags)

		c.Next()

		timer.Stop()
		status := c.Writer.Status()
		span.SetAttribute("http.status", int64(status))
		t.Metrics.Inc("http_responses_total", 1, map[string]string{
			"route":  route,
			"status": strconv.Itoa(status),
		})

		if status >= 500 {
			err := fmt.Errorf("status %d", status)
			if len(c.Errors) > 0 {
				err = c.Errors.Last()
			}
			logger.Error(ctx, "request failed", map[string]interface{}{
				"route":  route,
				"status": status,
				"error":  err.Error(),
			})
			span.EndError(err)
			return
		}
		span.End()
	}
}
