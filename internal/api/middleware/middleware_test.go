package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/minitel/internal/resource"
	"github.com/GriffinCanCode/minitel/internal/store"
	"github.com/GriffinCanCode/minitel/internal/telemetry"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestCORS(t *testing.T) {
	router := setupTestRouter()
	router.Use(CORS(DefaultCORSConfig()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	t.Run("simple GET with origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight OPTIONS", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "GET")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])

	t.Run("separate clients have separate budgets", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGlobalRateLimit(t *testing.T) {
	router := setupTestRouter()
	router.Use(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest("GET", "/test", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestInstrument(t *testing.T) {
	history := store.NewHistory(16, 64)
	tel := telemetry.New(resource.New("test", "", "", nil), history, telemetry.Config{})

	router := setupTestRouter()
	router.Use(Instrument(tel))
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	t.Run("success emits a trace", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/ok", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		traces := history.Traces()
		require.Len(t, traces, 1)
		require.Len(t, traces[0].Spans, 1)
		span := traces[0].Spans[0]
		assert.Equal(t, "GET /ok", span.Name)
		assert.Equal(t, "ok", string(span.Status))
	})

	t.Run("server error marks the span and logs", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		traces := history.Traces()
		require.Len(t, traces, 2)
		span := traces[1].Spans[0]
		assert.Equal(t, "error", string(span.Status))

		records := history.Records()
		require.NotEmpty(t, records)
		assert.Equal(t, "request failed", records[len(records)-1].Message)
	})

	t.Run("flush carries request metrics", func(t *testing.T) {
		tel.Metrics.Flush()
		report := history.LastReport()
		require.NotNil(t, report)

		var sawRequests, sawLatency bool
		for _, c := range report.Counters {
			if c.Name == "http_requests_total" {
				sawRequests = true
			}
		}
		for _, h := range report.Histograms {
			if h.Name == "http_request_duration_ms" {
				sawLatency = true
			}
		}
		assert.True(t, sawRequests)
		assert.True(t, sawLatency)
	})
}
