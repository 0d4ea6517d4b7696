// Package ws streams live telemetry over WebSocket. Each connection
// subscribes to the broadcast sink and receives every trace, metrics
// report and log record emitted while it is open.
package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/minitel/internal/telemetry/sink"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

const writeTimeout = 5 * time.Second

// Handler manages WebSocket connections.
type Handler struct {
	broadcast *sink.Broadcaster
	logger    *zap.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(broadcast *sink.Broadcaster, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		broadcast: broadcast,
		logger:    logger,
	}
}

// HandleConnection upgrades the request and forwards telemetry events
// until the client disconnects. The optional "kinds" query parameter
// restricts the stream, e.g. ?kinds=trace,log.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	wanted := parseKinds(c.Query("kinds"))

	events, cancel := h.broadcast.Subscribe()
	defer cancel()

	h.send(conn, map[string]interface{}{
		"type":    "system",
		"message": "connected to telemetry stream",
	})

	// Drain client frames so pings and close frames are processed; any
	// read error tears the connection down.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if wanted != nil && !wanted[ev.Kind] {
				continue
			}
			if err := h.send(conn, ev); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

// parseKinds returns nil when every kind is wanted.
func parseKinds(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	wanted := make(map[string]bool)
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			wanted[k] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	return wanted
}
