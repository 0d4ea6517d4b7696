package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/minitel/internal/api/middleware"
	"github.com/GriffinCanCode/minitel/internal/infrastructure/config"
	"github.com/GriffinCanCode/minitel/internal/infrastructure/logging"
	"github.com/GriffinCanCode/minitel/internal/resource"
	"github.com/GriffinCanCode/minitel/internal/store"
	"github.com/GriffinCanCode/minitel/internal/telemetry"
	"github.com/GriffinCanCode/minitel/internal/telemetry/logkit"
	"github.com/GriffinCanCode/minitel/internal/telemetry/sink"
	"github.com/GriffinCanCode/minitel/internal/ws"
)

// Server wraps the HTTP server and the telemetry engine it exposes.
type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    *zap.Logger
	telemetry *telemetry.Telemetry
	history   *store.History
	broadcast *sink.Broadcaster
	file      *sink.File
}

// NewServer wires the engine and the HTTP surface from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	res := resource.New(cfg.Service.Name, cfg.Service.Version, cfg.Service.Environment, nil)

	history := store.NewHistory(cfg.Telemetry.HistoryTraces, cfg.Telemetry.HistoryLogs)
	broadcast := sink.NewBroadcaster(cfg.Sinks.StreamBuffer)
	outputs := sink.Fanout{history, broadcast}

	if cfg.Sinks.Console {
		outputs = append(outputs, sink.NewConsole(logger))
	}

	var file *sink.File
	if cfg.Sinks.FilePath != "" {
		file, err = sink.NewFile(cfg.Sinks.FilePath, &res)
		if err != nil {
			return nil, fmt.Errorf("failed to open telemetry file: %w", err)
		}
		outputs = append(outputs, file)
	}

	if cfg.Sinks.ForwardURL != "" {
		outputs = append(outputs, sink.NewHTTP(sink.HTTPConfig{URL: cfg.Sinks.ForwardURL}, &res))
		logger.Info("Telemetry forwarding enabled", zap.String("url", cfg.Sinks.ForwardURL))
	}

	registry := prometheus.NewRegistry()
	if cfg.Sinks.Prometheus {
		outputs = append(outputs, sink.NewProm(registry))
	}

	tel := telemetry.New(res, outputs, telemetry.Config{
		MinLevel:      logkit.ParseLevel(cfg.Telemetry.MinLogLevel),
		FlushInterval: cfg.Telemetry.FlushInterval,
		Fallback:      logger,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Instrument(tel))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := newHandlers(cfg, tel, history, broadcast)
	wsHandler := ws.NewHandler(broadcast, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Retained telemetry
	router.GET("/traces", handlers.ListTraces)
	router.GET("/traces/:id", handlers.GetTrace)
	router.GET("/report", handlers.Report)
	router.GET("/logs", handlers.Logs)

	// Prometheus exposition
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	logger.Info("Server initialized",
		zap.String("service", cfg.Service.Name),
		zap.String("environment", cfg.Service.Environment),
	)

	return &Server{
		router:    router,
		config:    cfg,
		logger:    logger,
		telemetry: tel,
		history:   history,
		broadcast: broadcast,
		file:      file,
	}, nil
}

// Telemetry exposes the engine so callers can instrument their own work.
func (s *Server) Telemetry() *telemetry.Telemetry {
	return s.telemetry
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close flushes pending telemetry and releases sink resources.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.telemetry.Close()

	if s.file != nil {
		if err := s.file.Close(); err != nil {
			s.logger.Error("Failed to close telemetry file", zap.Error(err))
			return fmt.Errorf("failed to close telemetry file: %w", err)
		}
	}

	s.logger.Sync()
	return nil
}
