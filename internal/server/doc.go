// Package server assembles the telemetry agent's HTTP surface.
//
// This package orchestrates all components:
//   - The engine (span tracker, metric aggregator, correlated loggers)
//   - Sink fanout chosen by configuration (console, file, forward, Prometheus)
//   - In-memory history backing the query endpoints
//   - Broadcast sink backing the WebSocket stream
//   - Middleware stack (recovery, self-instrumentation, CORS, rate limiting)
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Build the sink fanout and the engine
//  4. Setup HTTP routes and middleware
//  5. Start HTTP server
//  6. Graceful shutdown on signal, flushing pending metrics
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
