// Package config provides 12-factor configuration management for the
// telemetry agent.
//
// Configuration is loaded from environment variables with sensible
// defaults; an optional YAML or TOML file (chosen by extension) overlays
// the environment for deployments that prefer files.
//
// Configuration Sections:
//   - Service: name, version and environment of the instrumented service
//   - Server: HTTP API settings (port, host)
//   - Telemetry: flush interval, minimum log level, history depths
//   - Sinks: console, file, remote forwarding and Prometheus outputs
//   - Logging: the agent's own log level and output format
//   - RateLimit: per-IP rate limiting for the HTTP API
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("API on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - SERVICE_NAME, SERVICE_VERSION, ENVIRONMENT
//   - PORT, HOST
//   - FLUSH_INTERVAL, MIN_LOG_LEVEL, HISTORY_TRACES, HISTORY_LOGS
//   - SINK_CONSOLE, SINK_FILE, SINK_FORWARD_URL, SINK_PROMETHEUS
//   - LOG_LEVEL, LOG_DEV, RATE_LIMIT_RPS, RATE_LIMIT_BURST
package config
