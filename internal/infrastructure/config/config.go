package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all agent configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service" toml:"service"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Sinks     SinkConfig      `yaml:"sinks" toml:"sinks"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
}

// ServiceConfig identifies the instrumented service.
type ServiceConfig struct {
	Name        string `envconfig:"SERVICE_NAME" default:"minitel" yaml:"name" toml:"name"`
	Version     string `envconfig:"SERVICE_VERSION" default:"0.1.0" yaml:"version" toml:"version"`
	Environment string `envconfig:"ENVIRONMENT" default:"development" yaml:"environment" toml:"environment"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"9090" yaml:"port" toml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" yaml:"host" toml:"host"`
}

// TelemetryConfig holds engine configuration.
type TelemetryConfig struct {
	FlushInterval time.Duration `envconfig:"FLUSH_INTERVAL" default:"5s" yaml:"flush_interval" toml:"flush_interval"`
	MinLogLevel   string        `envconfig:"MIN_LOG_LEVEL" default:"info" yaml:"min_log_level" toml:"min_log_level"`
	HistoryTraces int           `envconfig:"HISTORY_TRACES" default:"256" yaml:"history_traces" toml:"history_traces"`
	HistoryLogs   int           `envconfig:"HISTORY_LOGS" default:"1024" yaml:"history_logs" toml:"history_logs"`
}

// SinkConfig selects telemetry outputs.
type SinkConfig struct {
	Console      bool   `envconfig:"SINK_CONSOLE" default:"true" yaml:"console" toml:"console"`
	FilePath     string `envconfig:"SINK_FILE" yaml:"file_path" toml:"file_path"`
	ForwardURL   string `envconfig:"SINK_FORWARD_URL" yaml:"forward_url" toml:"forward_url"`
	Prometheus   bool   `envconfig:"SINK_PROMETHEUS" default:"true" yaml:"prometheus" toml:"prometheus"`
	StreamBuffer int    `envconfig:"SINK_STREAM_BUFFER" default:"64" yaml:"stream_buffer" toml:"stream_buffer"`
}

// LogConfig holds the agent's own logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development" toml:"development"`
}

// RateLimitConfig holds per-IP rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads configuration from environment variables, then overlays
// values from a YAML or TOML file chosen by extension.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	case strings.HasSuffix(path, ".toml"):
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse toml config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "minitel",
			Version:     "0.1.0",
			Environment: "development",
		},
		Server: ServerConfig{
			Port: "9090",
			Host: "0.0.0.0",
		},
		Telemetry: TelemetryConfig{
			FlushInterval: 5 * time.Second,
			MinLogLevel:   "info",
			HistoryTraces: 256,
			HistoryLogs:   1024,
		},
		Sinks: SinkConfig{
			Console:      true,
			Prometheus:   true,
			StreamBuffer: 64,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
