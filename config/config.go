package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Transport names accepted by MCP_TRANSPORT
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Server transport configuration
	Server ServerConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Query execution configuration
	Query QueryConfig

	// Store circuit breaker configuration
	Breaker BreakerConfig

	// HTTP configuration
	HTTP HTTPConfig

	// Kafka audit configuration
	Kafka KafkaConfig

	// Logging configuration
	Log LogConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL           string
	MigrateOnBoot bool
}

// ServerConfig selects how tool calls reach the dispatcher
type ServerConfig struct {
	Transport   string
	Host        string
	Port        int
	BaseURL     string // public base URL advertised by the SSE transport
	MetricsAddr string // listen address for /metrics when not serving HTTP
}

// RateLimitConfig holds the sliding window budget
type RateLimitConfig struct {
	RequestsPerWindow    int
	WindowSeconds        int
	Scope                string // global or client
	Backend              string // memory or redis
	RedisURL             string
	SweepIntervalSeconds int
}

// QueryConfig bounds store access per call
type QueryConfig struct {
	TimeoutSeconds int
}

// BreakerConfig holds store circuit breaker settings
type BreakerConfig struct {
	MaxRequests  int
	IntervalSec  int
	TimeoutSec   int
	MinRequests  int
	FailureRatio float64
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	CORSAllowedOrigins string
	AuthToken          string
}

// KafkaConfig holds the optional audit event sink
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LogConfig holds logger settings
type LogConfig struct {
	Production bool
	Level      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MigrateOnBoot: getEnvBool("MIGRATE_ON_BOOT", false),
		},
		Server: ServerConfig{
			Transport:   strings.ToLower(getEnvString("MCP_TRANSPORT", TransportStdio)),
			Host:        getEnvString("MCP_HOST", "0.0.0.0"),
			Port:        getEnvInt("MCP_PORT", 8000),
			BaseURL:     os.Getenv("MCP_BASE_URL"),
			MetricsAddr: os.Getenv("METRICS_ADDR"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow:    getEnvInt("RATE_LIMIT_REQUESTS", 60),
			WindowSeconds:        getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			Scope:                strings.ToLower(getEnvString("RATE_LIMIT_SCOPE", "global")),
			Backend:              strings.ToLower(getEnvString("RATE_LIMIT_BACKEND", "memory")),
			RedisURL:             os.Getenv("REDIS_URL"),
			SweepIntervalSeconds: getEnvInt("RATE_LIMIT_SWEEP_SECONDS", 60),
		},
		Query: QueryConfig{
			TimeoutSeconds: getEnvInt("QUERY_TIMEOUT_SECONDS", 10),
		},
		Breaker: BreakerConfig{
			MaxRequests:  getEnvInt("BREAKER_MAX_REQUESTS", 3),
			IntervalSec:  getEnvInt("BREAKER_INTERVAL_SECONDS", 60),
			TimeoutSec:   getEnvInt("BREAKER_TIMEOUT_SECONDS", 30),
			MinRequests:  getEnvInt("BREAKER_MIN_REQUESTS", 5),
			FailureRatio: getEnvFloatRange("BREAKER_FAILURE_RATIO", 0.5, 0.01, 1.0),
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			AuthToken:          os.Getenv("MCP_TOKEN"),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS"),
			Topic:   getEnvString("KAFKA_AUDIT_TOPIC", "findata.tool-calls"),
		},
		Log: LogConfig{
			Production: getEnvBool("LOG_JSON", false),
			Level:      getEnvString("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportSSE, TransportHTTP:
	default:
		return fmt.Errorf("MCP_TRANSPORT must be stdio, sse or http, got %q", c.Server.Transport)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("MCP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.RateLimit.Scope {
	case "global", "client":
	default:
		return fmt.Errorf("RATE_LIMIT_SCOPE must be global or client, got %q", c.RateLimit.Scope)
	}
	switch c.RateLimit.Backend {
	case "memory":
	case "redis":
		if c.RateLimit.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be memory or redis, got %q", c.RateLimit.Backend)
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.RateLimit.RequestsPerWindow)
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive, got %d", c.RateLimit.WindowSeconds)
	}

	if c.Query.TimeoutSeconds <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT_SECONDS must be positive, got %d", c.Query.TimeoutSeconds)
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_AUDIT_TOPIC must be set when KAFKA_BROKERS is")
	}

	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasKafka returns true if an audit sink is configured
func (c *Config) HasKafka() bool {
	return len(c.Kafka.Brokers) > 0
}

// Addr returns the host:port the network transports listen on
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// RateWindow returns the rate limit window as a duration
func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// QueryTimeout returns the per-call store deadline
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Query.TimeoutSeconds) * time.Second
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatRange(key string, defaultValue, minVal, maxVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= minVal && parsed <= maxVal {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: "",
		},
		Server: ServerConfig{
			Transport: TransportHTTP,
			Host:      "127.0.0.1",
			Port:      8000,
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow:    60,
			WindowSeconds:        60,
			Scope:                "global",
			Backend:              "memory",
			SweepIntervalSeconds: 60,
		},
		Query: QueryConfig{
			TimeoutSeconds: 10,
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			IntervalSec:  60,
			TimeoutSec:   30,
			MinRequests:  5,
			FailureRatio: 0.5,
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: "*",
		},
		Kafka: KafkaConfig{
			Topic: "findata.tool-calls",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
