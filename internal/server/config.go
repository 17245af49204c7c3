// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the GoChat relay.
package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddr           = ":8080"
	defaultMaxClients     = 5
	defaultMaxIdentityLen = 50
	defaultReadBufferSize = 1024
	defaultOutboxSize     = 256
	defaultWriteTimeout   = 10 * time.Second
)

// RateLimitConfig defines the parameters for per-connection message rate
// limiting. The limiter is off unless Enabled is set.
type RateLimitConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Burst          int           `yaml:"burst"`
	RefillInterval time.Duration `yaml:"refill_interval"`
}

// Config holds the relay configuration.
type Config struct {
	Addr           string          `yaml:"addr"`
	HTTPAddr       string          `yaml:"http_addr"`
	MaxClients     int             `yaml:"max_clients"`
	MaxIdentityLen int             `yaml:"max_identity_len"`
	ReadBufferSize int             `yaml:"read_buffer_size"`
	OutboxSize     int             `yaml:"outbox_size"`
	WriteTimeout   time.Duration   `yaml:"write_timeout"`
	NotifyRejected bool            `yaml:"notify_rejected"`
	ReusePort      bool            `yaml:"reuse_port"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	LogLevel       string          `yaml:"log_level"`
	LogFormat      string          `yaml:"log_format"`
}

func defaultConfig() Config {
	return Config{
		Addr:           defaultAddr,
		HTTPAddr:       "",
		MaxClients:     defaultMaxClients,
		MaxIdentityLen: defaultMaxIdentityLen,
		ReadBufferSize: defaultReadBufferSize,
		OutboxSize:     defaultOutboxSize,
		WriteTimeout:   defaultWriteTimeout,
		NotifyRejected: true,
		ReusePort:      true,
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		RateLimit: RateLimitConfig{
			Burst:          20,
			RefillInterval: time.Second,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}

	if cfg.MaxClients <= 0 {
		cfg.MaxClients = defaultMaxClients
	}

	if cfg.MaxIdentityLen <= 0 {
		cfg.MaxIdentityLen = defaultMaxIdentityLen
	}

	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = defaultReadBufferSize
	}

	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = defaultOutboxSize
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 20
	}

	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = time.Second
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// Validate reports settings that cannot be repaired by defaults.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr != "" && c.HTTPAddr == c.Addr {
		errs = append(errs, fmt.Errorf("http_addr %q collides with addr", c.HTTPAddr))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config instance from environment variables.
// Falls back to default values if environment variables are not set.
func NewConfigFromEnv() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(&cfg)
	cfg = sanitizeConfig(cfg)
	return &cfg
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// at path, and environment overrides, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	cfg = sanitizeConfig(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		cfg.Addr = addr
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}

	if v := os.Getenv("MAX_CLIENTS"); v != "" {
		cfg.MaxClients = parseIntValue(v, cfg.MaxClients)
	}

	if v := os.Getenv("MAX_IDENTITY_LEN"); v != "" {
		cfg.MaxIdentityLen = parseIntValue(v, cfg.MaxIdentityLen)
	}

	if v := os.Getenv("OUTBOX_SIZE"); v != "" {
		cfg.OutboxSize = parseIntValue(v, cfg.OutboxSize)
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	if enabled := os.Getenv("RATE_LIMIT_ENABLED"); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			cfg.RateLimit.Enabled = v
		}
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		cfg.RateLimit.Burst = parseIntValue(burst, cfg.RateLimit.Burst)
	}

	if interval := os.Getenv("RATE_LIMIT_REFILL_INTERVAL"); interval != "" {
		cfg.RateLimit.RefillInterval = parseRefillInterval(interval, cfg.RateLimit.RefillInterval)
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseIntValue(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

// parseRefillInterval accepts plain seconds ("2") or a duration ("500ms").
func parseRefillInterval(value string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
