package config

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	// MaxMessageBytes limits a single inbound WebSocket frame.
	MaxMessageBytes int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	// EventsPerMinute limits inbound events per connection; 0 disables the limit.
	EventsPerMinute int `mapstructure:"events_per_minute" yaml:"events_per_minute"`
	// SessionBuffer is the per-session queue capacity; a session whose
	// outbound queue overflows is disconnected.
	SessionBuffer int `mapstructure:"session_buffer" yaml:"session_buffer"`
	// AllowedOrigins are WebSocket origin patterns accepted besides the request host.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	// HistoryLimit caps chat history responses.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		DatabasePath:      "wireboard.db",
		JWTSecret:         "change-me",
		JWTIssuer:         "wireboard",
		JWTAudience:       "wireboard",
		JWTTTL:            24 * time.Hour,
		MaxMessageBytes:   5 << 20,
		EventsPerMinute:   6000,
		SessionBuffer:     256,
		HistoryLimit:      50,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.JWTIssuer != "" {
		c.JWTIssuer = other.JWTIssuer
	}
	if other.JWTAudience != "" {
		c.JWTAudience = other.JWTAudience
	}
	if other.JWTTTL != 0 {
		c.JWTTTL = other.JWTTTL
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.EventsPerMinute != 0 {
		c.EventsPerMinute = other.EventsPerMinute
	}
	if other.SessionBuffer != 0 {
		c.SessionBuffer = other.SessionBuffer
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
}

// normalize trims origin patterns and drops empty entries, which appear when
// the list comes from a comma separated env var.
func (c *Config) normalize() {
	origins := lo.FlatMap(c.AllowedOrigins, func(o string, _ int) []string {
		return strings.Split(o, ",")
	})
	origins = lo.Map(origins, func(o string, _ int) string { return strings.TrimSpace(o) })
	c.AllowedOrigins = lo.Uniq(lo.Compact(origins))
}
