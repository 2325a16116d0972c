// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/gradebook/internal/core"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Gradebook GradebookConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// GradebookConfig holds table import and export settings.
type GradebookConfig struct {
	// Delimiter separates fields of uploaded files (default: ;)
	Delimiter string `env:"GRADEBOOK_DELIMITER" default:";"`

	// ExportDelimiter separates fields of exported files (default: ;)
	ExportDelimiter string `env:"GRADEBOOK_EXPORT_DELIMITER" default:";"`

	// ExportLineEnding is crlf or lf (default: crlf)
	ExportLineEnding string `env:"GRADEBOOK_EXPORT_LINE_ENDING" default:"crlf"`

	// ExportQuote wraps every exported field in double quotes (default: false)
	ExportQuote bool `env:"GRADEBOOK_EXPORT_QUOTE" default:"false"`

	// MaxFileSize is the maximum allowed upload size in bytes (default: 10MB)
	MaxFileSize int64 `env:"GRADEBOOK_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrentImports bounds parallel imports (default: 4)
	MaxConcurrentImports int `env:"GRADEBOOK_MAX_CONCURRENT_IMPORTS" default:"4"`

	// ImportWait is how long an import waits for a free slot (default: 10s)
	ImportWait time.Duration `env:"GRADEBOOK_IMPORT_WAIT" default:"10s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for upload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled mounts the metrics endpoint (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Path is where metrics are served (default: /metrics)
	Path string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Separator returns the import delimiter as a rune.
// Callers should only use it after Validate has succeeded.
func (c *GradebookConfig) Separator() rune {
	return delimiterRune(c.Delimiter)
}

// ExportSeparator returns the export delimiter as a rune.
func (c *GradebookConfig) ExportSeparator() rune {
	return delimiterRune(c.ExportDelimiter)
}

// LineEnding returns the export line terminator.
func (c *GradebookConfig) LineEnding() string {
	if strings.EqualFold(c.ExportLineEnding, "lf") {
		return core.LineEndingLF
	}
	return core.LineEndingCRLF
}

// ServiceConfig converts the settings for core.NewService.
func (c *GradebookConfig) ServiceConfig() core.ServiceConfig {
	export := core.DefaultTextOptions()
	export.Separator = c.ExportSeparator()
	export.LineEnding = c.LineEnding()
	export.Quote = c.ExportQuote

	return core.ServiceConfig{
		Separator:            c.Separator(),
		Export:               export,
		MaxFileSize:          c.MaxFileSize,
		MaxConcurrentImports: c.MaxConcurrentImports,
		ImportWait:           c.ImportWait,
	}
}

// delimiterRune decodes a one-character delimiter. "\t" and "tab" name the
// tab character since it is awkward to put in an env file.
func delimiterRune(s string) rune {
	switch strings.ToLower(s) {
	case `\t`, "tab":
		return '\t'
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0
	}
	return r
}
