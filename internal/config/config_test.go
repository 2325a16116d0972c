package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gradebook/internal/core"
)

func env(vars map[string]string) Lookup {
	return func(key string) string { return vars[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ";", cfg.Gradebook.Delimiter)
	assert.Equal(t, "crlf", cfg.Gradebook.ExportLineEnding)
	assert.False(t, cfg.Gradebook.ExportQuote)
	assert.Equal(t, int64(10485760), cfg.Gradebook.MaxFileSize)
	assert.Equal(t, 4, cfg.Gradebook.MaxConcurrentImports)
	assert.Equal(t, 10*time.Second, cfg.Gradebook.ImportWait)
	assert.Equal(t, 100, cfg.Rate.RequestsPerMinute)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_PORT":                  "9090",
		"GRADEBOOK_DELIMITER":          ",",
		"GRADEBOOK_EXPORT_LINE_ENDING": "lf",
		"GRADEBOOK_EXPORT_QUOTE":       "true",
		"LOG_LEVEL":                    "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ',', cfg.Gradebook.Separator())
	assert.Equal(t, "debug", cfg.Logging.Level)

	svc := cfg.Gradebook.ServiceConfig()
	assert.Equal(t, ',', svc.Separator)
	assert.Equal(t, ';', svc.Export.Separator)
	assert.Equal(t, core.LineEndingLF, svc.Export.LineEnding)
	assert.True(t, svc.Export.Quote)
	assert.Equal(t, int64(10485760), svc.MaxFileSize)
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"PORT": "3000"}))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)

	cfg, err = LoadFrom(env(map[string]string{"PORT": "3000", "SERVER_PORT": "4000"}))
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port, "primary variable wins")
}

func TestLoad_Duration(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_READ_TIMEOUT":     "45s",
		"SERVER_SHUTDOWN_TIMEOUT": "1m30s",
	}))
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 90*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"TRUSTED_PROXIES": "10.0.0.0/8, 172.16.0.0/12 , ,192.168.0.0/16",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}, cfg.Security.TrustedProxies)
}

func TestLoad_InvalidValue(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"integer", map[string]string{"SERVER_PORT": "eighty"}},
		{"duration", map[string]string{"SERVER_READ_TIMEOUT": "soon"}},
		{"boolean", map[string]string{"GRADEBOOK_EXPORT_QUOTE": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.vars))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config load")
		})
	}
}

func TestGradebookConfig_Separator(t *testing.T) {
	tests := []struct {
		delimiter string
		want      rune
	}{
		{";", ';'},
		{",", ','},
		{`\t`, '\t'},
		{"tab", '\t'},
		{"§", '§'},
		{"", 0},
		{";;", 0},
	}

	for _, tt := range tests {
		t.Run(tt.delimiter, func(t *testing.T) {
			c := GradebookConfig{Delimiter: tt.delimiter}
			assert.Equal(t, tt.want, c.Separator())
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ShutdownTimeout: time.Second, RequestTimeout: time.Minute},
		Gradebook: GradebookConfig{
			Delimiter:            ";",
			ExportDelimiter:      ";",
			ExportLineEnding:     "crlf",
			MaxFileSize:          1024,
			MaxConcurrentImports: 2,
		},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 100, UploadLimit: 10},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"quote delimiter", func(c *Config) { c.Gradebook.Delimiter = `"` }, "GRADEBOOK_DELIMITER"},
		{"multi-char export delimiter", func(c *Config) { c.Gradebook.ExportDelimiter = "::" }, "GRADEBOOK_EXPORT_DELIMITER"},
		{"line ending", func(c *Config) { c.Gradebook.ExportLineEnding = "cr" }, "GRADEBOOK_EXPORT_LINE_ENDING"},
		{"file size", func(c *Config) { c.Gradebook.MaxFileSize = 0 }, "GRADEBOOK_MAX_FILE_SIZE"},
		{"import slots", func(c *Config) { c.Gradebook.MaxConcurrentImports = 0 }, "GRADEBOOK_MAX_CONCURRENT_IMPORTS"},
		{"rate", func(c *Config) { c.Rate.RequestsPerMinute = 0 }, "RATE_LIMIT_REQUESTS_PER_MINUTE"},
		{"rate disabled", func(c *Config) { c.Rate = RateLimitConfig{} }, ""},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "METRICS_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"
	cfg.Gradebook.ExportLineEnding = "nl"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "GRADEBOOK_EXPORT_LINE_ENDING")
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", (&ServerConfig{Host: "0.0.0.0", Port: 8080}).Addr())
	assert.Equal(t, ":9000", (&ServerConfig{Port: 9000}).Addr())
}

func TestConfig_String(t *testing.T) {
	s := validConfig().String()
	assert.Contains(t, s, `Delimiter: ";"`)
	assert.Contains(t, s, "Port: 8080")
}
