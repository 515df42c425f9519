package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(testModeEnvVar, "")

	cfg, err := Load("", zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, ":9090", cfg.GRPC.Addr)
	assert.Equal(t, ProviderNominatim, cfg.Location.Provider)
	assert.Equal(t, 5, cfg.Location.MaxResults)
	assert.Equal(t, ProviderOpenMeteo, cfg.Weather.Provider)
	assert.False(t, cfg.Report.Kafka.Enabled())
	assert.False(t, cfg.TestMode)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(testModeEnvVar, "")
	path := writeConfig(t, `
log:
  level: debug
  format: console
http:
  addr: ":8181"
  cors:
    allowed_origins: ["https://app.example.com"]
location:
  cache_size: 32
  timeout: 3s
weather:
  provider: static
report:
  kafka:
    brokers: ["kafka-1:9092", "kafka-2:9092"]
    topic: footprints
`)

	cfg, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ":8181", cfg.HTTP.Addr)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.HTTP.CORS.AllowedOrigins)
	assert.Equal(t, DefaultCORSMaxAge, cfg.HTTP.CORS.MaxAge)
	assert.Equal(t, 32, cfg.Location.CacheSize)
	assert.Equal(t, 3*time.Second, cfg.Location.Timeout)
	assert.Equal(t, ProviderNominatim, cfg.Location.Provider, "unset keys keep defaults")
	assert.Equal(t, ProviderStatic, cfg.Weather.Provider)
	assert.True(t, cfg.Report.Kafka.Enabled())
	assert.Equal(t, "footprints", cfg.Report.Kafka.Topic)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv(testModeEnvVar, "")
	path := writeConfig(t, "http:\n  addr: \":8181\"\n")

	t.Setenv("CARBONFOOTPRINT_HTTP_ADDR", ":9999")
	t.Setenv("CARBONFOOTPRINT_KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("CARBONFOOTPRINT_LOCATION_CACHE_SIZE", "7")
	t.Setenv("CARBONFOOTPRINT_OTLP_ENDPOINT", "collector:4317")

	cfg, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Report.Kafka.Brokers)
	assert.Equal(t, 7, cfg.Location.CacheSize)
	assert.Equal(t, "collector:4317", cfg.Tracing.OTLPEndpoint)
}

func TestLoad_TestModeSwitchesProviders(t *testing.T) {
	t.Setenv(testModeEnvVar, "true")

	cfg, err := Load("", zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, cfg.TestMode)
	assert.Equal(t, ProviderStatic, cfg.Location.Provider)
	assert.Equal(t, ProviderStatic, cfg.Weather.Provider)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(testModeEnvVar, "")

	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing file", file: "/does/not/exist.yaml", wantErr: "read config file"},
		{name: "bad yaml", file: "::not yaml", wantErr: "parse config file"},
		{name: "unknown location provider", env: map[string]string{"CARBONFOOTPRINT_LOCATION_PROVIDER": "google"}, wantErr: "unknown location.provider"},
		{name: "unknown weather provider", env: map[string]string{"CARBONFOOTPRINT_WEATHER_PROVIDER": "darksky"}, wantErr: "unknown weather.provider"},
		{name: "bad log format", env: map[string]string{"CARBONFOOTPRINT_LOG_FORMAT": "xml"}, wantErr: "log.format"},
		{name: "bad log level", env: map[string]string{"CARBONFOOTPRINT_LOG_LEVEL": "loud"}, wantErr: "log.level"},
		{name: "bad cache size", env: map[string]string{"CARBONFOOTPRINT_LOCATION_CACHE_SIZE": "many"}, wantErr: "LOCATION_CACHE_SIZE"},
		{name: "bad shutdown timeout", env: map[string]string{"CARBONFOOTPRINT_SHUTDOWN_TIMEOUT": "soon"}, wantErr: "SHUTDOWN_TIMEOUT"},
		{name: "kafka without topic", file: "report:\n  kafka:\n    brokers: [\"a:9092\"]\n    topic: \"\"\n", wantErr: "report.kafka.topic"},
		{
			name: "wildcard with credentials",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_ALLOWED_ORIGINS":   "*",
				"CARBONFOOTPRINT_CORS_ALLOW_CREDENTIALS": "true",
			},
			wantErr: "wildcard origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := tt.file
			if path != "" && path[0] != '/' {
				path = writeConfig(t, tt.file)
			}

			_, err := Load(path, zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"service":"carbonfootprint"`)
}

func TestNewLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("chatty", "json", &buf)

	logger.Debug().Msg("debug")
	logger.Info().Msg("info")

	assert.NotContains(t, buf.String(), `"message":"debug"`)
	assert.Contains(t, buf.String(), `"message":"info"`)
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", "console", &buf)
	logger.Info().Msg("hello console")

	assert.Contains(t, buf.String(), "hello console")
	assert.NotContains(t, buf.String(), `"message"`)
}
