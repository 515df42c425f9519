// Package config loads service settings from an optional YAML file and
// CARBONFOOTPRINT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "CARBONFOOTPRINT_"

// Provider names.
const (
	ProviderNominatim = "nominatim"
	ProviderOpenMeteo = "open-meteo"
	ProviderStatic    = "static"
)

// Config holds all service settings.
type Config struct {
	Log             LogConfig      `yaml:"log"`
	HTTP            HTTPConfig     `yaml:"http"`
	GRPC            GRPCConfig     `yaml:"grpc"`
	Location        LocationConfig `yaml:"location"`
	Weather         WeatherConfig  `yaml:"weather"`
	Report          ReportConfig   `yaml:"report"`
	Tracing         TracingConfig  `yaml:"tracing"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`

	// TestMode is set from CARBONFOOTPRINT_TEST_MODE only.
	TestMode bool `yaml:"-"`
}

// LogConfig selects the log level and output format (json or console).
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig configures the JSON HTTP API.
type HTTPConfig struct {
	Addr string     `yaml:"addr"`
	CORS CORSConfig `yaml:"cors"`
}

// GRPCConfig configures the gRPC API.
type GRPCConfig struct {
	Addr string `yaml:"addr"`
}

// LocationConfig configures location search.
type LocationConfig struct {
	Provider   string        `yaml:"provider"`
	BaseURL    string        `yaml:"base_url"`
	UserAgent  string        `yaml:"user_agent"`
	RateLimit  float64       `yaml:"rate_limit_rps"`
	Burst      int           `yaml:"burst"`
	CacheSize  int           `yaml:"cache_size"`
	MaxResults int           `yaml:"max_results"`
	Timeout    time.Duration `yaml:"timeout"`
}

// WeatherConfig configures the weather lookup.
type WeatherConfig struct {
	Provider      string        `yaml:"provider"`
	ForecastURL   string        `yaml:"forecast_url"`
	AirQualityURL string        `yaml:"air_quality_url"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ReportConfig configures where calculated reports are published.
type ReportConfig struct {
	Kafka KafkaConfig `yaml:"kafka"`
}

// KafkaConfig enables Kafka publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Environment  string `yaml:"environment"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:  LogConfig{Level: "info", Format: "json"},
		HTTP: HTTPConfig{Addr: ":8080", CORS: CORSConfig{MaxAge: DefaultCORSMaxAge}},
		GRPC: GRPCConfig{Addr: ":9090"},
		Location: LocationConfig{
			Provider:   ProviderNominatim,
			BaseURL:    "https://nominatim.openstreetmap.org",
			UserAgent:  "carbonfootprint/1.0",
			RateLimit:  1,
			Burst:      1,
			CacheSize:  256,
			MaxResults: 5,
			Timeout:    10 * time.Second,
		},
		Weather: WeatherConfig{
			Provider:      ProviderOpenMeteo,
			ForecastURL:   "https://api.open-meteo.com/v1/forecast",
			AirQualityURL: "https://air-quality-api.open-meteo.com/v1/air-quality",
			Timeout:       10 * time.Second,
		},
		Report:          ReportConfig{Kafka: KafkaConfig{Topic: "carbon-footprints"}},
		Tracing:         TracingConfig{Environment: "development"},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and test mode, then validates the result.
func Load(path string, logger zerolog.Logger) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(logger); err != nil {
		return nil, err
	}

	ValidateTestModeEnv(logger)
	if IsTestMode() {
		cfg.TestMode = true
		cfg.Location.Provider = ProviderStatic
		cfg.Weather.Provider = ProviderStatic
		logger.Info().Msg("Test mode enabled; using static location and weather providers")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(logger zerolog.Logger) error {
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.HTTP.Addr, "HTTP_ADDR")
	setString(&c.GRPC.Addr, "GRPC_ADDR")

	setString(&c.Location.Provider, "LOCATION_PROVIDER")
	setString(&c.Location.BaseURL, "NOMINATIM_URL")
	setString(&c.Location.UserAgent, "USER_AGENT")
	if err := setInt(&c.Location.CacheSize, "LOCATION_CACHE_SIZE"); err != nil {
		return err
	}
	if err := setFloat(&c.Location.RateLimit, "LOCATION_RATE_LIMIT"); err != nil {
		return err
	}

	setString(&c.Weather.Provider, "WEATHER_PROVIDER")
	setString(&c.Weather.ForecastURL, "FORECAST_URL")
	setString(&c.Weather.AirQualityURL, "AIR_QUALITY_URL")

	if v := env("KAFKA_BROKERS"); v != "" {
		c.Report.Kafka.Brokers = splitList(v)
	}
	setString(&c.Report.Kafka.Topic, "KAFKA_TOPIC")

	setString(&c.Tracing.OTLPEndpoint, "OTLP_ENDPOINT")
	setString(&c.Tracing.Environment, "ENVIRONMENT")

	if v := env("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid %sSHUTDOWN_TIMEOUT %q", EnvPrefix, v)
		}
		c.ShutdownTimeout = d
	}

	return applyCORSEnv(&c.HTTP.CORS, logger)
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	switch c.Location.Provider {
	case ProviderNominatim:
		if c.Location.BaseURL == "" {
			errs = append(errs, errors.New("location.base_url is required for nominatim"))
		}
		if c.Location.RateLimit <= 0 {
			errs = append(errs, errors.New("location.rate_limit_rps must be positive"))
		}
	case ProviderStatic:
	default:
		errs = append(errs, fmt.Errorf("unknown location.provider %q", c.Location.Provider))
	}
	if c.Location.CacheSize < 0 {
		errs = append(errs, errors.New("location.cache_size must not be negative"))
	}
	if c.Location.MaxResults < 1 || c.Location.MaxResults > 50 {
		errs = append(errs, fmt.Errorf("location.max_results must be between 1 and 50, got %d", c.Location.MaxResults))
	}

	switch c.Weather.Provider {
	case ProviderOpenMeteo, ProviderStatic:
	default:
		errs = append(errs, fmt.Errorf("unknown weather.provider %q", c.Weather.Provider))
	}

	if c.Report.Kafka.Enabled() && c.Report.Kafka.Topic == "" {
		errs = append(errs, errors.New("report.kafka.topic is required when brokers are set"))
	}

	if err := c.HTTP.CORS.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := env(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, v, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := env(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, v, err)
	}
	*dst = f
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
