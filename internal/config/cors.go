package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultCORSMaxAge is the preflight cache lifetime in seconds.
const DefaultCORSMaxAge = 86400

// CORSConfig controls the CORS headers of the HTTP API. An empty
// AllowedOrigins list with AllowAll false disables CORS.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowAll         bool     `yaml:"allow_all"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// Enabled reports whether any origin is allowed.
func (c CORSConfig) Enabled() bool {
	return c.AllowAll || len(c.AllowedOrigins) > 0
}

// Allows reports whether origin may make cross-origin requests.
func (c CORSConfig) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	if c.AllowAll {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// Validate rejects credentials combined with a wildcard origin.
func (c CORSConfig) Validate() error {
	if c.AllowAll && c.AllowCredentials {
		return errors.New("cannot enable credentials with wildcard origin (*); security risk")
	}
	return nil
}

// applyCORSEnv overlays the CORS environment variables onto cfg.
func applyCORSEnv(cfg *CORSConfig, logger zerolog.Logger) error {
	if origins := os.Getenv(EnvPrefix + "CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = nil
		cfg.AllowAll = false
		for _, o := range strings.Split(origins, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed == "*" {
				cfg.AllowAll = true
				continue
			}
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}
	if cfg.AllowAll {
		logger.Warn().Msg("CORS wildcard origin (*) is insecure; use specific origins in production")
	}

	if v := os.Getenv(EnvPrefix + "CORS_ALLOW_CREDENTIALS"); v != "" {
		cfg.AllowCredentials = strings.ToLower(v) == "true"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if maxAgeStr := os.Getenv(EnvPrefix + "CORS_MAX_AGE"); maxAgeStr != "" {
		if parsed, err := strconv.Atoi(maxAgeStr); err == nil && parsed >= 0 {
			cfg.MaxAge = parsed
		} else {
			logger.Warn().Str("value", maxAgeStr).Msg("invalid CARBONFOOTPRINT_CORS_MAX_AGE, using default")
			cfg.MaxAge = DefaultCORSMaxAge
		}
	}

	logger.Debug().
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("allow_all", cfg.AllowAll).
		Int("max_age", cfg.MaxAge).
		Msg("CORS configuration applied")

	return nil
}
