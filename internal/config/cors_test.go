package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCORSEnv(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name          string
		env           map[string]string
		expectedError string
		validate      func(t *testing.T, cfg CORSConfig)
	}{
		{
			name: "Defaults",
			validate: func(t *testing.T, cfg CORSConfig) {
				assert.False(t, cfg.Enabled())
				assert.Empty(t, cfg.AllowedOrigins)
				assert.False(t, cfg.AllowCredentials)
				assert.Equal(t, DefaultCORSMaxAge, cfg.MaxAge)
			},
		},
		{
			name: "Allowed Origins - Specific",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_ALLOWED_ORIGINS": "http://localhost:3000,https://app.example.com",
			},
			validate: func(t *testing.T, cfg CORSConfig) {
				assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.AllowedOrigins)
				assert.True(t, cfg.Allows("http://localhost:3000"))
				assert.False(t, cfg.Allows("https://evil.example.com"))
			},
		},
		{
			name: "Allowed Origins - Wildcard",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_ALLOWED_ORIGINS": "*",
			},
			validate: func(t *testing.T, cfg CORSConfig) {
				assert.Empty(t, cfg.AllowedOrigins)
				assert.True(t, cfg.AllowAll)
				assert.True(t, cfg.Allows("https://anything.example.com"))
				assert.False(t, cfg.Allows(""))
			},
		},
		{
			name: "Allowed Origins - Mixed Wildcard",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_ALLOWED_ORIGINS": "foo.com, *, bar.com",
			},
			validate: func(t *testing.T, cfg CORSConfig) {
				assert.Equal(t, []string{"foo.com", "bar.com"}, cfg.AllowedOrigins)
				assert.True(t, cfg.AllowAll)
			},
		},
		{
			name: "Allowed Origins - Whitespace",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_ALLOWED_ORIGINS": " a.com , b.com ",
			},
			validate: func(t *testing.T, cfg CORSConfig) {
				assert.Equal(t, []string{"a.com", "b.com"}, cfg.AllowedOrigins)
			},
		},
		{
			name: "Max Age - Valid",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_MAX_AGE": "3600",
			},
			validate: func(t *testing.T, cfg CORSConfig) {
				assert.Equal(t, 3600, cfg.MaxAge)
			},
		},
		{
			name: "Max Age - Invalid",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_MAX_AGE": "invalid",
			},
			validate: func(t *testing.T, cfg CORSConfig) {
				assert.Equal(t, DefaultCORSMaxAge, cfg.MaxAge)
			},
		},
		{
			name: "Max Age - Negative",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_MAX_AGE": "-5",
			},
			validate: func(t *testing.T, cfg CORSConfig) {
				assert.Equal(t, DefaultCORSMaxAge, cfg.MaxAge)
			},
		},
		{
			name: "Credentials - Case Insensitive",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_ALLOW_CREDENTIALS": "TRUE",
			},
			validate: func(t *testing.T, cfg CORSConfig) {
				assert.True(t, cfg.AllowCredentials)
			},
		},
		{
			name: "Credentials - False",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_ALLOW_CREDENTIALS": "false",
			},
			validate: func(t *testing.T, cfg CORSConfig) {
				assert.False(t, cfg.AllowCredentials)
			},
		},
		{
			name: "Fatal - Wildcard + Credentials",
			env: map[string]string{
				"CARBONFOOTPRINT_CORS_ALLOWED_ORIGINS":   "*",
				"CARBONFOOTPRINT_CORS_ALLOW_CREDENTIALS": "true",
			},
			expectedError: "cannot enable credentials with wildcard origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := CORSConfig{MaxAge: DefaultCORSMaxAge}
			err := applyCORSEnv(&cfg, logger)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}
