package config

import (
	"os"

	"github.com/rs/zerolog"
)

// testModeEnvVar is the environment variable name for enabling test mode.
const testModeEnvVar = EnvPrefix + "TEST_MODE"

// IsTestMode returns true if test mode is enabled via environment variable.
// Only the exact string "true" enables test mode.
func IsTestMode() bool {
	return os.Getenv(testModeEnvVar) == "true"
}

// ValidateTestModeEnv logs a warning when CARBONFOOTPRINT_TEST_MODE holds
// something other than "true", "false" or nothing. Such values leave test
// mode disabled.
func ValidateTestModeEnv(logger zerolog.Logger) {
	val := os.Getenv(testModeEnvVar)
	if val != "" && val != "true" && val != "false" {
		logger.Warn().
			Str("env_var", testModeEnvVar).
			Str("value", val).
			Msg("Invalid CARBONFOOTPRINT_TEST_MODE value; treating as disabled")
	}
}
