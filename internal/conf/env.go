// env.go - Environment variable configuration and validation for artid
package conf

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		// Database connection
		{"database.url", "DATABASE_URL", validateEnvDatabaseURL},
		{"database.host", "DB_HOST", nil},
		{"database.port", "DB_PORT", validateEnvPort},
		{"database.name", "DB_NAME", nil},
		{"database.user", "DB_USER", nil},
		{"database.password", "DB_PASSWORD", nil},
		{"database.driver", "DB_DRIVER", validateEnvDriver},

		// Processing
		{"processing.usegpu", "USE_GPU", validateEnvBool},

		// Logging
		{"main.log.level", "LOG_LEVEL", validateEnvLogLevel},

		// Error reporting
		{"sentry.dsn", "SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					// never echo credentials back
					shown := envValue
					if binding.EnvVar == "DATABASE_URL" {
						shown = "<redacted>"
					}
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, shown, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// supportedSchemes lists URL schemes the datastore can open, before any +driver suffix
var supportedSchemes = []string{"sqlite", "postgres", "postgresql", "mysql"}

func validateEnvDriver(value string) error {
	base, _, _ := strings.Cut(strings.ToLower(value), "+")
	if !slices.Contains(supportedSchemes, base) {
		return fmt.Errorf("must be one of: %s", strings.Join(supportedSchemes, ", "))
	}
	return nil
}

func validateEnvDatabaseURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("malformed database URL")
	}
	if u.Scheme == "" {
		return fmt.Errorf("database URL has no scheme")
	}
	return validateEnvDriver(u.Scheme)
}

var logLevels = []string{"trace", "debug", "info", "warn", "warning", "error", "critical"}

func validateEnvLogLevel(value string) error {
	if !slices.Contains(logLevels, strings.ToLower(strings.TrimSpace(value))) {
		return fmt.Errorf("must be one of: %s", strings.Join(logLevels, ", "))
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables(v *viper.Viper) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return bindEnvVars(v)
}
