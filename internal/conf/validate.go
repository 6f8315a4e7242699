// conf/validate.go

package conf

import (
	"fmt"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateDatabaseSettings(&settings.Database); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateModelSettings(&settings.Model); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateProcessingSettings(&settings.Processing); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		ve.Errors = append(ve.Errors, "sentry: dsn is required when error reporting is enabled")
	}

	if err := validateEnvLogLevel(settings.Main.Log.Level); err != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf("log level: %v", err))
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateDatabaseSettings(settings *DatabaseSettings) error {
	var errs []string

	if settings.URL != "" {
		if err := validateEnvDatabaseURL(settings.URL); err != nil {
			errs = append(errs, err.Error())
		}
	} else {
		if err := validateEnvDriver(settings.Driver); err != nil {
			errs = append(errs, fmt.Sprintf("driver: %v", err))
		}
		if settings.Host == "" {
			errs = append(errs, "host is required when no URL is configured")
		}
		if settings.Name == "" {
			errs = append(errs, "database name is required when no URL is configured")
		}
	}

	if settings.Port < 0 || settings.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be between 0 and 65535, got %d", settings.Port))
	}

	if settings.SlowQueryThreshold < 0 {
		errs = append(errs, "slow query threshold must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("database settings errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateModelSettings(settings *ModelSettings) error {
	var errs []string

	inUnit := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and 1, got %g", name, v))
		}
	}
	inUnit("detection confidence threshold", settings.Detection.ConfidenceThreshold)
	inUnit("detection NMS threshold", settings.Detection.NMSThreshold)
	inUnit("matching similarity threshold", settings.Matching.SimilarityThreshold)

	if settings.Detection.MaxDetections <= 0 {
		errs = append(errs, "max detections must be positive")
	}
	if settings.FeatureExtraction.BatchSize <= 0 {
		errs = append(errs, "feature extraction batch size must be positive")
	}
	if settings.Matching.TopK <= 0 {
		errs = append(errs, "matching top-k must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("model settings errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateProcessingSettings(settings *ProcessingSettings) error {
	var errs []string

	switch settings.Device {
	case "cuda", "cpu":
	default:
		errs = append(errs, fmt.Sprintf("device must be cuda or cpu, got %q", settings.Device))
	}
	if settings.ImageWidth <= 0 || settings.ImageHeight <= 0 {
		errs = append(errs, "image size must be positive")
	}
	if settings.BatchSize <= 0 {
		errs = append(errs, "batch size must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("processing settings errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
