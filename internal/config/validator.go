package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) []ValidationError {
	var errors []ValidationError

	if config.Histogram.MaxValue < 1 {
		errors = append(errors, ValidationError{
			Path:    "histogram.maxValue",
			Message: "must be at least 1",
		})
	}

	if config.Histogram.Epsilon <= 0 || config.Histogram.Epsilon > 0.5 {
		errors = append(errors, ValidationError{
			Path:    "histogram.epsilon",
			Message: fmt.Sprintf("must be in (0, 0.5], got %g", config.Histogram.Epsilon),
		})
	}

	if config.Histogram.Shards < 0 {
		errors = append(errors, ValidationError{
			Path:    "histogram.shards",
			Message: "cannot be negative",
		})
	}

	if len(config.Report.Percentiles) == 0 {
		errors = append(errors, ValidationError{
			Path:    "report.percentiles",
			Message: "at least one percentile is required",
		})
	}
	for i, p := range config.Report.Percentiles {
		if p < 0 || p > 100 {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("report.percentiles[%d]", i),
				Message: fmt.Sprintf("must be in [0, 100], got %g", p),
			})
		}
	}

	switch config.Report.Unit {
	case "raw", "ns", "us", "ms":
	default:
		errors = append(errors, ValidationError{
			Path:    "report.unit",
			Message: fmt.Sprintf("must be one of raw, ns, us, ms; got %q", config.Report.Unit),
		})
	}

	return errors
}
