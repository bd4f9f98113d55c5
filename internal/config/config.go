// Package config provides configuration parsing and validation for the
// histo CLI.
package config

import (
	"github.com/wesleyorama2/histo/histogram"
)

// Config is the top-level CLI configuration.
//
// Example YAML:
//
//	histogram:
//	  maxValue: 17179869184
//	  epsilon: 0.005
//	  shards: 8
//	report:
//	  percentiles: [50, 90, 99, 99.9]
//	  unit: ns
type Config struct {
	Histogram HistogramConfig `json:"histogram,omitempty" yaml:"histogram,omitempty"`
	Report    ReportConfig    `json:"report,omitempty" yaml:"report,omitempty"`
}

// HistogramConfig selects the bucket scheme and concurrency shape.
type HistogramConfig struct {
	// MaxValue is the largest sample distinguishable without saturation.
	MaxValue uint64 `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`

	// Epsilon is the worst-case relative bucket width.
	Epsilon float64 `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`

	// Shards is the number of writer shards; 0 means one per logical CPU.
	Shards int `json:"shards,omitempty" yaml:"shards,omitempty"`
}

// ReportConfig controls how percentile reports are rendered.
type ReportConfig struct {
	// Percentiles to report, in the human 0-100 convention.
	Percentiles []float64 `json:"percentiles,omitempty" yaml:"percentiles,omitempty"`

	// Unit formats values: "raw" prints bare integers, "ns" renders
	// values as durations.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// JSON switches the report to machine-readable output.
	JSON bool `json:"json,omitempty" yaml:"json,omitempty"`

	// NoColor disables ANSI colors.
	NoColor bool `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// DefaultConfig returns the configuration used when no file or flags are
// given.
func DefaultConfig() *Config {
	return &Config{
		Histogram: HistogramConfig{
			MaxValue: histogram.DefaultMaxValue,
			Epsilon:  histogram.DefaultEpsilon,
			Shards:   0,
		},
		Report: ReportConfig{
			Percentiles: []float64{50, 75, 90, 95, 99, 99.9},
			Unit:        "raw",
		},
	}
}

// applyDefaults fills zero-valued fields after parsing a file.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Histogram.MaxValue == 0 {
		c.Histogram.MaxValue = def.Histogram.MaxValue
	}
	if c.Histogram.Epsilon == 0 {
		c.Histogram.Epsilon = def.Histogram.Epsilon
	}
	if len(c.Report.Percentiles) == 0 {
		c.Report.Percentiles = def.Report.Percentiles
	}
	if c.Report.Unit == "" {
		c.Report.Unit = def.Report.Unit
	}
}
