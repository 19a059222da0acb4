// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - External errors must be wrapped with this package's sentinel errors.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir holds <region>.json, universities.json and scoring_table.json.
	DataDir string `koanf:"data_dir"`

	// CareerDir holds Guide.csv, Certificate.csv and loadmap.csv.
	CareerDir string `koanf:"career_dir"`

	// ProfileDB is the sqlite file that persists the student profile.
	// Empty keeps the profile in memory only.
	ProfileDB string `koanf:"profile_db"`

	// HistogramBins is the bin count used for decimal-valued events.
	HistogramBins int `koanf:"histogram_bins"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `koanf:"cors_origins"`

	// Regions restricts which regional datasets are loaded. Empty loads all.
	Regions []string `koanf:"regions"`

	// MetricsNamespace and MetricsSubsystem prefix every exported metric.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsBuckets overrides the latency histogram buckets. Empty keeps
	// the Prometheus defaults.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":9080",
		DataDir:       "data",
		CareerDir:     "jinro",
		ProfileDB:     "counseling.db",
		HistogramBins: 30,
		CORSOrigins:   []string{"*"},

		MetricsNamespace: "pecounsel",
		MetricsSubsystem: "counseling",
	}
}
