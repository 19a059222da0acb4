package sampledata

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/pecounsel/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging initialises the logger. With a log file, output goes to both
// stdout and the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = file
	}
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return nil, fmt.Errorf("failed to set log level: %w", err)
		}
	}
	return closer, nil
}

// ShowHelp prints usage information for the sample data tool.
func ShowHelp() {
	os.Stdout.WriteString(`PE Counseling Sample Data
=========================

Writes synthetic regional test sheets in each region's own column layout,
with occasional malformed, blank and out-of-range cells.

Usage:
  go run ./cmd/sample-data [options]

Options:
  -out string
        Output directory (default "data")
  -rows int
        Rows per region (default 500)
  -seed uint
        Random seed; the same seed writes the same files (default 1)
  -regions string
        Comma-separated region codes (default: all known regions)
  -malformed float
        Share of cells that are malformed or blank (default 0.02)
  -outliers float
        Share of cells that are out of range (default 0.01)
  -config
        Also write universities.json and scoring_table.json
  -log string
        Also write logs to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seven regions with admissions configuration
  go run ./cmd/sample-data -config

  # A small Jeju and Seoul sheet
  go run ./cmd/sample-data -regions jeju,seoul -rows 50 -out /tmp/pe
`)
}
