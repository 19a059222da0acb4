package sampledata

import (
	"time"

	"github.com/okian/pecounsel/internal/domain/dataset"
)

// Config holds the generator configuration.
type Config struct {
	OutDir        string
	Rows          int
	Seed          uint64
	Regions       []dataset.Region
	MalformedRate float64
	OutlierRate   float64
	// WithConfig also writes universities.json and scoring_table.json.
	WithConfig bool
	Verbose    bool
}

// Stats tracks what a run produced.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Regions   int
	Rows      int
	Malformed int
	Outliers  int
	Blanks    int
	Files     []string
}
