package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/pecounsel/internal/domain/dataset"
	"github.com/okian/pecounsel/internal/sampledata"
)

// Default configuration constants.
const (
	defaultOutDir        = "data"
	defaultRows          = 500
	defaultSeed          = 1
	defaultMalformedRate = 0.02
	defaultOutlierRate   = 0.01
	defaultRunTimeout    = 5 * time.Minute
)

func main() {
	var (
		outDir    = flag.String("out", defaultOutDir, "Output directory")
		rows      = flag.Int("rows", defaultRows, "Rows per region")
		seed      = flag.Uint64("seed", defaultSeed, "Random seed")
		regions   = flag.String("regions", "", "Comma-separated region codes (default: all)")
		malformed = flag.Float64("malformed", defaultMalformedRate, "Share of malformed or blank cells")
		outliers  = flag.Float64("outliers", defaultOutlierRate, "Share of out-of-range cells")
		withCfg   = flag.Bool("config", false, "Also write universities.json and scoring_table.json")
		logFile   = flag.String("log", "", "Also write logs to this file")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sampledata.ShowHelp()
		return
	}

	closer, err := sampledata.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	selected, err := selectRegions(*regions)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &sampledata.Config{
		OutDir:        *outDir,
		Rows:          *rows,
		Seed:          *seed,
		Regions:       selected,
		MalformedRate: *malformed,
		OutlierRate:   *outliers,
		WithConfig:    *withCfg,
		Verbose:       *verbose,
	}
	if _, err := sampledata.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}

// selectRegions resolves a comma-separated code list; empty means all.
func selectRegions(list string) ([]dataset.Region, error) {
	known := dataset.DefaultRegions()
	if strings.TrimSpace(list) == "" {
		return known, nil
	}
	var out []dataset.Region
	for _, code := range strings.Split(list, ",") {
		r, err := dataset.FindRegion(known, strings.TrimSpace(code))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
