package sampledata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pecounsel/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run generates every configured region and, when asked, the admissions
// configuration. Regions are written concurrently.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("%w: rows must be positive, got %d", ErrInvalidConfig, cfg.Rows)
	}
	if cfg.MalformedRate < 0 || cfg.OutlierRate < 0 || cfg.MalformedRate+cfg.OutlierRate > 1 {
		return nil, fmt.Errorf("%w: rates must be non-negative and sum to at most 1", ErrInvalidConfig)
	}
	if len(cfg.Regions) == 0 {
		return nil, fmt.Errorf("%w: no regions", ErrInvalidConfig)
	}

	lg := logger.Get().Named("sampledata")
	stats := &Stats{StartTime: time.Now()}
	lg.Info(ctx, "generating sample data",
		logger.String("out", cfg.OutDir),
		logger.Int("regions", len(cfg.Regions)),
		logger.Int("rows", cfg.Rows),
		logger.Any("seed", cfg.Seed))

	if err := os.MkdirAll(cfg.OutDir, directoryPermission); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, region := range cfg.Regions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			gen := NewGenerator(cfg, cfg.Seed, uint64(i))
			rows := gen.Region(region, cfg.Rows)
			name := region.Code + ".json"
			if err := writeJSON(filepath.Join(cfg.OutDir, name), rows); err != nil {
				return fmt.Errorf("region %s: %w", region.Code, err)
			}
			if cfg.Verbose {
				lg.Debug(gctx, "region written",
					logger.String("region", region.Code),
					logger.Int("rows", len(rows)),
					logger.Int("malformed", gen.counts.malformed),
					logger.Int("blanks", gen.counts.blanks),
					logger.Int("outliers", gen.counts.outliers))
			}
			mu.Lock()
			defer mu.Unlock()
			stats.Regions++
			stats.Rows += len(rows)
			stats.Malformed += gen.counts.malformed
			stats.Blanks += gen.counts.blanks
			stats.Outliers += gen.counts.outliers
			stats.Files = append(stats.Files, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cfg.WithConfig {
		if err := writeJSON(filepath.Join(cfg.OutDir, UniversitiesFile), SampleUniversities()); err != nil {
			return nil, fmt.Errorf("universities: %w", err)
		}
		if err := writeJSON(filepath.Join(cfg.OutDir, ScoringTableFile), SampleScoringTables()); err != nil {
			return nil, fmt.Errorf("scoring table: %w", err)
		}
		stats.Files = append(stats.Files, UniversitiesFile, ScoringTableFile)
	}

	sort.Strings(stats.Files)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, lg, stats)
	return stats, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := os.WriteFile(path, b, filePermission); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func displayFinalStats(ctx context.Context, lg logger.Logger, stats *Stats) {
	lg.Info(ctx, "final statistics",
		logger.Int("regions", stats.Regions),
		logger.Int("rows", stats.Rows),
		logger.Int("malformed", stats.Malformed),
		logger.Int("blanks", stats.Blanks),
		logger.Int("outliers", stats.Outliers),
		logger.Any("files", stats.Files),
		logger.Duration("duration", stats.Duration))
}
