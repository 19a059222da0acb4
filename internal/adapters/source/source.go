// Package source loads the regional datasets, the university configuration
// and the scoring tables from a file system. Every source loads on its own
// and a failed source is reported, never fatal.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pecounsel/internal/domain/dataset"
	"github.com/okian/pecounsel/internal/domain/model"
	"github.com/okian/pecounsel/internal/domain/scoring"
	"github.com/okian/pecounsel/pkg/logger"
	"github.com/okian/pecounsel/pkg/metrics"
)

// Source kinds.
const (
	KindRegion       = "region"
	KindUniversities = "universities"
	KindScoringTable = "scoring_table"
)

const (
	defaultUniversitiesFile = "universities.json"
	defaultScoringTableFile = "scoring_table.json"
)

// Bundle is everything that loaded.
type Bundle struct {
	Records      map[string][]model.AthleticRecord
	Ingest       []dataset.IngestReport
	Universities []model.University
	Tables       *scoring.RawTables
}

// Failure describes one source that did not load.
type Failure struct {
	Kind   string `json:"kind"`
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Report summarises a load.
type Report struct {
	Loaded   []string  `json:"loaded"`
	Failed   []Failure `json:"failed,omitempty"`
	Degraded bool      `json:"degraded"`
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithRegions restricts the regional datasets loaded.
func WithRegions(regions []dataset.Region) Option {
	return func(l *Loader) {
		if len(regions) > 0 {
			l.regions = regions
		}
	}
}

// WithUniversitiesFile overrides the university configuration path.
func WithUniversitiesFile(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.universitiesFile = name
		}
	}
}

// WithScoringTableFile overrides the scoring table path.
func WithScoringTableFile(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.scoringTableFile = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Loader reads sources from a file system.
type Loader struct {
	fsys             fs.FS
	regions          []dataset.Region
	universitiesFile string
	scoringTableFile string
	logger           logger.Logger
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys fs.FS, opts ...Option) *Loader {
	l := &Loader{
		fsys:             fsys,
		regions:          dataset.DefaultRegions(),
		universitiesFile: defaultUniversitiesFile,
		scoringTableFile: defaultScoringTableFile,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("source")
	}
	return l
}

// Load fetches every source concurrently and waits for all of them. Failed
// sources are listed in the report and left out of the bundle. The only
// error returned is ctx's.
func (l *Loader) Load(ctx context.Context) (Bundle, Report, error) {
	var (
		mu     sync.Mutex
		bundle = Bundle{Records: make(map[string][]model.AthleticRecord, len(l.regions))}
		report Report
	)
	settle := func(kind, name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failed = append(report.Failed, Failure{Kind: kind, Source: name, Error: err.Error()})
			metrics.RecordSourceLoad(kind, "failed")
			metrics.RecordErrorByComponent("source", kind)
			l.logger.Warn(ctx, "source failed", logger.String("kind", kind), logger.String("source", name), logger.Error(err))
			return
		}
		report.Loaded = append(report.Loaded, name)
		metrics.RecordSourceLoad(kind, "loaded")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, region := range l.regions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, rep, err := l.loadRegion(region)
			if err == nil {
				mu.Lock()
				bundle.Records[region.Code] = records
				bundle.Ingest = append(bundle.Ingest, rep)
				mu.Unlock()
				recordIngest(rep)
			}
			settle(KindRegion, region.Code, err)
			return nil
		})
	}
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var us []model.University
		err := l.decode(l.universitiesFile, &us)
		if err == nil {
			mu.Lock()
			bundle.Universities = us
			mu.Unlock()
		}
		settle(KindUniversities, l.universitiesFile, err)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var raw scoring.RawTables
		err := l.decode(l.scoringTableFile, &raw)
		if err == nil {
			mu.Lock()
			bundle.Tables = &raw
			mu.Unlock()
		}
		settle(KindScoringTable, l.scoringTableFile, err)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Bundle{}, Report{}, err
	}

	sort.Strings(report.Loaded)
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Source < report.Failed[j].Source })
	sort.Slice(bundle.Ingest, func(i, j int) bool { return bundle.Ingest[i].Region < bundle.Ingest[j].Region })
	report.Degraded = len(report.Failed) > 0
	metrics.UpdateDegraded(report.Degraded)
	return bundle, report, nil
}

func (l *Loader) loadRegion(region dataset.Region) ([]model.AthleticRecord, dataset.IngestReport, error) {
	var rows []any
	if err := l.decode(region.Code+".json", &rows); err != nil {
		return nil, dataset.IngestReport{}, err
	}
	records, rep := dataset.Ingest(region, rows)
	return records, rep, nil
}

func (l *Loader) decode(name string, v any) error {
	b, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadSource, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedSource, name, err)
	}
	return nil
}

func recordIngest(rep dataset.IngestReport) {
	metrics.RecordRecordsIngested(rep.Region, rep.Kept)
	metrics.RecordRejectedValues("malformed", rep.Malformed)
	metrics.RecordRejectedValues("non_positive", rep.NonPositive)
	metrics.RecordRejectedValues("discarded_row", rep.Discarded)
}
