// Package service owns the counseling session: the loaded datasets, the
// university configuration, the scoring tables and the student profile. It
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"io/fs"
	"sync"

	"github.com/okian/pecounsel/internal/adapters/repository"
	"github.com/okian/pecounsel/internal/adapters/source"
	"github.com/okian/pecounsel/internal/career"
	"github.com/okian/pecounsel/internal/domain/admission"
	"github.com/okian/pecounsel/internal/domain/dataset"
	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
	"github.com/okian/pecounsel/internal/domain/scoring"
	"github.com/okian/pecounsel/internal/domain/stats"
	"github.com/okian/pecounsel/pkg/logger"
)

// LoadReport describes what the last Start managed to load.
type LoadReport struct {
	Sources         source.Report          `json:"sources"`
	Ingest          []dataset.IngestReport `json:"ingest"`
	Unresolved      []scoring.Unresolved   `json:"unresolved_table_entries,omitempty"`
	Career          []career.Failure       `json:"career_failures,omitempty"`
	CareerAvailable bool                   `json:"career_available"`
	ProfileRestored bool                   `json:"profile_restored"`
}

// Service implements the API dependencies for the counseling session.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry  *event.Registry
	store     repository.DatasetStore
	profiles  repository.ProfileStore
	converter *scoring.Converter
	engine    *admission.Engine
	catalog   *career.Catalog

	// Configuration
	dataFS        fs.FS
	careerFS      fs.FS
	regions       []dataset.Region
	histogramBins int

	// State
	profile model.StudentProfile
	report  LoadReport
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataFS sets the file system holding the regional datasets, the
// university configuration and the scoring tables.
func WithDataFS(fsys fs.FS) Option {
	return func(s *Service) {
		s.dataFS = fsys
	}
}

// WithCareerFS sets the file system holding the career references.
func WithCareerFS(fsys fs.FS) Option {
	return func(s *Service) {
		s.careerFS = fsys
	}
}

// WithRegions restricts the regional datasets loaded.
func WithRegions(regions []dataset.Region) Option {
	return func(s *Service) {
		if len(regions) > 0 {
			s.regions = regions
		}
	}
}

// WithHistogramBins sets the bin count for decimal-valued events.
func WithHistogramBins(bins int) Option {
	return func(s *Service) {
		if bins > 0 {
			s.histogramBins = bins
		}
	}
}

// WithDatasetStore replaces the in-memory dataset store.
func WithDatasetStore(store repository.DatasetStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithProfileStore sets where the student profile is persisted.
func WithProfileStore(store repository.ProfileStore) Option {
	return func(s *Service) {
		if store != nil {
			s.profiles = store
		}
	}
}

// WithRegistry replaces the default event registry.
func WithRegistry(reg *event.Registry) Option {
	return func(s *Service) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(lg logger.Logger) Option {
	return func(s *Service) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		registry:      event.Default(),
		regions:       dataset.DefaultRegions(),
		histogramBins: stats.DefaultBins,
		logger:        nil, // Will be replaced when service starts
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.profiles == nil {
		s.profiles = repository.NewMemoryProfileStore()
	}
	return s
}

// Start loads every source, builds the scoring engine and restores the saved
// profile. Sources that fail leave the session degraded; only ctx errors
// abort the start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.dataFS == nil {
		return ErrNoDataSource
	}

	s.logger.Info(ctx, "starting counseling service...")

	loader := source.NewLoader(s.dataFS,
		source.WithRegions(s.regions),
		source.WithLogger(s.logger.Named("source")),
	)
	bundle, srcReport, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	for _, region := range s.regions {
		if records, ok := bundle.Records[region.Code]; ok {
			s.store.ReplaceRegion(ctx, region.Code, records)
		}
	}

	report := LoadReport{Sources: srcReport, Ingest: bundle.Ingest}

	var tables *scoring.Tables
	if bundle.Tables != nil {
		tables, report.Unresolved = scoring.NewTables(s.registry, *bundle.Tables)
		for _, u := range report.Unresolved {
			s.logger.Warn(ctx, "scoring table entry skipped",
				logger.String("university", u.University),
				logger.String("gender", u.Gender),
				logger.String("event", u.Event),
			)
		}
	}
	s.converter = scoring.NewConverter(s.registry, scoring.WithTables(tables))
	s.engine = admission.NewEngine(s.registry, s.converter, admission.WithUniversities(bundle.Universities))

	if s.careerFS != nil {
		s.catalog, report.Career = career.Load(s.careerFS)
		for _, f := range report.Career {
			s.logger.Warn(ctx, "career reference failed", logger.String("file", f.File), logger.String("error", f.Error))
		}
	}
	report.CareerAvailable = s.catalog.Available()

	p, err := s.profiles.Load(ctx)
	switch {
	case err == nil:
		p.SportsScores = s.knownScores(ctx, p.SportsScores)
		s.profile = p
		report.ProfileRestored = true
	case errors.Is(err, repository.ErrNotFound):
		s.profile = model.StudentProfile{}
	default:
		s.logger.Warn(ctx, "profile restore failed", logger.Error(err))
		s.profile = model.StudentProfile{}
	}

	s.report = report
	s.started = true
	s.logger.Info(ctx, "counseling service started",
		logger.Int("regions", len(bundle.Records)),
		logger.Int("universities", len(bundle.Universities)),
		logger.Bool("degraded", srcReport.Degraded),
		logger.Bool("profileRestored", report.ProfileRestored),
	)
	return nil
}

// knownScores drops restored scores whose event the registry does not know.
func (s *Service) knownScores(ctx context.Context, scores map[event.Key]float64) map[event.Key]float64 {
	if scores == nil {
		return nil
	}
	out := make(map[event.Key]float64, len(scores))
	for k, v := range scores {
		if _, ok := s.registry.Lookup(k); !ok {
			s.logger.Warn(ctx, "restored score for unknown event dropped", logger.String("event", string(k)))
			continue
		}
		out[k] = v
	}
	return out
}

// Stop closes the profile store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping counseling service...")
	if err := s.profiles.Close(); err != nil {
		s.logger.Warn(context.Background(), "profile store close failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "counseling service stopped")
}

// LoadReport returns the report of the last Start.
func (s *Service) LoadReport() LoadReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Events returns every known event definition in registry order.
func (s *Service) Events() []event.Definition {
	return s.registry.Definitions()
}

// Universities returns the configured universities.
func (s *Service) Universities() ([]model.University, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.engine.Universities(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"started": s.started,
	}
	if s.started {
		ctx := context.Background()
		counts := s.store.Count(ctx)
		total := 0
		for _, n := range counts {
			total += n
		}
		out["regions"] = counts
		out["totalRecords"] = total
		out["universities"] = len(s.engine.Universities())
		out["scoringTables"] = len(s.converter.Tables().Universities())
		out["degraded"] = s.report.Sources.Degraded
		out["careerAvailable"] = s.report.CareerAvailable
	}
	return out
}
