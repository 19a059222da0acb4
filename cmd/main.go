package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pecounsel/internal/adapters/http/api"
	"github.com/okian/pecounsel/internal/adapters/http/swagger"
	"github.com/okian/pecounsel/internal/adapters/repository"
	service "github.com/okian/pecounsel/internal/app"
	"github.com/okian/pecounsel/internal/config"
	"github.com/okian/pecounsel/internal/domain/dataset"
	"github.com/okian/pecounsel/pkg/logger"
	"github.com/okian/pecounsel/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.Join(errors.New("failed to load config"), err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return errors.Join(errors.New("failed to initialize logging"), err)
	}
	defer func() { _ = logger.Sync() }()
	lg := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		lg.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metricsOptions(cfg)...)

	svc, profiles, err := newService(ctx, cfg, lg)
	if err != nil {
		return err
	}
	if err := startService(ctx, svc, profiles); err != nil {
		return err
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		lg.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return errors.Join(errors.New("HTTP server failed"), err)
		}
	}
	lg.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	lg.Info(ctx, "server stopped")
	return nil
}

// newService builds the counseling service from configuration and returns
// the profile store it owns. Nothing is loaded until Start.
func newService(ctx context.Context, cfg *config.Config, lg logger.Logger) (*service.Service, repository.ProfileStore, error) {
	regions, err := selectRegions(cfg.Regions)
	if err != nil {
		return nil, nil, err
	}

	var profiles repository.ProfileStore = repository.NewMemoryProfileStore()
	if cfg.ProfileDB != "" {
		store, err := repository.OpenSQLiteProfileStore(ctx, cfg.ProfileDB)
		if err != nil {
			return nil, nil, errors.Join(errors.New("failed to open profile database"), err)
		}
		profiles = store
	}

	opts := []service.Option{
		service.WithLogger(lg),
		service.WithDataFS(os.DirFS(cfg.DataDir)),
		service.WithRegions(regions),
		service.WithHistogramBins(cfg.HistogramBins),
		service.WithProfileStore(profiles),
	}
	if cfg.CareerDir != "" {
		opts = append(opts, service.WithCareerFS(os.DirFS(cfg.CareerDir)))
	}
	return service.New(opts...), profiles, nil
}

// startService starts svc. Stop only closes a started service, so the
// profile store is closed here when Start fails.
func startService(ctx context.Context, svc *service.Service, profiles repository.ProfileStore) error {
	err := svc.Start(ctx)
	if err == nil {
		return nil
	}
	if cerr := profiles.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return errors.Join(errors.New("failed to start service"), err)
}

// metricsOptions maps the metrics settings; empty values keep the defaults.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
	}
}

// newHandler mounts the API and its documentation on one router.
func newHandler(cfg *config.Config, svc *service.Service) http.Handler {
	router := api.NewServer(svc, api.WithCORSOrigins(cfg.CORSOrigins)).Handler()
	swagger.Register(router)
	return router
}

// selectRegions resolves configured region codes; empty means all.
func selectRegions(codes []string) ([]dataset.Region, error) {
	known := dataset.DefaultRegions()
	if len(codes) == 0 {
		return known, nil
	}
	out := make([]dataset.Region, 0, len(codes))
	for _, code := range codes {
		r, err := dataset.FindRegion(known, code)
		if err != nil {
			return nil, errors.Join(config.ErrInvalidConfig, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// startServiceMetricsUpdater refreshes the dataset gauges from the service.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if total, ok := stats["totalRecords"].(int); ok {
		metrics.UpdateDatasetRecords(total)
	}
	if degraded, ok := stats["degraded"].(bool); ok {
		metrics.UpdateDegraded(degraded)
	}
}
