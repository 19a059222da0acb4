// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	service "github.com/okian/pecounsel/internal/app"
	"github.com/okian/pecounsel/internal/career"
	"github.com/okian/pecounsel/internal/domain/admission"
	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
	"github.com/okian/pecounsel/internal/domain/stats"
	"github.com/okian/pecounsel/pkg/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	LoadReport() service.LoadReport
	Events() []event.Definition

	// Statistics and ranking over the loaded populations.
	Statistics(ctx context.Context, key string, filter model.GenderFilter) (service.EventStatistics, error)
	Compare(ctx context.Context, key string) (service.Comparison, error)
	Analyze(ctx context.Context, key string, score float64, filter model.GenderFilter) (service.Analysis, error)

	// Counseling session.
	Profile() model.StudentProfile
	SaveStudentInfo(ctx context.Context, name string, g model.Gender) (model.StudentProfile, error)
	SaveAcademicScore(ctx context.Context, score float64) (model.StudentProfile, error)
	SaveSportsScores(ctx context.Context, scores map[string]float64) (model.StudentProfile, error)
	Counsel(ctx context.Context) (admission.Report, error)
	Universities() ([]model.University, error)

	// Career references.
	Majors() []string
	Careers(major string) ([]career.Guide, error)
	Career(major, name string) (career.Detail, error)
	Certificates() []career.Certificate
	Certificate(name string) (service.CertificateCareers, error)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(lg logger.Logger) Option {
	return func(s *Server) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// Server wires HTTP routes for the counseling API.
type Server struct {
	deps        Dependencies
	corsOrigins []string
	logger      logger.Logger

	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	eventsHandler     *EventsHandler
	profileHandler    *ProfileHandler
	counselingHandler *CounselingHandler
	careerHandler     *CareerHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:              deps,
		corsOrigins:       []string{"*"},
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		eventsHandler:     NewEventsHandler(deps),
		profileHandler:    NewProfileHandler(deps),
		counselingHandler: NewCounselingHandler(deps),
		careerHandler:     NewCareerHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Handler returns a router with the middleware stack and every route.
// Callers may mount further routes on it.
func (s *Server) Handler() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	s.Register(r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/status", MetricsMiddleware(s.statsHandler.HandleStatus, "status"))

	r.Route("/events", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.eventsHandler.HandleList, "events"))
		r.Get("/{key}/statistics", MetricsMiddleware(s.eventsHandler.HandleStatistics, "event_statistics"))
		r.Get("/{key}/compare", MetricsMiddleware(s.eventsHandler.HandleCompare, "event_compare"))
		r.Get("/{key}/analysis", MetricsMiddleware(s.eventsHandler.HandleAnalysis, "event_analysis"))
	})

	r.Route("/profile", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.profileHandler.HandleGet, "profile"))
		r.Put("/", MetricsMiddleware(s.profileHandler.HandlePutInfo, "profile"))
		r.Put("/academic", MetricsMiddleware(s.profileHandler.HandlePutAcademic, "profile_academic"))
		r.Put("/sports", MetricsMiddleware(s.profileHandler.HandlePutSports, "profile_sports"))
	})

	r.Get("/counseling", MetricsMiddleware(s.counselingHandler.HandleCounsel, "counseling"))
	r.Get("/universities", MetricsMiddleware(s.counselingHandler.HandleUniversities, "universities"))

	r.Route("/careers", func(r chi.Router) {
		r.Get("/majors", MetricsMiddleware(s.careerHandler.HandleMajors, "career_majors"))
		r.Get("/majors/{major}", MetricsMiddleware(s.careerHandler.HandleCareers, "career_careers"))
		r.Get("/majors/{major}/{career}", MetricsMiddleware(s.careerHandler.HandleCareer, "career_detail"))
		r.Get("/certificates", MetricsMiddleware(s.careerHandler.HandleCertificates, "career_certificates"))
		r.Get("/certificates/{name}", MetricsMiddleware(s.careerHandler.HandleCertificate, "career_certificate"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service and domain errors to HTTP.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, stats.ErrNoData), errors.Is(err, career.ErrUnavailable):
		writeError(w, http.StatusNotFound, "no_data", err)
	case errors.Is(err, career.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrUnknownEvent):
		writeError(w, http.StatusNotFound, "unknown_event", err)
	case errors.Is(err, admission.ErrIncompleteProfile):
		var ipe *admission.IncompleteProfileError
		if errors.As(err, &ipe) {
			writeJSON(w, http.StatusUnprocessableEntity, incompleteResponse{
				errorResponse: errorResponse{Code: "incomplete_profile", Message: err.Error()},
				Missing:       ipe.Missing,
			})
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "incomplete_profile", err)
	case errors.Is(err, admission.ErrNoEvents):
		writeError(w, http.StatusUnprocessableEntity, "no_events", err)
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_started", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

type incompleteResponse struct {
	errorResponse
	Missing []string `json:"missing"`
}

// decodeBody reads a JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}

// pathParam returns the decoded value of a route parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
