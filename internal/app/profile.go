package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"strings"
	"time"

	"github.com/okian/pecounsel/internal/career"
	"github.com/okian/pecounsel/internal/domain/admission"
	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
	"github.com/okian/pecounsel/pkg/logger"
	"github.com/okian/pecounsel/pkg/metrics"
)

// Profile sections, used as metric labels.
const (
	sectionInfo     = "info"
	sectionAcademic = "academic"
	sectionSports   = "sports"
)

// Profile returns a copy of the session's student profile.
func (s *Service) Profile() model.StudentProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyProfile(s.profile)
}

// SaveStudentInfo stores the student's name and gender.
func (s *Service) SaveStudentInfo(ctx context.Context, name string, g model.Gender) (model.StudentProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.StudentProfile{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if g == model.Unknown {
		return model.StudentProfile{}, fmt.Errorf("%w: gender must be male or female", ErrInvalidInput)
	}
	return s.update(ctx, sectionInfo, func(p *model.StudentProfile) {
		p.Name = name
		p.Gender = g
	})
}

// SaveAcademicScore stores the converted academic score.
func (s *Service) SaveAcademicScore(ctx context.Context, score float64) (model.StudentProfile, error) {
	if !positive(score) {
		return model.StudentProfile{}, fmt.Errorf("%w: academic score must be a positive number", ErrInvalidInput)
	}
	return s.update(ctx, sectionAcademic, func(p *model.StudentProfile) {
		p.AcademicScore = &score
	})
}

// SaveSportsScores replaces the student's athletic records. Keys may be
// event keys or display names.
func (s *Service) SaveSportsScores(ctx context.Context, scores map[string]float64) (model.StudentProfile, error) {
	resolved := make(map[event.Key]float64, len(scores))
	for name, v := range scores {
		k, ok := s.registry.Parse(name)
		if !ok {
			return model.StudentProfile{}, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
		}
		if !positive(v) {
			return model.StudentProfile{}, fmt.Errorf("%w: %s must be a positive number", ErrInvalidInput, k)
		}
		resolved[k] = v
	}
	if len(resolved) == 0 {
		return model.StudentProfile{}, fmt.Errorf("%w: at least one event is required", ErrInvalidInput)
	}
	return s.update(ctx, sectionSports, func(p *model.StudentProfile) {
		p.SportsScores = resolved
	})
}

// update applies fn to a copy of the profile, persists it and only then
// makes it the session's profile.
func (s *Service) update(ctx context.Context, section string, fn func(*model.StudentProfile)) (model.StudentProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return model.StudentProfile{}, ErrNotStarted
	}

	next := copyProfile(s.profile)
	fn(&next)
	if err := s.profiles.Save(ctx, next); err != nil {
		metrics.RecordErrorByComponent("profile", section)
		s.logger.Error(ctx, "profile save failed", logger.String("section", section), logger.Error(err))
		return model.StudentProfile{}, err
	}
	s.profile = next
	metrics.RecordProfileSave(section)
	s.logger.Debug(ctx, "profile saved", logger.String("section", section))
	return copyProfile(next), nil
}

// Counsel evaluates the saved profile against every university.
func (s *Service) Counsel(ctx context.Context) (admission.Report, error) {
	s.mu.RLock()
	started, engine, p := s.started, s.engine, copyProfile(s.profile)
	s.mu.RUnlock()
	if !started {
		return admission.Report{}, ErrNotStarted
	}

	start := time.Now()
	report, err := engine.Evaluate(p)
	if err != nil {
		outcome := "no_events"
		if isIncomplete(err) {
			outcome = "incomplete"
		}
		metrics.RecordCounselingRun(outcome)
		return admission.Report{}, err
	}
	for _, a := range report.All {
		metrics.RecordConversion(string(a.Method))
	}
	elapsed := time.Since(start)
	metrics.RecordCounselingRun("ok")
	metrics.RecordCounselingLatency(float64(elapsed.Microseconds()) / 1000)
	s.logger.Info(ctx, "counseling evaluated",
		logger.Int("universities", len(report.All)),
		logger.Int("eligible", len(report.Eligible)),
		logger.Duration("latency", elapsed),
	)
	return report, nil
}

// Majors lists the majors of the career references.
func (s *Service) Majors() []string {
	return s.careers().Majors()
}

// Careers lists the careers of a major.
func (s *Service) Careers(major string) ([]career.Guide, error) {
	return s.careers().Careers(major)
}

// Career returns one career of a major with certificates and roadmap.
func (s *Service) Career(major, name string) (career.Detail, error) {
	return s.careers().Career(major, name)
}

// Certificates lists the certificates of the career references.
func (s *Service) Certificates() []career.Certificate {
	return s.careers().Certificates()
}

// CertificateCareers is a certificate with the careers that require it.
type CertificateCareers struct {
	Certificate career.Certificate `json:"certificate"`
	Careers     []career.Guide     `json:"careers"`
}

// Certificate returns a certificate and the careers that require it.
func (s *Service) Certificate(name string) (CertificateCareers, error) {
	ct, careers, err := s.careers().Certificate(name)
	if err != nil {
		return CertificateCareers{}, err
	}
	return CertificateCareers{Certificate: ct, Careers: careers}, nil
}

func (s *Service) careers() *career.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

func copyProfile(p model.StudentProfile) model.StudentProfile {
	out := p
	if p.AcademicScore != nil {
		v := *p.AcademicScore
		out.AcademicScore = &v
	}
	out.SportsScores = maps.Clone(p.SportsScores)
	return out
}

func isIncomplete(err error) bool { return errors.Is(err, admission.ErrIncompleteProfile) }

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
