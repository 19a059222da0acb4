// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/okian/pecounsel/internal/app"
	"github.com/okian/pecounsel/internal/career"
	"github.com/okian/pecounsel/internal/domain/admission"
	"github.com/okian/pecounsel/internal/domain/model"
)

// CounselingDependencies defines the interface for university counseling.
type CounselingDependencies interface {
	Counsel(ctx context.Context) (admission.Report, error)
	Universities() ([]model.University, error)
}

// CounselingHandler handles counseling requests.
type CounselingHandler struct {
	deps CounselingDependencies
}

// NewCounselingHandler creates a new counseling handler.
func NewCounselingHandler(deps CounselingDependencies) *CounselingHandler {
	return &CounselingHandler{deps: deps}
}

// HandleCounsel handles GET /counseling requests.
func (h *CounselingHandler) HandleCounsel(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.Counsel(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleUniversities handles GET /universities requests.
func (h *CounselingHandler) HandleUniversities(w http.ResponseWriter, _ *http.Request) {
	us, err := h.deps.Universities()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, us)
}

// CareerDependencies defines the interface for the career references.
type CareerDependencies interface {
	Majors() []string
	Careers(major string) ([]career.Guide, error)
	Career(major, name string) (career.Detail, error)
	Certificates() []career.Certificate
	Certificate(name string) (service.CertificateCareers, error)
}

// CareerHandler handles career reference requests.
type CareerHandler struct {
	deps CareerDependencies
}

// NewCareerHandler creates a new career handler.
func NewCareerHandler(deps CareerDependencies) *CareerHandler {
	return &CareerHandler{deps: deps}
}

// HandleMajors handles GET /careers/majors requests.
func (h *CareerHandler) HandleMajors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Majors())
}

// HandleCareers handles GET /careers/majors/{major} requests.
func (h *CareerHandler) HandleCareers(w http.ResponseWriter, r *http.Request) {
	careers, err := h.deps.Careers(pathParam(r, "major"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, careers)
}

// HandleCareer handles GET /careers/majors/{major}/{career} requests.
func (h *CareerHandler) HandleCareer(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.Career(pathParam(r, "major"), pathParam(r, "career"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleCertificates handles GET /careers/certificates requests.
func (h *CareerHandler) HandleCertificates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Certificates())
}

// HandleCertificate handles GET /careers/certificates/{name} requests.
func (h *CareerHandler) HandleCertificate(w http.ResponseWriter, r *http.Request) {
	cc, err := h.deps.Certificate(pathParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cc)
}
