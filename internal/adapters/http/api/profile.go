// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/pecounsel/internal/domain/model"
)

// ProfileDependencies defines the interface for the counseling profile.
type ProfileDependencies interface {
	Profile() model.StudentProfile
	SaveStudentInfo(ctx context.Context, name string, g model.Gender) (model.StudentProfile, error)
	SaveAcademicScore(ctx context.Context, score float64) (model.StudentProfile, error)
	SaveSportsScores(ctx context.Context, scores map[string]float64) (model.StudentProfile, error)
}

// ProfileHandler handles profile reads and saves.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

// profileResponse adds the fields still needed for counseling.
type profileResponse struct {
	model.StudentProfile
	Missing []string `json:"missing"`
}

func newProfileResponse(p model.StudentProfile) profileResponse {
	missing := p.Missing()
	if missing == nil {
		missing = []string{}
	}
	return profileResponse{StudentProfile: p, Missing: missing}
}

type infoRequest struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
}

type academicRequest struct {
	AcademicScore float64 `json:"academicScore"`
}

type sportsRequest struct {
	SportsScores map[string]float64 `json:"sportsScores"`
}

// HandleGet handles GET /profile requests.
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newProfileResponse(h.deps.Profile()))
}

// HandlePutInfo handles PUT /profile requests.
func (h *ProfileHandler) HandlePutInfo(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	p, err := h.deps.SaveStudentInfo(r.Context(), req.Name, model.ParseGender(req.Gender))
	h.respond(w, p, err)
}

// HandlePutAcademic handles PUT /profile/academic requests.
func (h *ProfileHandler) HandlePutAcademic(w http.ResponseWriter, r *http.Request) {
	var req academicRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	p, err := h.deps.SaveAcademicScore(r.Context(), req.AcademicScore)
	h.respond(w, p, err)
}

// HandlePutSports handles PUT /profile/sports requests.
func (h *ProfileHandler) HandlePutSports(w http.ResponseWriter, r *http.Request) {
	var req sportsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	p, err := h.deps.SaveSportsScores(r.Context(), req.SportsScores)
	h.respond(w, p, err)
}

func (h *ProfileHandler) respond(w http.ResponseWriter, p model.StudentProfile, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(p))
}
