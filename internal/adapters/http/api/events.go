// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	service "github.com/okian/pecounsel/internal/app"
	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
)

// EventsDependencies defines the interface for event statistics.
type EventsDependencies interface {
	Events() []event.Definition
	Statistics(ctx context.Context, key string, filter model.GenderFilter) (service.EventStatistics, error)
	Compare(ctx context.Context, key string) (service.Comparison, error)
	Analyze(ctx context.Context, key string, score float64, filter model.GenderFilter) (service.Analysis, error)
}

// EventsHandler handles event statistics requests.
type EventsHandler struct {
	deps EventsDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventsDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleList handles GET /events requests.
func (h *EventsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Events())
}

// HandleStatistics handles GET /events/{key}/statistics?gender= requests.
func (h *EventsHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	filter, ok := genderFilter(w, r)
	if !ok {
		return
	}
	st, err := h.deps.Statistics(r.Context(), pathParam(r, "key"), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleCompare handles GET /events/{key}/compare requests.
func (h *EventsHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.deps.Compare(r.Context(), pathParam(r, "key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// HandleAnalysis handles GET /events/{key}/analysis?score=&gender= requests.
func (h *EventsHandler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	filter, ok := genderFilter(w, r)
	if !ok {
		return
	}
	raw := r.URL.Query().Get("score")
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: score %q is not a number", ErrBadRequest, raw))
		return
	}
	a, err := h.deps.Analyze(r.Context(), pathParam(r, "key"), score, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func genderFilter(w http.ResponseWriter, r *http.Request) (model.GenderFilter, bool) {
	raw := r.URL.Query().Get("gender")
	f, ok := model.ParseGenderFilter(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: gender %q", ErrBadRequest, raw))
		return "", false
	}
	return f, true
}
