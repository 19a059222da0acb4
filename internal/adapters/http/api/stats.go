// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	service "github.com/okian/pecounsel/internal/app"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatusProvider exposes what the session managed to load.
type StatusProvider interface {
	LoadReport() service.LoadReport
}

// StatsHandler handles stats and load status requests.
type StatsHandler struct {
	statsProvider  StatsProvider
	statusProvider StatusProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps Dependencies) *StatsHandler {
	return &StatsHandler{statsProvider: deps, statusProvider: deps}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}

// HandleStatus handles GET /status requests. A degraded load still answers
// 200; the body lists the failed sources.
func (h *StatsHandler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.statusProvider.LoadReport())
}
