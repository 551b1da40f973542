// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(h.statsProvider.GetStats(r.Context()))
}
