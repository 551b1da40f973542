// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/recommend"
)

// AlertsHandler serves proximity alert generation and retrieval.
type AlertsHandler struct {
	deps Dependencies
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps Dependencies) *AlertsHandler {
	return &AlertsHandler{deps: deps}
}

// alertsRequest mirrors the body of POST /alerts.
type alertsRequest struct {
	User     *profile.UserProfile   `json:"user"`
	Tasks    []*profile.TaskProfile `json:"tasks"`
	RadiusKm float64                `json:"radius_km"`
}

func (a alertsRequest) validate() error {
	if a.User == nil {
		return fmt.Errorf("%w: missing user", ErrBadRequest)
	}
	if a.RadiusKm < 0 {
		return fmt.Errorf("%w: radius_km must not be negative", ErrBadRequest)
	}
	return nil
}

type alertsResponse struct {
	Alerts []recommend.ProximityAlert `json:"alerts"`
	Stored int                        `json:"stored"`
}

// HandleGenerate handles POST /alerts requests.
func (h *AlertsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req alertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	alerts, stored, err := h.deps.GenerateAlerts(r.Context(), req.User, req.Tasks, req.RadiusKm)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, alertsResponse{Alerts: alerts, Stored: stored})
}

// HandleGetByUser handles GET /alerts/{user_id} requests.
func (h *AlertsHandler) HandleGetByUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/alerts/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	alerts, err := h.deps.AlertsForUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}
