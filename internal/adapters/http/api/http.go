// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/entraide/matchd/internal/adapters/repository"
	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/recommend"
	"github.com/entraide/matchd/internal/domain/scoring"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Synchronous matching feeds. A nil weights pointer selects the
	// configured defaults.
	MatchTasks(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, limit int, w *scoring.Weights) ([]scoring.MatchResult, error)
	MatchUsers(ctx context.Context, task *profile.TaskProfile, pool []*profile.UserProfile, limit int, w *scoring.Weights) ([]scoring.MatchResult, error)

	// Recommendation lifecycle.
	GenerateRecommendations(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, limit int) ([]recommend.Recommendation, error)
	PendingRecommendations(ctx context.Context, userID string) ([]recommend.Recommendation, error)
	ViewRecommendation(ctx context.Context, id string) (recommend.Recommendation, error)
	AcceptRecommendation(ctx context.Context, id string) (recommend.Recommendation, error)
	DismissRecommendation(ctx context.Context, id string) (recommend.Recommendation, error)

	// Proximity alerts.
	GenerateAlerts(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, radiusKm float64) ([]recommend.ProximityAlert, int, error)
	AlertsForUser(ctx context.Context, userID string) ([]recommend.ProximityAlert, error)

	// EnqueueRefresh submits an async refresh job. Returns false on
	// backpressure.
	EnqueueRefresh(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile) (string, bool)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	matchHandler           *MatchHandler
	recommendationsHandler *RecommendationsHandler
	alertsHandler          *AlertsHandler
	refreshHandler         *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		matchHandler:           NewMatchHandler(deps),
		recommendationsHandler: NewRecommendationsHandler(deps),
		alertsHandler:          NewAlertsHandler(deps),
		refreshHandler:         NewRefreshHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/match/tasks", MetricsMiddleware(s.matchHandler.HandleMatchTasks, "match_tasks"))
	mux.HandleFunc("/match/users", MetricsMiddleware(s.matchHandler.HandleMatchUsers, "match_users"))
	mux.HandleFunc("/recommendations", MetricsMiddleware(s.recommendationsHandler.HandleGenerate, "recommendations"))
	mux.HandleFunc("/recommendations/", MetricsMiddleware(s.recommendationsHandler.HandleByPath, "recommendations"))
	mux.HandleFunc("/alerts", MetricsMiddleware(s.alertsHandler.HandleGenerate, "alerts"))
	mux.HandleFunc("/alerts/", MetricsMiddleware(s.alertsHandler.HandleGetByUser, "alerts"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
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

// writeDomainError translates engine and store errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, recommend.ErrResolved), errors.Is(err, recommend.ErrExpired):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, profile.ErrInvalidUserProfile),
		errors.Is(err, profile.ErrInvalidTaskProfile),
		errors.Is(err, scoring.ErrInvalidWeights),
		errors.Is(err, repository.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
