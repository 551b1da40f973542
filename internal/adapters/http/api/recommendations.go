// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/entraide/matchd/internal/domain/profile"
)

// RecommendationsHandler serves recommendation generation, the pending
// feed and the lifecycle actions.
type RecommendationsHandler struct {
	deps Dependencies
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps Dependencies) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps}
}

// generateRequest mirrors the body of POST /recommendations.
type generateRequest struct {
	User  *profile.UserProfile   `json:"user"`
	Tasks []*profile.TaskProfile `json:"tasks"`
	Limit int                    `json:"limit"`
}

func (g generateRequest) validate() error {
	if g.User == nil {
		return fmt.Errorf("%w: missing user", ErrBadRequest)
	}
	return nil
}

// HandleGenerate handles POST /recommendations requests.
func (h *RecommendationsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	recs, err := h.deps.GenerateRecommendations(r.Context(), req.User, req.Tasks, req.Limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recs)
}

// HandleByPath dispatches requests under /recommendations/:
// GET /recommendations/{user_id} returns the pending feed and
// POST /recommendations/{id}/view|accept|dismiss runs an action.
func (h *RecommendationsHandler) HandleByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/recommendations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case r.Method == http.MethodGet && len(parts) == 1 && parts[0] != "":
		h.handlePending(w, r, parts[0])
	case r.Method == http.MethodPost && len(parts) == 2:
		h.handleAction(w, r, parts[0], parts[1])
	default:
		http.NotFound(w, r)
	}
}

func (h *RecommendationsHandler) handlePending(w http.ResponseWriter, r *http.Request, userID string) {
	recs, err := h.deps.PendingRecommendations(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *RecommendationsHandler) handleAction(w http.ResponseWriter, r *http.Request, id, action string) {
	var fn func(r *http.Request, id string) (any, error)
	switch action {
	case "view":
		fn = func(r *http.Request, id string) (any, error) {
			return h.deps.ViewRecommendation(r.Context(), id)
		}
	case "accept":
		fn = func(r *http.Request, id string) (any, error) {
			return h.deps.AcceptRecommendation(r.Context(), id)
		}
	case "dismiss":
		fn = func(r *http.Request, id string) (any, error) {
			return h.deps.DismissRecommendation(r.Context(), id)
		}
	default:
		http.NotFound(w, r)
		return
	}

	rec, err := fn(r, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
