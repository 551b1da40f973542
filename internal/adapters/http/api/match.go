// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/scoring"
)

// MatchHandler serves the two synchronous matching feeds.
type MatchHandler struct {
	deps Dependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps Dependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// matchTasksRequest mirrors the body of POST /match/tasks.
type matchTasksRequest struct {
	User    *profile.UserProfile   `json:"user"`
	Tasks   []*profile.TaskProfile `json:"tasks"`
	Limit   int                    `json:"limit"`
	Weights *scoring.Weights       `json:"weights,omitempty"`
}

func (m matchTasksRequest) validate() error {
	if m.User == nil {
		return fmt.Errorf("%w: missing user", ErrBadRequest)
	}
	return nil
}

// matchUsersRequest mirrors the body of POST /match/users.
type matchUsersRequest struct {
	Task    *profile.TaskProfile   `json:"task"`
	Users   []*profile.UserProfile `json:"users"`
	Limit   int                    `json:"limit"`
	Weights *scoring.Weights       `json:"weights,omitempty"`
}

func (m matchUsersRequest) validate() error {
	if m.Task == nil {
		return fmt.Errorf("%w: missing task", ErrBadRequest)
	}
	return nil
}

// HandleMatchTasks handles POST /match/tasks requests.
func (h *MatchHandler) HandleMatchTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req matchTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	results, err := h.deps.MatchTasks(r.Context(), req.User, req.Tasks, req.Limit, req.Weights)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleMatchUsers handles POST /match/users requests.
func (h *MatchHandler) HandleMatchUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req matchUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	results, err := h.deps.MatchUsers(r.Context(), req.Task, req.Users, req.Limit, req.Weights)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
