// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/entraide/matchd/internal/domain/profile"
)

// RefreshHandler accepts asynchronous refresh jobs.
type RefreshHandler struct {
	deps Dependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps Dependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// refreshRequest mirrors the body of POST /refresh.
type refreshRequest struct {
	User  *profile.UserProfile   `json:"user"`
	Tasks []*profile.TaskProfile `json:"tasks"`
}

func (rr refreshRequest) validate() error {
	if rr.User == nil {
		return fmt.Errorf("%w: missing user", ErrBadRequest)
	}
	return nil
}

type refreshResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id,omitempty"`
}

// HandleRefresh handles POST /refresh requests. Accepted jobs return
// 202; a full queue returns 429 so callers can back off.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	jobID, ok := h.deps.EnqueueRefresh(r.Context(), req.User, req.Tasks)
	if !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, refreshResponse{Status: "accepted", JobID: jobID})
}
