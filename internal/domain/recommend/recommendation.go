// Package recommend turns ranked match results into expiring
// recommendations and distance-triggered proximity alerts.
package recommend

import (
	"errors"
	"fmt"
	"time"
)

// Mutation errors.
var (
	// ErrExpired is returned when acting on a recommendation past its
	// expiry timestamp.
	ErrExpired = errors.New("recommendation expired")
	// ErrResolved is returned when acting on a recommendation that has
	// already been accepted or dismissed.
	ErrResolved = errors.New("recommendation already resolved")
)

// Kind names the dominant factor a recommendation was derived from.
type Kind string

const (
	KindProximity  Kind = "proximity"
	KindSkillMatch Kind = "skill_match"
	KindUrgency    Kind = "urgency"
	KindHistory    Kind = "history"
	KindBudget     Kind = "budget"
)

// Priority buckets the aggregate score for delivery ordering.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// priorityFor maps an aggregate score onto a delivery tier.
func priorityFor(score float64) Priority {
	switch {
	case score >= 0.8:
		return PriorityHigh
	case score >= 0.6:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// State is the explicit lifecycle tag of a recommendation. Accepted and
// dismissed are terminal and mutually exclusive; expiry is computed from
// the clock, never stored.
type State string

const (
	StateCreated   State = "created"
	StateViewed    State = "viewed"
	StateAccepted  State = "accepted"
	StateDismissed State = "dismissed"
)

// Recommendation is a time-boxed suggestion surfaced to a user, derived
// from one match result.
type Recommendation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TaskID    string    `json:"task_id"`
	Kind      Kind      `json:"type"`
	Score     float64   `json:"score"`
	Rationale []string  `json:"rationale,omitempty"`
	Priority  Priority  `json:"priority"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the recommendation is past its expiry. An
// expired recommendation is inert regardless of state.
func (r *Recommendation) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Terminal reports whether the recommendation has been resolved.
func (r *Recommendation) Terminal() bool {
	return r.State == StateAccepted || r.State == StateDismissed
}

// Actionable reports whether the recommendation still belongs in a
// pending view: not expired and not resolved.
func (r *Recommendation) Actionable(now time.Time) bool {
	return !r.Expired(now) && !r.Terminal()
}

// View marks the recommendation as seen. Viewing is idempotent but
// rejected once the recommendation is resolved or expired.
func (r *Recommendation) View(now time.Time) error {
	if err := r.guard(now); err != nil {
		return fmt.Errorf("view %s: %w", r.ID, err)
	}
	r.State = StateViewed
	r.UpdatedAt = now
	return nil
}

// Accept resolves the recommendation positively. Accepting twice is a
// no-op; accepting a dismissed or expired recommendation fails.
func (r *Recommendation) Accept(now time.Time) error {
	if r.State == StateAccepted {
		return nil
	}
	if err := r.guard(now); err != nil {
		return fmt.Errorf("accept %s: %w", r.ID, err)
	}
	r.State = StateAccepted
	r.UpdatedAt = now
	return nil
}

// Dismiss resolves the recommendation negatively. Dismissing twice is a
// no-op; dismissing an accepted or expired recommendation fails.
func (r *Recommendation) Dismiss(now time.Time) error {
	if r.State == StateDismissed {
		return nil
	}
	if err := r.guard(now); err != nil {
		return fmt.Errorf("dismiss %s: %w", r.ID, err)
	}
	r.State = StateDismissed
	r.UpdatedAt = now
	return nil
}

func (r *Recommendation) guard(now time.Time) error {
	if r.Expired(now) {
		return ErrExpired
	}
	if r.Terminal() {
		return ErrResolved
	}
	return nil
}
