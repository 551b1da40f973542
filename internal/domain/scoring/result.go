package scoring

import "time"

// Breakdown holds the seven per-factor sub-scores, each in [0,1].
type Breakdown struct {
	Proximity    float64 `json:"proximity"`
	SkillMatch   float64 `json:"skill_match"`
	Availability float64 `json:"availability"`
	Reputation   float64 `json:"reputation"`
	Budget       float64 `json:"budget"`
	ResponseTime float64 `json:"response_time"`
	History      float64 `json:"history"`
}

// MatchResult is the outcome of scoring one (user, task) pair. It is a
// fresh value on every call and is never mutated afterwards.
type MatchResult struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`

	// Score is the aggregate compatibility rounded to two decimals for
	// presentation.
	Score float64 `json:"score"`
	// Exact keeps full precision; ranking and tie-breaking use it.
	Exact float64 `json:"-"`

	Breakdown   Breakdown `json:"breakdown"`
	Reasons     []string  `json:"reasons,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
