// Package scoring computes the compatibility between a user and a task as
// a weighted blend of seven factors: proximity, skill match, availability,
// reputation, budget, response time and history.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/entraide/matchd/internal/domain/geo"
	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/taxonomy"
	"github.com/entraide/matchd/pkg/metrics"
)

// Scorer computes a MatchResult for one (user, task) pair.
type Scorer interface {
	Score(ctx context.Context, user *profile.UserProfile, task *profile.TaskProfile, w Weights) (MatchResult, error)
}

// Engine implements Scorer. It is stateless between calls and safe for
// concurrent use.
type Engine struct {
	taxonomy *taxonomy.Table
	now      func() time.Time
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTaxonomy sets the related-skill cluster table.
func WithTaxonomy(t *taxonomy.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.taxonomy = t
		}
	}
}

// WithClock overrides the time source, used by tests and by callers that
// score against a fixed reference instant.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a scoring engine with the default taxonomy and clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		taxonomy: taxonomy.New(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Score validates both profiles, computes the seven sub-scores and blends
// them with the supplied weights. The result is deterministic for fixed
// (user, task, weights, clock).
func (e *Engine) Score(ctx context.Context, user *profile.UserProfile, task *profile.TaskProfile, w Weights) (MatchResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return MatchResult{}, fmt.Errorf("scoring cancelled: %w", err)
	}
	if err := profile.ValidateUser(user); err != nil {
		metrics.RecordScoringError()
		return MatchResult{}, err
	}
	if err := profile.ValidateTask(task); err != nil {
		metrics.RecordScoringError()
		return MatchResult{}, err
	}
	if err := w.Validate(); err != nil {
		metrics.RecordScoringError()
		return MatchResult{}, err
	}

	now := e.now()

	breakdown := Breakdown{
		Proximity:    proximityScore(user, task),
		SkillMatch:   e.skillScore(user, task),
		Availability: availabilityScore(user, task, now),
		Reputation:   reputationScore(user),
		Budget:       budgetScore(user, task),
		ResponseTime: responseTimeScore(user.Stats.ResponseTimeMinutes),
		History:      historyScore(user.Stats),
	}

	exact := w.Proximity*breakdown.Proximity +
		w.SkillMatch*breakdown.SkillMatch +
		w.Availability*breakdown.Availability +
		w.Reputation*breakdown.Reputation +
		w.Budget*breakdown.Budget +
		w.ResponseTime*breakdown.ResponseTime +
		w.History*breakdown.History
	exact = clamp01(exact)

	metrics.RecordPairScored()

	return MatchResult{
		UserID:      user.ID,
		TaskID:      task.ID,
		Score:       math.Round(exact*100) / 100,
		Exact:       exact,
		Breakdown:   breakdown,
		Reasons:     reasons(breakdown),
		Suggestions: e.suggestions(breakdown, user, task),
		CreatedAt:   now,
	}, nil
}

// proximityScore maps great-circle distance to a non-increasing step
// function. Missing coordinates on either side resolve to a neutral 0.5.
func proximityScore(user *profile.UserProfile, task *profile.TaskProfile) float64 {
	if user.Location == nil || task.Location == nil {
		return 0.5
	}
	return proximityStep(geo.Distance(*user.Location, *task.Location))
}

func proximityStep(distanceKm float64) float64 {
	switch {
	case distanceKm <= 1:
		return 1.0
	case distanceKm <= 5:
		return 0.9
	case distanceKm <= 10:
		return 0.7
	case distanceKm <= 25:
		return 0.5
	case distanceKm <= 50:
		return 0.3
	default:
		return 0.1
	}
}

// skillScore is the weighted average of per-requirement tier scores. A
// requirement matches either by exact case-insensitive name or through a
// taxonomy cluster; unmatched requirements contribute 0. Tasks requiring
// no skills score 0.8.
func (e *Engine) skillScore(user *profile.UserProfile, task *profile.TaskProfile) float64 {
	if len(task.RequiredSkills) == 0 {
		return 0.8
	}

	var total, weightSum float64
	for _, req := range task.RequiredSkills {
		weight := req.Weight
		if weight <= 0 {
			weight = 1
		}
		weightSum += weight

		if matched, tier := e.matchSkill(user, req.Name); matched {
			total += weight * tier.Score()
		}
	}
	if weightSum == 0 {
		return 0
	}
	return clamp01(total / weightSum)
}

// matchSkill finds the user's skill satisfying a requirement, exact name
// first, then the taxonomy. Returns the matching skill's proficiency tier.
func (e *Engine) matchSkill(user *profile.UserProfile, required string) (bool, profile.ProficiencyTier) {
	want := taxonomy.Normalize(required)
	for _, s := range user.Skills {
		if taxonomy.Normalize(s.Name) == want {
			return true, s.Tier
		}
	}
	for _, s := range user.Skills {
		if e.taxonomy.Related(s.Name, required) {
			return true, s.Tier
		}
	}
	return false, ""
}

// availabilityScore starts from a 0.5 base with bonuses for being
// currently available and for the reference instant falling in a preferred
// slot. Expired tasks score 0 and an unavailable user scores 0.1.
func availabilityScore(user *profile.UserProfile, task *profile.TaskProfile, now time.Time) float64 {
	if task.Expired(now) {
		return 0
	}
	if !user.Availability.Available {
		return 0.1
	}

	score := 0.5
	if user.Availability.Status == profile.StatusAvailable {
		score += 0.3
	}
	if user.Preferences.InPreferredSlot(now) {
		score += 0.2
	}
	return clamp01(score)
}

// reputationScore normalizes reputation by 100 and adds the trust-tier
// bonus, capped at 1.
func reputationScore(user *profile.UserProfile) float64 {
	return clamp01(user.Reputation/100 + user.Trust.Bonus())
}

// budgetScore peaks at the midpoint of the user's acceptable range.
func budgetScore(user *profile.UserProfile, task *profile.TaskProfile) float64 {
	minBudget := user.Preferences.MinBudget
	maxBudget := user.Preferences.MaxBudget

	if task.BudgetCredits < minBudget {
		return 0.2
	}
	if maxBudget <= 0 {
		// No ceiling set.
		return 0.8
	}
	if task.BudgetCredits > maxBudget {
		return 0.3
	}
	if maxBudget == minBudget {
		return 1.0
	}

	ratio := (task.BudgetCredits - minBudget) / (maxBudget - minBudget)
	return clamp01(0.5 + 0.5*(1-2*math.Abs(ratio-0.5)))
}

// responseTimeScore buckets average response time in minutes.
func responseTimeScore(minutes float64) float64 {
	switch {
	case minutes <= 30:
		return 1.0
	case minutes <= 60:
		return 0.8
	case minutes <= 120:
		return 0.6
	case minutes <= 240:
		return 0.4
	default:
		return 0.2
	}
}

// historyScore blends completion rate with an experience bonus.
func historyScore(stats profile.Stats) float64 {
	score := stats.CompletionRate
	switch {
	case stats.TasksCompleted >= 50:
		score += 0.1
	case stats.TasksCompleted >= 20:
		score += 0.05
	case stats.TasksCompleted >= 5:
		score += 0.02
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
