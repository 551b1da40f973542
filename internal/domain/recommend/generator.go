package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/entraide/matchd/internal/domain/geo"
	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/ranking"
	"github.com/entraide/matchd/internal/domain/scoring"
	"github.com/entraide/matchd/pkg/metrics"
)

// Defaults for the generator knobs.
const (
	// DefaultTTL is how long a recommendation stays actionable.
	DefaultTTL = 24 * time.Hour
	// DefaultAlertRadiusKm is the proximity alert cut-off.
	DefaultAlertRadiusKm = 5.0
)

// Generator derives recommendations and proximity alerts from ranked
// match results. It owns no state; callers persist what it returns.
type Generator struct {
	ranker   *ranking.Engine
	ttl      time.Duration
	radiusKm float64
	now      func() time.Time
	newID    func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithTTL overrides the recommendation time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(g *Generator) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithAlertRadius overrides the default proximity alert radius.
func WithAlertRadius(km float64) Option {
	return func(g *Generator) {
		if km > 0 {
			g.radiusKm = km
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithIDSource overrides the id generator, mainly for tests.
func WithIDSource(newID func() string) Option {
	return func(g *Generator) {
		if newID != nil {
			g.newID = newID
		}
	}
}

// NewGenerator creates a generator around a ranking engine.
func NewGenerator(ranker *ranking.Engine, opts ...Option) *Generator {
	g := &Generator{
		ranker:   ranker,
		ttl:      DefaultTTL,
		radiusKm: DefaultAlertRadiusKm,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Recommend ranks the task pool for the user and promotes the best
// results into recommendations. It ranks up to twice the requested
// limit so the dominant-type classification has room to diversify, then
// truncates to the limit.
func (g *Generator) Recommend(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, limit int, w scoring.Weights) ([]Recommendation, error) {
	if limit <= 0 {
		limit = ranking.DefaultTaskLimit
	}
	results, err := g.ranker.BestTasksForUser(ctx, user, pool, limit*2, w)
	if err != nil {
		return nil, fmt.Errorf("rank tasks for %s: %w", user.ID, err)
	}

	tasks := make(map[string]*profile.TaskProfile, len(pool))
	for _, t := range pool {
		tasks[t.ID] = t
	}

	now := g.now()
	recs := make([]Recommendation, 0, min(limit, len(results)))
	for _, res := range results {
		if len(recs) == limit {
			break
		}
		recs = append(recs, Recommendation{
			ID:        g.newID(),
			UserID:    res.UserID,
			TaskID:    res.TaskID,
			Kind:      classify(res.Breakdown, tasks[res.TaskID]),
			Score:     res.Score,
			Rationale: res.Reasons,
			Priority:  priorityFor(res.Exact),
			State:     StateCreated,
			CreatedAt: now,
			ExpiresAt: now.Add(g.ttl),
			UpdatedAt: now,
		})
		metrics.RecordRecommendationGenerated()
	}
	return recs, nil
}

// classify picks the dominant factor. Proximity wins first, then skill
// match, then urgency on urgent tasks the user can actually take, then
// standing, with budget as the fallback.
func classify(b scoring.Breakdown, task *profile.TaskProfile) Kind {
	switch {
	case b.Proximity >= 0.8:
		return KindProximity
	case b.SkillMatch >= 0.8:
		return KindSkillMatch
	case task != nil && task.Priority == profile.PriorityUrgent && b.Availability >= 0.5:
		return KindUrgency
	case b.Reputation >= 0.9 || b.History >= 0.7:
		return KindHistory
	default:
		return KindBudget
	}
}

// Alerts scans the task pool and emits one alert per task within the
// radius, skipping the user's own tasks. A radius of zero or less falls
// back to the configured default. Users without coordinates get no
// alerts.
func (g *Generator) Alerts(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, radiusKm float64) ([]ProximityAlert, error) {
	if err := profile.ValidateUser(user); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		radiusKm = g.radiusKm
	}
	alerts := make([]ProximityAlert, 0)
	if user.Location == nil {
		return alerts, nil
	}
	now := g.now()
	for _, task := range pool {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("alert scan for %s: %w", user.ID, err)
		}
		if err := profile.ValidateTask(task); err != nil {
			return nil, err
		}
		if task.OwnerID == user.ID || task.Location == nil || task.Expired(now) {
			continue
		}
		d := geo.Distance(*user.Location, *task.Location)
		if d > radiusKm {
			continue
		}
		alerts = append(alerts, ProximityAlert{
			ID:         g.newID(),
			UserID:     user.ID,
			TaskID:     task.ID,
			DistanceKm: d,
			CreatedAt:  now,
		})
		metrics.RecordAlertGenerated()
	}
	return alerts, nil
}
