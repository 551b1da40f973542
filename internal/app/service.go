// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"

	jobqueue "github.com/entraide/matchd/internal/adapters/mq/queue"
	workerpool "github.com/entraide/matchd/internal/adapters/mq/worker"
	"github.com/entraide/matchd/internal/adapters/repository"
	"github.com/entraide/matchd/internal/domain/dedupe"
	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/ranking"
	"github.com/entraide/matchd/internal/domain/recommend"
	"github.com/entraide/matchd/internal/domain/scoring"
	"github.com/entraide/matchd/internal/domain/taxonomy"
	"github.com/entraide/matchd/pkg/logger"
	"github.com/entraide/matchd/pkg/metrics"
)

// Service wires the matching engine together and implements the API
// dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	queue     jobqueue.Queue
	pool      *workerpool.Pool
	scorer    scoring.Scorer
	ranker    *ranking.Engine
	generator *recommend.Generator

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	weights      scoring.Weights
	minTaskScore float64
	minUserScore float64
	taskLimit    int
	userLimit    int
	ttl          time.Duration
	radiusKm     float64
	taxonomyPath string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the refresh job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the alert content-key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithWeights replaces the default per-factor weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		if w.Validate() == nil {
			s.weights = w
		}
	}
}

// WithThresholds sets the compatibility floors for the two feeds.
func WithThresholds(minTask, minUser float64) Option {
	return func(s *Service) {
		if minTask >= 0 && minTask <= 1 {
			s.minTaskScore = minTask
		}
		if minUser >= 0 && minUser <= 1 {
			s.minUserScore = minUser
		}
	}
}

// WithLimits caps the task and helper feeds.
func WithLimits(taskLimit, userLimit int) Option {
	return func(s *Service) {
		if taskLimit > 0 {
			s.taskLimit = taskLimit
		}
		if userLimit > 0 {
			s.userLimit = userLimit
		}
	}
}

// WithRecommendationTTL sets how long recommendations stay actionable.
func WithRecommendationTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithAlertRadius sets the proximity alert cut-off.
func WithAlertRadius(km float64) Option {
	return func(s *Service) {
		if km > 0 {
			s.radiusKm = km
		}
	}
}

// WithTaxonomyPath points at a YAML file of extra skill clusters.
func WithTaxonomyPath(path string) Option {
	return func(s *Service) {
		s.taxonomyPath = path
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    1024,
		dedupeSize:   10_000,
		weights:      scoring.DefaultWeights(),
		minTaskScore: ranking.DefaultMinTaskScore,
		minUserScore: ranking.DefaultMinUserScore,
		taskLimit:    ranking.DefaultTaskLimit,
		userLimit:    ranking.DefaultUserLimit,
		ttl:          recommend.DefaultTTL,
		radiusKm:     recommend.DefaultAlertRadiusKm,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting matching service...")

	tax, err := s.buildTaxonomy()
	if err != nil {
		return err
	}
	s.scorer = scoring.NewEngine(scoring.WithTaxonomy(tax))
	s.ranker = ranking.NewEngine(s.scorer,
		ranking.WithMinTaskScore(s.minTaskScore),
		ranking.WithMinUserScore(s.minUserScore),
		ranking.WithTaskLimit(s.taskLimit),
		ranking.WithUserLimit(s.userLimit),
	)
	s.generator = recommend.NewGenerator(s.ranker,
		recommend.WithTTL(s.ttl),
		recommend.WithAlertRadius(s.radiusKm),
	)
	s.store = repository.NewMemoryStore(
		repository.WithAlertDeduper(dedupe.NewMemory(dedupe.WithMaxSize(s.dedupeSize))),
	)
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.generator, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Float64("alert_radius_km", s.radiusKm),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping matching service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "matching service stopped")
}

// buildTaxonomy builds the skill cluster table, merging extra clusters
// from the configured YAML file when present.
func (s *Service) buildTaxonomy() (*taxonomy.Table, error) {
	if s.taxonomyPath == "" {
		return taxonomy.New(), nil
	}
	raw, err := os.ReadFile(s.taxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	parsed, err := yaml.Parser().Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("parse taxonomy file: %w", err)
	}
	clusters := make(map[string][]string, len(parsed))
	for name, members := range parsed {
		list, ok := members.([]interface{})
		if !ok {
			return nil, fmt.Errorf("taxonomy cluster %q is not a list", name)
		}
		for _, m := range list {
			str, ok := m.(string)
			if !ok {
				return nil, fmt.Errorf("taxonomy cluster %q has a non-string member", name)
			}
			clusters[name] = append(clusters[name], str)
		}
	}
	return taxonomy.New(taxonomy.WithAdditionalClusters(clusters)), nil
}

// MatchTasks scores the task pool for a user and returns the ranked
// feed. A nil weights pointer selects the configured defaults.
func (s *Service) MatchTasks(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, limit int, w *scoring.Weights) ([]scoring.MatchResult, error) {
	if limit <= 0 || limit > s.taskLimit {
		limit = s.taskLimit
	}
	weights, err := s.resolveWeights(w)
	if err != nil {
		return nil, err
	}
	return s.ranker.BestTasksForUser(ctx, user, pool, limit, weights)
}

// MatchUsers scores the helper pool for a task and returns the ranked
// feed.
func (s *Service) MatchUsers(ctx context.Context, task *profile.TaskProfile, pool []*profile.UserProfile, limit int, w *scoring.Weights) ([]scoring.MatchResult, error) {
	if limit <= 0 || limit > s.userLimit {
		limit = s.userLimit
	}
	weights, err := s.resolveWeights(w)
	if err != nil {
		return nil, err
	}
	return s.ranker.BestUsersForTask(ctx, task, pool, limit, weights)
}

func (s *Service) resolveWeights(w *scoring.Weights) (scoring.Weights, error) {
	if w == nil {
		return s.weights, nil
	}
	if err := w.Validate(); err != nil {
		return scoring.Weights{}, err
	}
	return *w, nil
}

// GenerateRecommendations builds and persists recommendations for a
// user against a task pool.
func (s *Service) GenerateRecommendations(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, limit int) ([]recommend.Recommendation, error) {
	if limit <= 0 || limit > s.taskLimit {
		limit = s.taskLimit
	}
	recs, err := s.generator.Recommend(ctx, user, pool, limit, s.weights)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveRecommendations(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// PendingRecommendations returns a user's actionable recommendations.
func (s *Service) PendingRecommendations(ctx context.Context, userID string) ([]recommend.Recommendation, error) {
	return s.store.PendingForUser(ctx, userID)
}

// ViewRecommendation marks a recommendation as seen.
func (s *Service) ViewRecommendation(ctx context.Context, id string) (recommend.Recommendation, error) {
	return s.store.MarkViewed(ctx, id)
}

// AcceptRecommendation resolves a recommendation positively.
func (s *Service) AcceptRecommendation(ctx context.Context, id string) (recommend.Recommendation, error) {
	return s.store.Accept(ctx, id)
}

// DismissRecommendation resolves a recommendation negatively.
func (s *Service) DismissRecommendation(ctx context.Context, id string) (recommend.Recommendation, error) {
	return s.store.Dismiss(ctx, id)
}

// GenerateAlerts builds and persists proximity alerts for a user,
// returning the newly stored count alongside the generated alerts.
func (s *Service) GenerateAlerts(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, radiusKm float64) ([]recommend.ProximityAlert, int, error) {
	alerts, err := s.generator.Alerts(ctx, user, pool, radiusKm)
	if err != nil {
		return nil, 0, err
	}
	stored, err := s.store.SaveAlerts(ctx, alerts)
	if err != nil {
		return nil, 0, err
	}
	return alerts, stored, nil
}

// AlertsForUser returns a user's stored alerts, newest first.
func (s *Service) AlertsForUser(ctx context.Context, userID string) ([]recommend.ProximityAlert, error) {
	return s.store.AlertsForUser(ctx, userID)
}

// EnqueueRefresh submits an asynchronous refresh job regenerating a
// user's recommendations and alerts. Returns the job id and whether the
// queue accepted it.
func (s *Service) EnqueueRefresh(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile) (string, bool) {
	if err := profile.ValidateUser(user); err != nil {
		s.logger.Warn(ctx, "rejecting refresh for invalid user", logger.Error(err))
		return "", false
	}
	job := jobqueue.RefreshJob{
		JobID:    uuid.NewString(),
		User:     user,
		Tasks:    pool,
		Limit:    s.taskLimit,
		RadiusKm: s.radiusKm,
		Weights:  s.weights,
	}
	if !s.queue.Enqueue(ctx, job) {
		return "", false
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	return job.JobID, true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"workers":      s.workerCount,
		"queue_size":   s.queueSize,
		"task_limit":   s.taskLimit,
		"user_limit":   s.userLimit,
		"ttl_seconds":  int(s.ttl.Seconds()),
		"alert_radius": s.radiusKm,
	}
	if s.started {
		stats["queue_length"] = s.queue.Len(ctx)
		counts := s.store.Counts(ctx, time.Now())
		stats["recommendations"] = counts.Recommendations
		stats["pending"] = counts.Pending
		stats["accepted"] = counts.Accepted
		stats["dismissed"] = counts.Dismissed
		stats["expired"] = counts.Expired
		stats["alerts"] = counts.Alerts
	}
	return stats
}
