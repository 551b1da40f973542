// Package ranking scores candidate pools and returns the best matches,
// fanning scoring out across a bounded set of workers and fanning results
// back in for filtering, ordering and truncation.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/scoring"
	"github.com/entraide/matchd/pkg/metrics"
)

// Default thresholds and limits. The task feed filters stricter than the
// user feed because it drives a human's main view rather than outbound
// invitations.
const (
	DefaultMinTaskScore = 0.4
	DefaultMinUserScore = 0.3
	DefaultTaskLimit    = 20
	DefaultUserLimit    = 10
)

// ErrCancelled wraps a context error that stopped a ranking before any
// candidate was scored.
var ErrCancelled = errors.New("ranking cancelled")

// Engine ranks candidate pools. It holds no mutable state between calls
// and is safe for concurrent use.
type Engine struct {
	scorer       scoring.Scorer
	minTaskScore float64
	minUserScore float64
	taskLimit    int
	userLimit    int
	workers      int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMinTaskScore sets the minimum score for the task feed.
func WithMinTaskScore(min float64) Option {
	return func(e *Engine) {
		if min >= 0 && min <= 1 {
			e.minTaskScore = min
		}
	}
}

// WithMinUserScore sets the minimum score for the helper feed.
func WithMinUserScore(min float64) Option {
	return func(e *Engine) {
		if min >= 0 && min <= 1 {
			e.minUserScore = min
		}
	}
}

// WithTaskLimit sets the default result limit for BestTasksForUser.
func WithTaskLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.taskLimit = limit
		}
	}
}

// WithUserLimit sets the default result limit for BestUsersForTask.
func WithUserLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.userLimit = limit
		}
	}
}

// WithWorkerCount bounds the scoring fan-out.
func WithWorkerCount(count int) Option {
	return func(e *Engine) {
		if count > 0 {
			e.workers = count
		}
	}
}

// NewEngine creates a ranking engine around a scorer.
func NewEngine(scorer scoring.Scorer, opts ...Option) *Engine {
	e := &Engine{
		scorer:       scorer,
		minTaskScore: DefaultMinTaskScore,
		minUserScore: DefaultMinUserScore,
		taskLimit:    DefaultTaskLimit,
		userLimit:    DefaultUserLimit,
		workers:      runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// candidate pairs a scoring subject with the tie-break metadata of the
// pool member it came from.
type candidate struct {
	user *profile.UserProfile
	task *profile.TaskProfile
	// id and createdAt describe the pool member (the varying side).
	id        string
	createdAt time.Time
}

// BestTasksForUser scores every task in the pool not owned by the user,
// drops results below the task-feed threshold, orders them and returns
// the top entries. A limit of zero or less uses the engine default. When
// ctx expires mid-scan the already-scored portion is returned best-effort.
func (e *Engine) BestTasksForUser(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, limit int, w scoring.Weights) ([]scoring.MatchResult, error) {
	if err := profile.ValidateUser(user); err != nil {
		return nil, err
	}
	for _, task := range pool {
		if err := profile.ValidateTask(task); err != nil {
			return nil, err
		}
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(pool))
	for _, task := range pool {
		if task.OwnerID == user.ID {
			// A task never matches its own owner.
			continue
		}
		candidates = append(candidates, candidate{
			user:      user,
			task:      task,
			id:        task.ID,
			createdAt: task.CreatedAt,
		})
	}

	if limit <= 0 {
		limit = e.taskLimit
	}
	return e.rank(ctx, candidates, e.minTaskScore, limit, w)
}

// BestUsersForTask scores every user in the pool against the task, drops
// results below the helper-feed threshold and returns the top entries.
// The task owner is excluded from the pool.
func (e *Engine) BestUsersForTask(ctx context.Context, task *profile.TaskProfile, pool []*profile.UserProfile, limit int, w scoring.Weights) ([]scoring.MatchResult, error) {
	if err := profile.ValidateTask(task); err != nil {
		return nil, err
	}
	for _, user := range pool {
		if err := profile.ValidateUser(user); err != nil {
			return nil, err
		}
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(pool))
	for _, user := range pool {
		if user.ID == task.OwnerID {
			continue
		}
		candidates = append(candidates, candidate{
			user:      user,
			task:      task,
			id:        user.ID,
			createdAt: user.CreatedAt,
		})
	}

	if limit <= 0 {
		limit = e.userLimit
	}
	return e.rank(ctx, candidates, e.minUserScore, limit, w)
}

// scored carries one fan-out outcome back to the fan-in step.
type scored struct {
	idx    int
	result scoring.MatchResult
	err    error
}

// rank fans candidate scoring out over bounded workers, then filters,
// sorts and truncates. Inputs were validated by the caller, so a scoring
// error here is either a cancellation or a programming error.
func (e *Engine) rank(ctx context.Context, candidates []candidate, minScore float64, limit int, w scoring.Weights) ([]scoring.MatchResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if len(candidates) == 0 {
		return []scoring.MatchResult{}, nil
	}

	workers := e.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}

	jobs := make(chan int)
	results := make(chan scored, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := e.scorer.Score(ctx, candidates[idx].user, candidates[idx].task, w)
				results <- scored{idx: idx, result: res, err: err}
			}
		}()
	}

	// Feed jobs until done or the deadline hits; a partial scan still
	// yields a usable best-effort ranking.
	partial := false
feed:
	for idx := range candidates {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			partial = true
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	if partial {
		metrics.RecordPartialRanking()
	}

	kept := make([]scored, 0, len(candidates))
	for r := range results {
		if r.err != nil {
			if ctx.Err() != nil {
				// Deadline raced a worker; drop this slot.
				partial = true
				continue
			}
			return nil, fmt.Errorf("scoring candidate %s: %w", candidates[r.idx].id, r.err)
		}
		if r.result.Exact < minScore {
			metrics.RecordBelowThreshold()
			continue
		}
		kept = append(kept, r)
	}

	if partial && len(kept) == 0 && ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	}

	sort.Slice(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.result.Exact != b.result.Exact {
			return a.result.Exact > b.result.Exact
		}
		ca, cb := candidates[a.idx], candidates[b.idx]
		if !ca.createdAt.Equal(cb.createdAt) {
			return ca.createdAt.After(cb.createdAt)
		}
		return ca.id < cb.id
	})

	if len(kept) > limit {
		kept = kept[:limit]
	}

	out := make([]scoring.MatchResult, len(kept))
	for i, r := range kept {
		out[i] = r.result
	}
	return out, nil
}
