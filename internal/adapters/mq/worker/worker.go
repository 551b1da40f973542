// Package worker drains refresh jobs off the queue, regenerates
// recommendations and proximity alerts, and persists them.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/entraide/matchd/internal/adapters/mq/queue"
	"github.com/entraide/matchd/internal/domain/profile"
	"github.com/entraide/matchd/internal/domain/recommend"
	"github.com/entraide/matchd/internal/domain/scoring"
	"github.com/entraide/matchd/pkg/logger"
	"github.com/entraide/matchd/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Generator produces recommendations and alerts for one refresh job.
type Generator interface {
	Recommend(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, limit int, w scoring.Weights) ([]recommend.Recommendation, error)
	Alerts(ctx context.Context, user *profile.UserProfile, pool []*profile.TaskProfile, radiusKm float64) ([]recommend.ProximityAlert, error)
}

// Saver persists what a refresh produced.
type Saver interface {
	SaveRecommendations(ctx context.Context, recs []recommend.Recommendation) error
	SaveAlerts(ctx context.Context, alerts []recommend.ProximityAlert) (int, error)
}

// Queue defines how workers receive refresh jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.RefreshJob
}

// Worker processes refresh jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// RefreshWorker implements Worker for the refresh pipeline.
type RefreshWorker struct {
	queue     Queue
	generator Generator
	saver     Saver
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewRefreshWorker creates a worker with configuration options.
func NewRefreshWorker(q Queue, gen Generator, saver Saver, opts ...Option) *RefreshWorker {
	w := &RefreshWorker{
		queue:     q,
		generator: gen,
		saver:     saver,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *RefreshWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "refresh job failed",
					logger.String("job_id", job.JobID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *RefreshWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process regenerates recommendations and alerts for one job.
func (w *RefreshWorker) process(ctx context.Context, job queue.RefreshJob) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
	}()

	recs, err := w.generator.Recommend(ctx, job.User, job.Tasks, job.Limit, job.Weights)
	if err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("generate recommendations for job %s: %w", job.JobID, err)
	}
	if err := w.saver.SaveRecommendations(ctx, recs); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("save recommendations for job %s: %w", job.JobID, err)
	}

	alerts, err := w.generator.Alerts(ctx, job.User, job.Tasks, job.RadiusKm)
	if err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("generate alerts for job %s: %w", job.JobID, err)
	}
	stored, err := w.saver.SaveAlerts(ctx, alerts)
	if err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("save alerts for job %s: %w", job.JobID, err)
	}

	w.logger.Debug(ctx, "refresh job processed",
		logger.String("job_id", job.JobID),
		logger.String("user_id", job.User.ID),
		logger.Int("recommendations", len(recs)),
		logger.Int("alerts", stored),
	)
	return nil
}

// Pool manages multiple refresh workers.
type Pool struct {
	workers []*RefreshWorker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a pool. A non-positive count defaults to the number
// of CPUs.
func NewPool(workerCount int, q Queue, gen Generator, saver Saver) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers:  make([]*RefreshWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewRefreshWorker(q, gen, saver,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
