// Package jobs runs the periodic background work of the scheduling core:
// the deadline reminder batch and the publisher that flips due scheduled
// posts to published. Each job is a ticker goroutine owned by a Runner
// that cmd/server starts after wiring and stops on shutdown.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one unit of periodic work. Run is invoked once per tick with the
// tick instant; errors are logged by the runner and never stop the ticker.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Interval is how often the job runs.
	Interval() time.Duration

	// Run executes one pass of the job.
	Run(ctx context.Context, now time.Time) error
}

// Runner owns the ticker goroutines for a set of jobs.
type Runner struct {
	jobs       []Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewRunner creates a Runner for the given jobs.
func NewRunner(logger *slog.Logger, jobs ...Job) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		jobs:       jobs,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger.With(slog.String("component", "job_runner")),
	}
}

// Start launches one goroutine per job. Each job also runs once
// immediately so a restart does not postpone overdue work by a full
// interval.
func (r *Runner) Start() {
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(job)
	}

	r.logger.Info("job runner started", slog.Int("jobs", len(r.jobs)))
}

// Stop cancels all job goroutines and waits for in-flight passes to finish.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	r.logger.Info("job runner stopped")
}

// loop drives one job's ticker until the runner is stopped.
func (r *Runner) loop(job Job) {
	defer r.wg.Done()

	log := r.logger.With(slog.String("job", job.Name()))

	r.runOnce(job, log)

	ticker := time.NewTicker(job.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			log.Debug("job loop stopping")
			return
		case <-ticker.C:
			r.runOnce(job, log)
		}
	}
}

// runOnce executes a single pass, logging failures without propagating.
func (r *Runner) runOnce(job Job, log *slog.Logger) {
	start := time.Now()
	if err := job.Run(r.ctx, start.UTC()); err != nil {
		log.Error("job pass failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return
	}
	log.Debug("job pass complete", slog.Duration("elapsed", time.Since(start)))
}
