package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/editorialhq/editorial-api/internal/service"
)

// PublisherJob flips scheduled posts whose publish instant has passed to
// published.
type PublisherJob struct {
	scheduler service.SchedulerService
	interval  time.Duration
	logger    *slog.Logger
}

// NewPublisherJob creates the publisher job. Interval defaults to five
// minutes.
func NewPublisherJob(
	scheduler service.SchedulerService,
	interval time.Duration,
	logger *slog.Logger,
) *PublisherJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PublisherJob{
		scheduler: scheduler,
		interval:  interval,
		logger:    logger.With(slog.String("component", "publisher_job")),
	}
}

// Name implements Job.Name
func (j *PublisherJob) Name() string { return "publish_due_posts" }

// Interval implements Job.Interval
func (j *PublisherJob) Interval() time.Duration { return j.interval }

// Run implements Job.Run
func (j *PublisherJob) Run(ctx context.Context, now time.Time) error {
	published, err := j.scheduler.PublishDuePosts(ctx, now)
	if err != nil {
		return err
	}

	if len(published) > 0 {
		j.logger.Info("published due posts", slog.Int("count", len(published)))
	}

	return nil
}

// Ensure PublisherJob implements the Job interface
var _ Job = (*PublisherJob)(nil)
