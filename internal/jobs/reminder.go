package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/editorialhq/editorial-api/internal/service"
)

// ReminderJob runs the deadline reminder batch on a fixed interval.
type ReminderJob struct {
	notifications service.NotificationService
	interval      time.Duration
	logger        *slog.Logger
}

// NewReminderJob creates the reminder job. Interval defaults to one hour.
func NewReminderJob(
	notifications service.NotificationService,
	interval time.Duration,
	logger *slog.Logger,
) *ReminderJob {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderJob{
		notifications: notifications,
		interval:      interval,
		logger:        logger.With(slog.String("component", "reminder_job")),
	}
}

// Name implements Job.Name
func (j *ReminderJob) Name() string { return "deadline_reminders" }

// Interval implements Job.Interval
func (j *ReminderJob) Interval() time.Duration { return j.interval }

// Run implements Job.Run. Per-task delivery failures are reported in the
// results and logged; only a failure to load the batch is an error.
func (j *ReminderJob) Run(ctx context.Context, now time.Time) error {
	results, err := j.notifications.SendDeadlineReminders(ctx, now)
	if err != nil {
		return err
	}

	for _, r := range results {
		if !r.Delivered {
			j.logger.Warn("reminder not delivered",
				slog.Any("task_id", r.TaskID),
				slog.String("recipient", r.Recipient),
				slog.String("reason", r.Reason))
		}
	}

	return nil
}

// Ensure ReminderJob implements the Job interface
var _ Job = (*ReminderJob)(nil)
