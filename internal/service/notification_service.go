package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/editorialhq/editorial-api/internal/authz"
	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/mail"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// ModerationStatus is the verdict carried by a moderation-result
// notification.
type ModerationStatus string

// Possible moderation verdicts.
const (
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Valid reports whether the status is a known verdict.
func (m ModerationStatus) Valid() bool {
	return m == ModerationApproved || m == ModerationRejected
}

// DeliveryResult records the outcome of one notification attempt.
// Failed deliveries carry a reason; they are reported, never fatal.
type DeliveryResult struct {
	TaskID    *uuid.UUID `json:"task_id,omitempty"`
	PostID    *uuid.UUID `json:"post_id,omitempty"`
	Recipient string     `json:"recipient,omitempty"`
	Delivered bool       `json:"delivered"`
	Reason    string     `json:"reason,omitempty"`
}

// NotificationService dispatches deadline reminders and moderation-result
// emails. Delivery failures are observable through DeliveryResult values
// but never abort a batch or an API request.
type NotificationService interface {
	// SendDeadlineReminders emails every assignee of an open task whose
	// deadline falls within the reminder window starting at now. Assignees
	// without an email address are skipped; one failed delivery does not
	// stop the rest. Returns one result per candidate task.
	SendDeadlineReminders(ctx context.Context, now time.Time) ([]DeliveryResult, error)

	// RemindTaskAssignee sends the deadline reminder for a single task on
	// demand. Admin/editor only.
	RemindTaskAssignee(ctx context.Context, caller domain.Caller, taskID uuid.UUID) (DeliveryResult, error)

	// SendModerationResult emails the post's author the approve/reject
	// verdict, optionally with a feedback link. Admin/editor only.
	SendModerationResult(
		ctx context.Context,
		caller domain.Caller,
		postID uuid.UUID,
		status ModerationStatus,
		feedbackURL string,
	) (DeliveryResult, error)
}

// notificationServiceImpl implements the NotificationService interface.
type notificationServiceImpl struct {
	taskStore      store.TaskStore
	postStore      store.PostStore
	userStore      store.UserStore
	sender         mail.Sender
	window         time.Duration
	maxConcurrency int
	siteURL        string
	logger         *slog.Logger
}

// NewNotificationService creates a new NotificationService. The window is
// how far ahead of now deadline reminders look; maxConcurrency bounds the
// reminder fan-out.
func NewNotificationService(
	taskStore store.TaskStore,
	postStore store.PostStore,
	userStore store.UserStore,
	sender mail.Sender,
	window time.Duration,
	maxConcurrency int,
	siteURL string,
	logger *slog.Logger,
) (NotificationService, error) {
	if taskStore == nil {
		return nil, &ServiceError{
			Service:   "notification_service",
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
		}
	}
	if postStore == nil {
		return nil, &ServiceError{
			Service:   "notification_service",
			Operation: "create_service",
			Message:   "postStore cannot be nil",
		}
	}
	if userStore == nil {
		return nil, &ServiceError{
			Service:   "notification_service",
			Operation: "create_service",
			Message:   "userStore cannot be nil",
		}
	}
	if sender == nil {
		return nil, &ServiceError{
			Service:   "notification_service",
			Operation: "create_service",
			Message:   "sender cannot be nil",
		}
	}

	if window <= 0 {
		window = 24 * time.Hour
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &notificationServiceImpl{
		taskStore:      taskStore,
		postStore:      postStore,
		userStore:      userStore,
		sender:         sender,
		window:         window,
		maxConcurrency: maxConcurrency,
		siteURL:        siteURL,
		logger:         logger.With(slog.String("component", "notification_service")),
	}, nil
}

// SendDeadlineReminders emails assignees of open tasks due within the window.
func (s *notificationServiceImpl) SendDeadlineReminders(
	ctx context.Context,
	now time.Time,
) ([]DeliveryResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	due, err := s.taskStore.ListDueBetween(ctx, now, now.Add(s.window), domain.TaskStatusOpen)
	if err != nil {
		log.Error("failed to load tasks due for reminders",
			slog.String("error", err.Error()))
		return nil, mapStoreError("notification_service", "send_deadline_reminders", "failed to load due tasks", err)
	}

	if len(due) == 0 {
		return []DeliveryResult{}, nil
	}

	// Bounded fan-out; each task writes its own result slot.
	results := make([]DeliveryResult, len(due))
	p := pool.New().WithMaxGoroutines(s.maxConcurrency)
	for i, item := range due {
		p.Go(func() {
			results[i] = s.deliverReminder(ctx, item)
		})
	}
	p.Wait()

	delivered := 0
	for _, r := range results {
		if r.Delivered {
			delivered++
		}
	}
	log.Info("deadline reminder batch complete",
		slog.Int("candidates", len(due)),
		slog.Int("delivered", delivered))
	return results, nil
}

// deliverReminder composes and sends one reminder, reporting the outcome.
func (s *notificationServiceImpl) deliverReminder(
	ctx context.Context,
	item *store.TaskWithAssignee,
) DeliveryResult {
	log := logger.FromContextOrDefault(ctx, s.logger)

	taskID := item.Task.ID
	result := DeliveryResult{
		TaskID:    &taskID,
		Recipient: item.Assignee.Email,
	}

	if item.Assignee.Email == "" {
		result.Reason = "assignee has no email address"
		log.Warn("skipping reminder for assignee without email",
			slog.String("task_id", taskID.String()),
			slog.String("assignee_id", item.Assignee.ID.String()))
		return result
	}

	topic := ""
	if item.Task.Topic != nil {
		topic = *item.Task.Topic
	}
	msg, err := mail.ComposeReminder(item.Assignee.Email, mail.ReminderInput{
		AssigneeName: item.Assignee.Name,
		TaskTitle:    item.Task.Title,
		Topic:        topic,
		Deadline:     item.Task.Deadline,
	})
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		result.Reason = err.Error()
		log.Warn("reminder delivery failed",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return result
	}

	result.Delivered = true
	return result
}

// RemindTaskAssignee sends the reminder for a single task on demand.
func (s *notificationServiceImpl) RemindTaskAssignee(
	ctx context.Context,
	caller domain.Caller,
	taskID uuid.UUID,
) (DeliveryResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Resolve before authorizing, so a missing task is 404 and not 403.
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return DeliveryResult{}, mapStoreError(
			"notification_service", "remind_task_assignee", "failed to retrieve task", err)
	}

	if err := authz.Require(caller, authz.ReminderSend, uuid.Nil); err != nil {
		log.Warn("manual reminder denied",
			slog.String("caller_id", caller.ID.String()),
			slog.String("task_id", taskID.String()))
		return DeliveryResult{}, err
	}

	assignee, err := s.userStore.GetByID(ctx, task.AssignedTo)
	if err != nil {
		return DeliveryResult{}, mapStoreError(
			"notification_service", "remind_task_assignee", "failed to resolve assignee", err)
	}

	result := s.deliverReminder(ctx, &store.TaskWithAssignee{
		Task:     *task,
		Assignee: assignee.Summary(),
	})

	log.Info("manual reminder processed",
		slog.String("task_id", taskID.String()),
		slog.Bool("delivered", result.Delivered),
		slog.String("caller_id", caller.ID.String()))
	return result, nil
}

// SendModerationResult emails the post's author the moderation verdict.
func (s *notificationServiceImpl) SendModerationResult(
	ctx context.Context,
	caller domain.Caller,
	postID uuid.UUID,
	status ModerationStatus,
	feedbackURL string,
) (DeliveryResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.Valid() {
		return DeliveryResult{}, domain.NewValidationError("status", "must be approved or rejected", domain.ErrValidation)
	}

	// Resolve before authorizing, so a missing post is 404 and not 403.
	post, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return DeliveryResult{}, mapStoreError(
			"notification_service", "send_moderation_result", "failed to retrieve post", err)
	}

	if err := authz.Require(caller, authz.ModerationNotify, uuid.Nil); err != nil {
		log.Warn("moderation notification denied",
			slog.String("caller_id", caller.ID.String()),
			slog.String("post_id", postID.String()))
		return DeliveryResult{}, err
	}

	author, err := s.userStore.GetByID(ctx, post.AuthorID)
	if err != nil {
		return DeliveryResult{}, mapStoreError(
			"notification_service", "send_moderation_result", "failed to resolve author", err)
	}

	result := DeliveryResult{
		PostID:    &postID,
		Recipient: author.Email,
	}

	msg, err := mail.ComposeModerationResult(mail.ModerationInput{
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
		AvatarURL:   author.AvatarURL,
		PostTitle:   post.Title,
		PostSummary: post.Summary,
		Approved:    status == ModerationApproved,
		FeedbackURL: feedbackURL,
		SiteURL:     s.siteURL,
	})
	if err != nil {
		result.Reason = err.Error()
		return result, nil
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		result.Reason = err.Error()
		log.Warn("moderation result delivery failed",
			slog.String("error", err.Error()),
			slog.String("post_id", postID.String()))
		return result, nil
	}

	result.Delivered = true
	log.Info("moderation result sent",
		slog.String("post_id", postID.String()),
		slog.String("status", string(status)),
		slog.String("caller_id", caller.ID.String()))
	return result, nil
}

// Compile-time interface check
var _ NotificationService = (*notificationServiceImpl)(nil)
