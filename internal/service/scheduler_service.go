package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/editorialhq/editorial-api/internal/authz"
	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
)

// SchedulerService binds posts to tasks and manages the scheduled →
// published lifecycle.
type SchedulerService interface {
	// SchedulePost marks a post as scheduled for the given instant.
	// Admins may schedule any post; authors only their own. Past instants
	// are accepted, so scheduling doubles as backdating.
	SchedulePost(ctx context.Context, caller domain.Caller, postID uuid.UUID, scheduledFor time.Time) (*domain.Post, error)

	// ListScheduled retrieves upcoming scheduled posts, publish instant
	// ascending. Non-admin callers only see their own posts.
	ListScheduled(ctx context.Context, caller domain.Caller) ([]*domain.Post, error)

	// LinkTaskToPost binds a post to a task in a single transaction: the
	// post gets the task reference, scheduled status and the task's
	// deadline as its publish instant; the task gets the post reference.
	// Returns ErrPostAlreadyLinked if either side already carries a link
	// to a different partner.
	LinkTaskToPost(ctx context.Context, caller domain.Caller, taskID, postID uuid.UUID) (*domain.Task, *domain.Post, error)

	// PublishDuePosts flips scheduled posts whose publish instant has
	// passed to published, returning the affected post IDs. Called by the
	// background publisher, not by handlers.
	PublishDuePosts(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// schedulerServiceImpl implements the SchedulerService interface.
type schedulerServiceImpl struct {
	db        *sql.DB
	taskStore store.TaskStore
	postStore store.PostStore
	logger    *slog.Logger
}

// NewSchedulerService creates a new SchedulerService.
// It returns an error if any of the required dependencies are nil.
func NewSchedulerService(
	db *sql.DB,
	taskStore store.TaskStore,
	postStore store.PostStore,
	logger *slog.Logger,
) (SchedulerService, error) {
	if db == nil {
		return nil, &ServiceError{
			Service:   "scheduler_service",
			Operation: "create_service",
			Message:   "db cannot be nil",
		}
	}
	if taskStore == nil {
		return nil, &ServiceError{
			Service:   "scheduler_service",
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
		}
	}
	if postStore == nil {
		return nil, &ServiceError{
			Service:   "scheduler_service",
			Operation: "create_service",
			Message:   "postStore cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &schedulerServiceImpl{
		db:        db,
		taskStore: taskStore,
		postStore: postStore,
		logger:    logger.With(slog.String("component", "scheduler_service")),
	}, nil
}

// SchedulePost marks a post as scheduled for the given instant.
func (s *schedulerServiceImpl) SchedulePost(
	ctx context.Context,
	caller domain.Caller,
	postID uuid.UUID,
	scheduledFor time.Time,
) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Resolve before authorizing, so a missing post is 404 and not 403.
	post, err := s.postStore.GetByID(ctx, postID)
	if err != nil {
		return nil, mapStoreError("scheduler_service", "schedule_post", "failed to retrieve post", err)
	}

	if err := authz.Require(caller, authz.PostSchedule, post.AuthorID); err != nil {
		log.Warn("post scheduling denied",
			slog.String("caller_id", caller.ID.String()),
			slog.String("post_id", postID.String()))
		return nil, err
	}

	if err := s.postStore.Schedule(ctx, postID, scheduledFor); err != nil {
		log.Error("failed to schedule post",
			slog.String("error", err.Error()),
			slog.String("post_id", postID.String()))
		return nil, mapStoreError("scheduler_service", "schedule_post", "failed to schedule post", err)
	}

	post.Schedule(scheduledFor)

	log.Info("post scheduled",
		slog.String("post_id", postID.String()),
		slog.Time("scheduled_for", scheduledFor),
		slog.String("caller_id", caller.ID.String()))
	return post, nil
}

// ListScheduled retrieves upcoming scheduled posts visible to the caller.
func (s *schedulerServiceImpl) ListScheduled(
	ctx context.Context,
	caller domain.Caller,
) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Require(caller, authz.PostList, uuid.Nil); err != nil {
		return nil, err
	}

	// Admins see the whole calendar; everyone else their own posts.
	var authorID *uuid.UUID
	if caller.Role != domain.RoleAdmin {
		callerID := caller.ID
		authorID = &callerID
	}

	posts, err := s.postStore.ListScheduled(ctx, time.Now().UTC(), authorID)
	if err != nil {
		log.Error("failed to list scheduled posts",
			slog.String("error", err.Error()),
			slog.String("caller_id", caller.ID.String()))
		return nil, mapStoreError("scheduler_service", "list_scheduled", "failed to list scheduled posts", err)
	}

	return posts, nil
}

// LinkTaskToPost binds a post to a task in a single transaction.
func (s *schedulerServiceImpl) LinkTaskToPost(
	ctx context.Context,
	caller domain.Caller,
	taskID, postID uuid.UUID,
) (*domain.Task, *domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, mapStoreError("scheduler_service", "link_task_to_post", "failed to retrieve task", err)
	}

	if err := authz.Require(caller, authz.TaskLink, task.AssignedTo); err != nil {
		log.Warn("task-post link denied",
			slog.String("caller_id", caller.ID.String()),
			slog.String("task_id", taskID.String()))
		return nil, nil, err
	}

	// Both sides of the link land or neither does. The publish instant is
	// the task's deadline; the unique constraint on the post's task
	// reference serializes concurrent link attempts.
	var post *domain.Post
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txPosts := s.postStore.WithTx(tx)
		txTasks := s.taskStore.WithTx(tx)

		if err := txPosts.SetTaskLink(ctx, postID, taskID, task.Deadline); err != nil {
			return mapStoreError("scheduler_service", "link_task_to_post", "failed to link post", err)
		}
		if err := txTasks.SetPostLink(ctx, taskID, postID); err != nil {
			return mapStoreError("scheduler_service", "link_task_to_post", "failed to link task", err)
		}

		linked, err := txPosts.GetByID(ctx, postID)
		if err != nil {
			return mapStoreError("scheduler_service", "link_task_to_post", "failed to reload post", err)
		}
		post = linked
		return nil
	})
	if err != nil {
		log.Warn("task-post link failed",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("post_id", postID.String()))
		return nil, nil, err
	}

	task.PostID = &postID
	task.UpdatedAt = time.Now().UTC()

	log.Info("task linked to post",
		slog.String("task_id", taskID.String()),
		slog.String("post_id", postID.String()),
		slog.Time("publish_at", task.Deadline),
		slog.String("caller_id", caller.ID.String()))
	return task, post, nil
}

// PublishDuePosts flips due scheduled posts to published.
func (s *schedulerServiceImpl) PublishDuePosts(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	published, err := s.postStore.PublishDue(ctx, now)
	if err != nil {
		log.Error("failed to publish due posts",
			slog.String("error", err.Error()))
		return nil, mapStoreError("scheduler_service", "publish_due_posts", "failed to publish due posts", err)
	}

	return published, nil
}

// Compile-time interface check
var _ SchedulerService = (*schedulerServiceImpl)(nil)
