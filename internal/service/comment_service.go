package service

import (
	"context"
	"log/slog"

	"github.com/editorialhq/editorial-api/internal/authz"
	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
)

// CommentService provides the task discussion thread.
type CommentService interface {
	// ListComments retrieves the comment thread of a task: top-level
	// comments newest-first, replies oldest-first, authors attached.
	// The thread is visible to the assignee and to privileged roles.
	ListComments(ctx context.Context, caller domain.Caller, taskID uuid.UUID) ([]store.CommentWithAuthor, error)

	// AddComment appends a comment (or a reply when parentID is set) to a
	// task's thread. Content is trimmed and must be 1..2000 characters.
	// Returns ErrCommentNotFound when the parent does not exist or belongs
	// to a different task.
	AddComment(
		ctx context.Context,
		caller domain.Caller,
		taskID uuid.UUID,
		content string,
		parentID *uuid.UUID,
	) (*domain.TaskComment, error)
}

// commentServiceImpl implements the CommentService interface.
type commentServiceImpl struct {
	taskStore    store.TaskStore
	commentStore store.CommentStore
	logger       *slog.Logger
}

// NewCommentService creates a new CommentService.
// It returns an error if any of the required dependencies are nil.
func NewCommentService(
	taskStore store.TaskStore,
	commentStore store.CommentStore,
	logger *slog.Logger,
) (CommentService, error) {
	if taskStore == nil {
		return nil, &ServiceError{
			Service:   "comment_service",
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
		}
	}
	if commentStore == nil {
		return nil, &ServiceError{
			Service:   "comment_service",
			Operation: "create_service",
			Message:   "commentStore cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &commentServiceImpl{
		taskStore:    taskStore,
		commentStore: commentStore,
		logger:       logger.With(slog.String("component", "comment_service")),
	}, nil
}

// ListComments retrieves the comment thread for a task.
func (s *commentServiceImpl) ListComments(
	ctx context.Context,
	caller domain.Caller,
	taskID uuid.UUID,
) ([]store.CommentWithAuthor, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Resolve before authorizing, so a missing task is 404 and not 403.
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, mapStoreError("comment_service", "list_comments", "failed to retrieve task", err)
	}

	if err := authz.Require(caller, authz.TaskComment, task.AssignedTo); err != nil {
		log.Warn("comment listing denied",
			slog.String("caller_id", caller.ID.String()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	thread, err := s.commentStore.ListThread(ctx, taskID)
	if err != nil {
		log.Error("failed to list comment thread",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, mapStoreError("comment_service", "list_comments", "failed to load thread", err)
	}

	return thread, nil
}

// AddComment appends a comment to a task's thread.
func (s *commentServiceImpl) AddComment(
	ctx context.Context,
	caller domain.Caller,
	taskID uuid.UUID,
	content string,
	parentID *uuid.UUID,
) (*domain.TaskComment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, mapStoreError("comment_service", "add_comment", "failed to retrieve task", err)
	}

	if err := authz.Require(caller, authz.TaskComment, task.AssignedTo); err != nil {
		log.Warn("comment creation denied",
			slog.String("caller_id", caller.ID.String()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	// A reply's parent must exist on the same task. A parent on another
	// task is indistinguishable from a missing one to the caller.
	if parentID != nil {
		parent, err := s.commentStore.GetByID(ctx, *parentID)
		if err != nil {
			return nil, mapStoreError("comment_service", "add_comment", "failed to resolve parent comment", err)
		}
		if parent.TaskID != taskID {
			log.Warn("reply parent belongs to a different task",
				slog.String("parent_id", parentID.String()),
				slog.String("task_id", taskID.String()))
			return nil, ErrCommentNotFound
		}
	}

	comment, err := domain.NewTaskComment(taskID, caller.ID, content, parentID)
	if err != nil {
		return nil, err
	}

	if err := s.commentStore.Create(ctx, comment); err != nil {
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, mapStoreError("comment_service", "add_comment", "failed to save comment", err)
	}

	log.Info("comment added",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", taskID.String()),
		slog.Bool("reply", parentID != nil))
	return comment, nil
}

// Compile-time interface check
var _ CommentService = (*commentServiceImpl)(nil)
