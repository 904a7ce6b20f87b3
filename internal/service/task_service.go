package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/editorialhq/editorial-api/internal/authz"
	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
)

// TaskListFilters narrows a task listing from the caller's perspective.
// Assignment scoping is applied by the service, not the caller.
type TaskListFilters struct {
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
}

// CreateTaskInput carries the fields a caller may set when creating a task.
// Priority defaults to normal when nil.
type CreateTaskInput struct {
	Title       string
	Description string
	Topic       *string
	Deadline    time.Time
	Priority    *domain.TaskPriority
	Recurring   bool
	Recurrence  *string
	AssignedTo  uuid.UUID
}

// UpdateTaskPatch carries the mutable task fields. Nil fields are left
// untouched.
type UpdateTaskPatch struct {
	Status   *domain.TaskStatus
	Progress *int
}

// TaskService provides task management operations.
type TaskService interface {
	// ListTasks retrieves tasks visible to the caller, deadline ascending,
	// enriched with assignee, linked post and recent comments. Callers
	// without a privileged role only see their own assignments.
	ListTasks(ctx context.Context, caller domain.Caller, filters TaskListFilters) ([]*store.TaskWithDetails, error)

	// CreateTask creates a new task. Only admins and editors may create
	// tasks; returns ErrUserNotFound if the assignee does not exist.
	CreateTask(ctx context.Context, caller domain.Caller, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a single task the caller may read.
	GetTask(ctx context.Context, caller domain.Caller, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a status and/or progress change. The assignee and
	// privileged roles may update; returns ErrTaskNotFound before any
	// authorization decision when the task does not exist.
	UpdateTask(ctx context.Context, caller domain.Caller, taskID uuid.UUID, patch UpdateTaskPatch) (*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore store.TaskStore
	userStore store.UserStore
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskStore store.TaskStore,
	userStore store.UserStore,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, &ServiceError{
			Service:   "task_service",
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
		}
	}
	if userStore == nil {
		return nil, &ServiceError{
			Service:   "task_service",
			Operation: "create_service",
			Message:   "userStore cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		userStore: userStore,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// ListTasks retrieves tasks visible to the caller.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	caller domain.Caller,
	filters TaskListFilters,
) ([]*store.TaskWithDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Require(caller, authz.TaskRead, uuid.Nil); err != nil {
		return nil, err
	}

	storeFilters := store.TaskFilters{
		Status:   filters.Status,
		Priority: filters.Priority,
	}
	// Non-privileged callers only see their own assignments.
	if !caller.Role.Privileged() {
		callerID := caller.ID
		storeFilters.AssignedTo = &callerID
	}

	tasks, err := s.taskStore.List(ctx, storeFilters)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("caller_id", caller.ID.String()))
		return nil, mapStoreError("task_service", "list_tasks", "failed to list tasks", err)
	}

	log.Debug("listed tasks",
		slog.Int("count", len(tasks)),
		slog.String("caller_id", caller.ID.String()),
		slog.Bool("scoped", storeFilters.AssignedTo != nil))
	return tasks, nil
}

// CreateTask creates a new task assigned to an existing user.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	caller domain.Caller,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Require(caller, authz.TaskCreate, uuid.Nil); err != nil {
		log.Warn("task creation denied",
			slog.String("caller_id", caller.ID.String()),
			slog.String("role", string(caller.Role)))
		return nil, err
	}

	// The assignee must resolve to a real user before anything is written.
	if _, err := s.userStore.GetByID(ctx, input.AssignedTo); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("task creation with unknown assignee",
				slog.String("assignee_id", input.AssignedTo.String()))
			return nil, ErrUserNotFound
		}
		return nil, mapStoreError("task_service", "create_task", "failed to resolve assignee", err)
	}

	task, err := domain.NewTask(input.Title, input.Description, input.Deadline, input.AssignedTo, caller.ID)
	if err != nil {
		log.Warn("task validation failed",
			slog.String("error", err.Error()),
			slog.String("caller_id", caller.ID.String()))
		return nil, err
	}

	task.Topic = input.Topic
	task.Recurring = input.Recurring
	task.Recurrence = input.Recurrence
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, ErrUserNotFound
		}
		return nil, mapStoreError("task_service", "create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("assignee_id", task.AssignedTo.String()),
		slog.String("created_by", caller.ID.String()))
	return task, nil
}

// GetTask retrieves a single task.
func (s *taskServiceImpl) GetTask(
	ctx context.Context,
	caller domain.Caller,
	taskID uuid.UUID,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, mapStoreError("task_service", "get_task", "failed to retrieve task", err)
	}

	if err := authz.Require(caller, authz.TaskRead, task.AssignedTo); err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTask applies a status and/or progress change to a task.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	caller domain.Caller,
	taskID uuid.UUID,
	patch UpdateTaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Resolve before authorizing, so a missing task is 404 and not 403.
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, mapStoreError("task_service", "update_task", "failed to retrieve task", err)
	}

	if err := authz.Require(caller, authz.TaskUpdate, task.AssignedTo); err != nil {
		log.Warn("task update denied",
			slog.String("caller_id", caller.ID.String()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	if patch.Status != nil {
		if err := task.UpdateStatus(*patch.Status); err != nil {
			return nil, err
		}
	}
	if patch.Progress != nil {
		if err := task.UpdateProgress(*patch.Progress); err != nil {
			return nil, err
		}
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, mapStoreError("task_service", "update_task", "failed to save task", err)
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("status", string(task.Status)),
		slog.Int("progress", task.Progress),
		slog.String("caller_id", caller.ID.String()))
	return task, nil
}

// Compile-time interface check
var _ TaskService = (*taskServiceImpl)(nil)
