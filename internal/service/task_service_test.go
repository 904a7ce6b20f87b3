package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/editorialhq/editorial-api/internal/authz"
	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCaller(role domain.Role) domain.Caller {
	return domain.Caller{
		ID:    uuid.New(),
		Role:  role,
		Email: "caller@example.com",
	}
}

func testTask(t *testing.T, assignedTo uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(
		"Write the launch recap",
		"Cover the Q3 launch",
		time.Now().UTC().Add(48*time.Hour),
		assignedTo,
		uuid.New(),
	)
	require.NoError(t, err)
	return task
}

func TestNewTaskService_NilDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewTaskService(nil, &mockUserStore{}, slog.Default())
	assert.Error(t, err, "nil task store should be rejected")

	_, err = NewTaskService(&mockTaskStore{}, nil, slog.Default())
	assert.Error(t, err, "nil user store should be rejected")

	svc, err := NewTaskService(&mockTaskStore{}, &mockUserStore{}, nil)
	assert.NoError(t, err, "nil logger should fall back to the default")
	assert.NotNil(t, svc)
}

func TestTaskService_ListTasks_ScopesNonPrivilegedCallers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name       string
		role       domain.Role
		wantScoped bool
	}{
		{name: "admin sees everything", role: domain.RoleAdmin, wantScoped: false},
		{name: "editor sees everything", role: domain.RoleEditor, wantScoped: false},
		{name: "author is scoped to own assignments", role: domain.RoleAuthor, wantScoped: true},
		{name: "reader is scoped to own assignments", role: domain.RoleReader, wantScoped: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			caller := testCaller(tc.role)
			var gotFilters store.TaskFilters
			taskStore := &mockTaskStore{
				ListFn: func(ctx context.Context, filters store.TaskFilters) ([]*store.TaskWithDetails, error) {
					gotFilters = filters
					return []*store.TaskWithDetails{}, nil
				},
			}

			svc, err := NewTaskService(taskStore, &mockUserStore{}, slog.Default())
			require.NoError(t, err)

			_, err = svc.ListTasks(ctx, caller, TaskListFilters{})
			require.NoError(t, err)

			if tc.wantScoped {
				require.NotNil(t, gotFilters.AssignedTo, "listing should be scoped to the caller")
				assert.Equal(t, caller.ID, *gotFilters.AssignedTo)
			} else {
				assert.Nil(t, gotFilters.AssignedTo, "privileged listing should not be scoped")
			}
		})
	}
}

func TestTaskService_ListTasks_PassesStatusAndPriorityFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	status := domain.TaskStatusInProgress
	priority := domain.TaskPriorityHigh

	var gotFilters store.TaskFilters
	taskStore := &mockTaskStore{
		ListFn: func(ctx context.Context, filters store.TaskFilters) ([]*store.TaskWithDetails, error) {
			gotFilters = filters
			return nil, nil
		},
	}

	svc, err := NewTaskService(taskStore, &mockUserStore{}, slog.Default())
	require.NoError(t, err)

	_, err = svc.ListTasks(ctx, testCaller(domain.RoleAdmin), TaskListFilters{
		Status:   &status,
		Priority: &priority,
	})
	require.NoError(t, err)

	require.NotNil(t, gotFilters.Status)
	assert.Equal(t, status, *gotFilters.Status)
	require.NotNil(t, gotFilters.Priority)
	assert.Equal(t, priority, *gotFilters.Priority)
}

func TestTaskService_CreateTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	assignee, err := domain.NewUser("writer@example.com", "Sam Writer", domain.RoleAuthor)
	require.NoError(t, err)

	userStore := &mockUserStore{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			if id == assignee.ID {
				return assignee, nil
			}
			return nil, store.ErrUserNotFound
		},
	}

	t.Run("editor creates a task with defaults", func(t *testing.T) {
		t.Parallel()

		var created *domain.Task
		taskStore := &mockTaskStore{
			CreateFn: func(ctx context.Context, task *domain.Task) error {
				created = task
				return nil
			},
		}
		svc, err := NewTaskService(taskStore, userStore, slog.Default())
		require.NoError(t, err)

		caller := testCaller(domain.RoleEditor)
		task, err := svc.CreateTask(ctx, caller, CreateTaskInput{
			Title:      "Interview the design lead",
			Deadline:   time.Now().UTC().Add(72 * time.Hour),
			AssignedTo: assignee.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, domain.TaskStatusOpen, task.Status)
		assert.Equal(t, domain.TaskPriorityNormal, task.Priority)
		assert.Equal(t, 0, task.Progress)
		assert.Equal(t, caller.ID, task.CreatedBy)
		assert.Equal(t, assignee.ID, task.AssignedTo)
	})

	t.Run("explicit priority is kept", func(t *testing.T) {
		t.Parallel()

		svc, err := NewTaskService(&mockTaskStore{}, userStore, slog.Default())
		require.NoError(t, err)

		urgent := domain.TaskPriorityUrgent
		task, err := svc.CreateTask(ctx, testCaller(domain.RoleAdmin), CreateTaskInput{
			Title:      "Hotfix announcement",
			Deadline:   time.Now().UTC().Add(2 * time.Hour),
			Priority:   &urgent,
			AssignedTo: assignee.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TaskPriorityUrgent, task.Priority)
	})

	t.Run("author may not create tasks", func(t *testing.T) {
		t.Parallel()

		svc, err := NewTaskService(&mockTaskStore{}, userStore, slog.Default())
		require.NoError(t, err)

		_, err = svc.CreateTask(ctx, testCaller(domain.RoleAuthor), CreateTaskInput{
			Title:      "Self-assigned work",
			Deadline:   time.Now().UTC().Add(time.Hour),
			AssignedTo: assignee.ID,
		})
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		t.Parallel()

		svc, err := NewTaskService(&mockTaskStore{}, userStore, slog.Default())
		require.NoError(t, err)

		_, err = svc.CreateTask(ctx, testCaller(domain.RoleEditor), CreateTaskInput{
			Title:      "Orphaned task",
			Deadline:   time.Now().UTC().Add(time.Hour),
			AssignedTo: uuid.New(),
		})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("empty title fails validation", func(t *testing.T) {
		t.Parallel()

		svc, err := NewTaskService(&mockTaskStore{}, userStore, slog.Default())
		require.NoError(t, err)

		_, err = svc.CreateTask(ctx, testCaller(domain.RoleEditor), CreateTaskInput{
			Title:      "   ",
			Deadline:   time.Now().UTC().Add(time.Hour),
			AssignedTo: assignee.ID,
		})
		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("assignee updates own task", func(t *testing.T) {
		t.Parallel()

		caller := testCaller(domain.RoleAuthor)
		task := testTask(t, caller.ID)

		var saved *domain.Task
		taskStore := &mockTaskStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
				return task, nil
			},
			UpdateFn: func(ctx context.Context, task *domain.Task) error {
				saved = task
				return nil
			},
		}
		svc, err := NewTaskService(taskStore, &mockUserStore{}, slog.Default())
		require.NoError(t, err)

		status := domain.TaskStatusInProgress
		progress := 40
		updated, err := svc.UpdateTask(ctx, caller, task.ID, UpdateTaskPatch{
			Status:   &status,
			Progress: &progress,
		})
		require.NoError(t, err)
		require.NotNil(t, saved)

		assert.Equal(t, domain.TaskStatusInProgress, updated.Status)
		assert.Equal(t, 40, updated.Progress)
	})

	t.Run("missing task wins over forbidden", func(t *testing.T) {
		t.Parallel()

		svc, err := NewTaskService(&mockTaskStore{}, &mockUserStore{}, slog.Default())
		require.NoError(t, err)

		// The reader could never update this task, but the 404 must be
		// reported first so callers cannot probe for task existence.
		status := domain.TaskStatusCompleted
		_, err = svc.UpdateTask(ctx, testCaller(domain.RoleReader), uuid.New(), UpdateTaskPatch{Status: &status})
		assert.ErrorIs(t, err, ErrTaskNotFound)
		assert.NotErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("non-assignee reader is forbidden", func(t *testing.T) {
		t.Parallel()

		task := testTask(t, uuid.New())
		taskStore := &mockTaskStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
				return task, nil
			},
		}
		svc, err := NewTaskService(taskStore, &mockUserStore{}, slog.Default())
		require.NoError(t, err)

		progress := 10
		_, err = svc.UpdateTask(ctx, testCaller(domain.RoleReader), task.ID, UpdateTaskPatch{Progress: &progress})
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("invalid progress is rejected", func(t *testing.T) {
		t.Parallel()

		caller := testCaller(domain.RoleAdmin)
		task := testTask(t, caller.ID)
		taskStore := &mockTaskStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
				return task, nil
			},
			UpdateFn: func(ctx context.Context, task *domain.Task) error {
				t.Fatal("update should not be reached for invalid progress")
				return nil
			},
		}
		svc, err := NewTaskService(taskStore, &mockUserStore{}, slog.Default())
		require.NoError(t, err)

		progress := 101
		_, err = svc.UpdateTask(ctx, caller, task.ID, UpdateTaskPatch{Progress: &progress})
		assert.ErrorIs(t, err, domain.ErrInvalidProgress)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		t.Parallel()

		caller := testCaller(domain.RoleAdmin)
		task := testTask(t, caller.ID)
		taskStore := &mockTaskStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
				return task, nil
			},
			UpdateFn: func(ctx context.Context, task *domain.Task) error {
				return errors.New("connection reset")
			},
		}
		svc, err := NewTaskService(taskStore, &mockUserStore{}, slog.Default())
		require.NoError(t, err)

		progress := 50
		_, err = svc.UpdateTask(ctx, caller, task.ID, UpdateTaskPatch{Progress: &progress})

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "task_service", svcErr.Service)
		assert.Equal(t, "update_task", svcErr.Operation)
	})
}
