package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/editorialhq/editorial-api/internal/api/shared"
	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/service"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// mockTaskService implements service.TaskService with overridable
// function fields.
type mockTaskService struct {
	ListTasksFn  func(ctx context.Context, caller domain.Caller, filters service.TaskListFilters) ([]*store.TaskWithDetails, error)
	CreateTaskFn func(ctx context.Context, caller domain.Caller, input service.CreateTaskInput) (*domain.Task, error)
	GetTaskFn    func(ctx context.Context, caller domain.Caller, taskID uuid.UUID) (*domain.Task, error)
	UpdateTaskFn func(ctx context.Context, caller domain.Caller, taskID uuid.UUID, patch service.UpdateTaskPatch) (*domain.Task, error)
}

func (m *mockTaskService) ListTasks(
	ctx context.Context,
	caller domain.Caller,
	filters service.TaskListFilters,
) ([]*store.TaskWithDetails, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx, caller, filters)
	}
	return nil, nil
}

func (m *mockTaskService) CreateTask(
	ctx context.Context,
	caller domain.Caller,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, caller, input)
	}
	return nil, service.ErrTaskNotFound
}

func (m *mockTaskService) GetTask(
	ctx context.Context,
	caller domain.Caller,
	taskID uuid.UUID,
) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, caller, taskID)
	}
	return nil, service.ErrTaskNotFound
}

func (m *mockTaskService) UpdateTask(
	ctx context.Context,
	caller domain.Caller,
	taskID uuid.UUID,
	patch service.UpdateTaskPatch,
) (*domain.Task, error) {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, caller, taskID, patch)
	}
	return nil, service.ErrTaskNotFound
}

// mockCommentService implements service.CommentService.
type mockCommentService struct {
	ListCommentsFn func(ctx context.Context, caller domain.Caller, taskID uuid.UUID) ([]store.CommentWithAuthor, error)
	AddCommentFn   func(ctx context.Context, caller domain.Caller, taskID uuid.UUID, content string, parentID *uuid.UUID) (*domain.TaskComment, error)
}

func (m *mockCommentService) ListComments(
	ctx context.Context,
	caller domain.Caller,
	taskID uuid.UUID,
) ([]store.CommentWithAuthor, error) {
	if m.ListCommentsFn != nil {
		return m.ListCommentsFn(ctx, caller, taskID)
	}
	return nil, nil
}

func (m *mockCommentService) AddComment(
	ctx context.Context,
	caller domain.Caller,
	taskID uuid.UUID,
	content string,
	parentID *uuid.UUID,
) (*domain.TaskComment, error) {
	if m.AddCommentFn != nil {
		return m.AddCommentFn(ctx, caller, taskID, content, parentID)
	}
	return nil, service.ErrTaskNotFound
}

// mockSchedulerService implements service.SchedulerService.
type mockSchedulerService struct {
	SchedulePostFn    func(ctx context.Context, caller domain.Caller, postID uuid.UUID, scheduledFor time.Time) (*domain.Post, error)
	ListScheduledFn   func(ctx context.Context, caller domain.Caller) ([]*domain.Post, error)
	LinkTaskToPostFn  func(ctx context.Context, caller domain.Caller, taskID, postID uuid.UUID) (*domain.Task, *domain.Post, error)
	PublishDuePostsFn func(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

func (m *mockSchedulerService) SchedulePost(
	ctx context.Context,
	caller domain.Caller,
	postID uuid.UUID,
	scheduledFor time.Time,
) (*domain.Post, error) {
	if m.SchedulePostFn != nil {
		return m.SchedulePostFn(ctx, caller, postID, scheduledFor)
	}
	return nil, service.ErrPostNotFound
}

func (m *mockSchedulerService) ListScheduled(
	ctx context.Context,
	caller domain.Caller,
) ([]*domain.Post, error) {
	if m.ListScheduledFn != nil {
		return m.ListScheduledFn(ctx, caller)
	}
	return nil, nil
}

func (m *mockSchedulerService) LinkTaskToPost(
	ctx context.Context,
	caller domain.Caller,
	taskID, postID uuid.UUID,
) (*domain.Task, *domain.Post, error) {
	if m.LinkTaskToPostFn != nil {
		return m.LinkTaskToPostFn(ctx, caller, taskID, postID)
	}
	return nil, nil, service.ErrTaskNotFound
}

func (m *mockSchedulerService) PublishDuePosts(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	if m.PublishDuePostsFn != nil {
		return m.PublishDuePostsFn(ctx, now)
	}
	return nil, nil
}

// mockNotificationService implements service.NotificationService.
type mockNotificationService struct {
	SendDeadlineRemindersFn func(ctx context.Context, now time.Time) ([]service.DeliveryResult, error)
	RemindTaskAssigneeFn    func(ctx context.Context, caller domain.Caller, taskID uuid.UUID) (service.DeliveryResult, error)
	SendModerationResultFn  func(ctx context.Context, caller domain.Caller, postID uuid.UUID, status service.ModerationStatus, feedbackURL string) (service.DeliveryResult, error)
}

func (m *mockNotificationService) SendDeadlineReminders(
	ctx context.Context,
	now time.Time,
) ([]service.DeliveryResult, error) {
	if m.SendDeadlineRemindersFn != nil {
		return m.SendDeadlineRemindersFn(ctx, now)
	}
	return nil, nil
}

func (m *mockNotificationService) RemindTaskAssignee(
	ctx context.Context,
	caller domain.Caller,
	taskID uuid.UUID,
) (service.DeliveryResult, error) {
	if m.RemindTaskAssigneeFn != nil {
		return m.RemindTaskAssigneeFn(ctx, caller, taskID)
	}
	return service.DeliveryResult{}, service.ErrTaskNotFound
}

func (m *mockNotificationService) SendModerationResult(
	ctx context.Context,
	caller domain.Caller,
	postID uuid.UUID,
	status service.ModerationStatus,
	feedbackURL string,
) (service.DeliveryResult, error) {
	if m.SendModerationResultFn != nil {
		return m.SendModerationResultFn(ctx, caller, postID, status, feedbackURL)
	}
	return service.DeliveryResult{}, service.ErrPostNotFound
}

// mockActivityService records entries for inspection.
type mockActivityService struct {
	Entries []service.ActivityEntry
}

func (m *mockActivityService) Record(ctx context.Context, caller domain.Caller, entry service.ActivityEntry) {
	m.Entries = append(m.Entries, entry)
}

// mockUserStore implements store.UserStore for the auth handler tests.
type mockUserStore struct {
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error { return nil }

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

// mockPasswordVerifier accepts one password and rejects everything else.
type mockPasswordVerifier struct {
	accept string
}

func (m *mockPasswordVerifier) Compare(hashedPassword, password string) error {
	if password == m.accept {
		return nil
	}
	return errors.New("crypto/bcrypt: hashedPassword is not the hash of the given password")
}

// Interface conformance for the mocks.
var (
	_ service.TaskService         = (*mockTaskService)(nil)
	_ service.CommentService      = (*mockCommentService)(nil)
	_ service.SchedulerService    = (*mockSchedulerService)(nil)
	_ service.NotificationService = (*mockNotificationService)(nil)
	_ service.ActivityService     = (*mockActivityService)(nil)
	_ store.UserStore             = (*mockUserStore)(nil)
)

// testCaller builds an authenticated caller with the given role.
func testCaller(role domain.Role) domain.Caller {
	return domain.Caller{
		ID:    uuid.New(),
		Role:  role,
		Email: "caller@example.com",
	}
}

// newRequest builds a request with an optional JSON body, the caller in
// context and an optional chi path parameter named "id".
func newRequest(
	t *testing.T,
	method, target string,
	body any,
	caller *domain.Caller,
	pathID string,
) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if caller != nil {
		ctx = shared.WithCaller(ctx, *caller)
	}
	if pathID != "" {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", pathID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}

	return req.WithContext(ctx)
}

// decodeBody unmarshals a JSON response body into v.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}
