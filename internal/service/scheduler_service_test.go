package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/editorialhq/editorial-api/internal/authz"
	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDriver backs a *sql.DB whose transactions begin, commit and roll
// back without a real database. The mock stores ignore the transaction
// handle, so this is all the scheduler tests need.
type stubDriver struct{}

func (stubDriver) Open(name string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("stub driver does not prepare statements")
}
func (stubConn) Close() error              { return nil }
func (stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubDriver sync.Once

func stubDB(t *testing.T) *sql.DB {
	t.Helper()
	registerStubDriver.Do(func() {
		sql.Register("stub", stubDriver{})
	})
	db, err := sql.Open("stub", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testPost(t *testing.T, authorID uuid.UUID) *domain.Post {
	t.Helper()
	post, err := domain.NewPost(authorID, "Shipping the redesign", "What changed and why")
	require.NoError(t, err)
	return post
}

func TestSchedulerService_SchedulePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("author schedules own post", func(t *testing.T) {
		t.Parallel()

		caller := testCaller(domain.RoleAuthor)
		post := testPost(t, caller.ID)
		scheduledFor := time.Now().UTC().Add(24 * time.Hour)

		var gotID uuid.UUID
		var gotAt time.Time
		postStore := &mockPostStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
				return post, nil
			},
			ScheduleFn: func(ctx context.Context, id uuid.UUID, publishAt time.Time) error {
				gotID = id
				gotAt = publishAt
				return nil
			},
		}

		svc, err := NewSchedulerService(stubDB(t), &mockTaskStore{}, postStore, slog.Default())
		require.NoError(t, err)

		scheduled, err := svc.SchedulePost(ctx, caller, post.ID, scheduledFor)
		require.NoError(t, err)

		assert.Equal(t, post.ID, gotID)
		assert.Equal(t, scheduledFor, gotAt)
		assert.Equal(t, domain.PostStatusScheduled, scheduled.Status)
		require.NotNil(t, scheduled.PublishedAt)
		assert.Equal(t, scheduledFor, *scheduled.PublishedAt)
	})

	t.Run("past instant backdates the post", func(t *testing.T) {
		t.Parallel()

		caller := testCaller(domain.RoleAdmin)
		post := testPost(t, uuid.New())
		backdated := time.Now().UTC().Add(-72 * time.Hour)

		svc, err := NewSchedulerService(stubDB(t), &mockTaskStore{}, &mockPostStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
				return post, nil
			},
		}, slog.Default())
		require.NoError(t, err)

		scheduled, err := svc.SchedulePost(ctx, caller, post.ID, backdated)
		require.NoError(t, err)
		require.NotNil(t, scheduled.PublishedAt)
		assert.Equal(t, backdated, *scheduled.PublishedAt)
	})

	t.Run("missing post wins over forbidden", func(t *testing.T) {
		t.Parallel()

		svc, err := NewSchedulerService(stubDB(t), &mockTaskStore{}, &mockPostStore{}, slog.Default())
		require.NoError(t, err)

		_, err = svc.SchedulePost(ctx, testCaller(domain.RoleReader), uuid.New(), time.Now().UTC())
		assert.ErrorIs(t, err, ErrPostNotFound)
		assert.NotErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("author may not schedule another author's post", func(t *testing.T) {
		t.Parallel()

		post := testPost(t, uuid.New())
		svc, err := NewSchedulerService(stubDB(t), &mockTaskStore{}, &mockPostStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
				return post, nil
			},
		}, slog.Default())
		require.NoError(t, err)

		_, err = svc.SchedulePost(ctx, testCaller(domain.RoleAuthor), post.ID, time.Now().UTC())
		assert.ErrorIs(t, err, authz.ErrForbidden)
	})
}

func TestSchedulerService_ListScheduled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name       string
		role       domain.Role
		wantScoped bool
		wantErr    error
	}{
		{name: "admin sees the whole calendar", role: domain.RoleAdmin, wantScoped: false},
		{name: "editor is scoped to own posts", role: domain.RoleEditor, wantScoped: true},
		{name: "author is scoped to own posts", role: domain.RoleAuthor, wantScoped: true},
		{name: "reader is forbidden", role: domain.RoleReader, wantErr: authz.ErrForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			caller := testCaller(tc.role)
			var gotAuthorID *uuid.UUID
			var gotNotBefore time.Time
			postStore := &mockPostStore{
				ListScheduledFn: func(ctx context.Context, notBefore time.Time, authorID *uuid.UUID) ([]*domain.Post, error) {
					gotNotBefore = notBefore
					gotAuthorID = authorID
					return []*domain.Post{}, nil
				},
			}

			svc, err := NewSchedulerService(stubDB(t), &mockTaskStore{}, postStore, slog.Default())
			require.NoError(t, err)

			_, err = svc.ListScheduled(ctx, caller)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)

			assert.WithinDuration(t, time.Now().UTC(), gotNotBefore, 5*time.Second)
			if tc.wantScoped {
				require.NotNil(t, gotAuthorID)
				assert.Equal(t, caller.ID, *gotAuthorID)
			} else {
				assert.Nil(t, gotAuthorID)
			}
		})
	}
}

func TestSchedulerService_LinkTaskToPost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("links both sides with the task deadline", func(t *testing.T) {
		t.Parallel()

		caller := testCaller(domain.RoleEditor)
		task := testTask(t, uuid.New())
		post := testPost(t, uuid.New())

		var linkedPublishAt time.Time
		var taskLinkedTo uuid.UUID
		taskStore := &mockTaskStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
				return task, nil
			},
			SetPostLinkFn: func(ctx context.Context, taskID, postID uuid.UUID) error {
				taskLinkedTo = postID
				return nil
			},
		}
		postStore := &mockPostStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
				linked := *post
				linked.ScheduledTaskID = &task.ID
				linked.Status = domain.PostStatusScheduled
				return &linked, nil
			},
			SetTaskLinkFn: func(ctx context.Context, postID, taskID uuid.UUID, publishAt time.Time) error {
				linkedPublishAt = publishAt
				return nil
			},
		}

		svc, err := NewSchedulerService(stubDB(t), taskStore, postStore, slog.Default())
		require.NoError(t, err)

		gotTask, gotPost, err := svc.LinkTaskToPost(ctx, caller, task.ID, post.ID)
		require.NoError(t, err)

		assert.Equal(t, task.Deadline, linkedPublishAt, "publish instant should be the task deadline")
		assert.Equal(t, post.ID, taskLinkedTo)
		require.NotNil(t, gotTask.PostID)
		assert.Equal(t, post.ID, *gotTask.PostID)
		require.NotNil(t, gotPost.ScheduledTaskID)
		assert.Equal(t, task.ID, *gotPost.ScheduledTaskID)
		assert.Equal(t, domain.PostStatusScheduled, gotPost.Status)
	})

	t.Run("conflict surfaces as already linked", func(t *testing.T) {
		t.Parallel()

		caller := testCaller(domain.RoleAdmin)
		task := testTask(t, uuid.New())

		taskStore := &mockTaskStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
				return task, nil
			},
		}
		postStore := &mockPostStore{
			SetTaskLinkFn: func(ctx context.Context, postID, taskID uuid.UUID, publishAt time.Time) error {
				return store.ErrPostAlreadyLinked
			},
		}

		svc, err := NewSchedulerService(stubDB(t), taskStore, postStore, slog.Default())
		require.NoError(t, err)

		_, _, err = svc.LinkTaskToPost(ctx, caller, task.ID, uuid.New())
		assert.ErrorIs(t, err, ErrPostAlreadyLinked)
	})

	t.Run("missing task wins over forbidden", func(t *testing.T) {
		t.Parallel()

		svc, err := NewSchedulerService(stubDB(t), &mockTaskStore{}, &mockPostStore{}, slog.Default())
		require.NoError(t, err)

		_, _, err = svc.LinkTaskToPost(ctx, testCaller(domain.RoleReader), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, ErrTaskNotFound)
		assert.NotErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("missing post inside the transaction", func(t *testing.T) {
		t.Parallel()

		caller := testCaller(domain.RoleAdmin)
		task := testTask(t, uuid.New())

		svc, err := NewSchedulerService(stubDB(t), &mockTaskStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
				return task, nil
			},
		}, &mockPostStore{
			SetTaskLinkFn: func(ctx context.Context, postID, taskID uuid.UUID, publishAt time.Time) error {
				return store.ErrPostNotFound
			},
		}, slog.Default())
		require.NoError(t, err)

		_, _, err = svc.LinkTaskToPost(ctx, caller, task.ID, uuid.New())
		assert.ErrorIs(t, err, ErrPostNotFound)
	})
}

func TestSchedulerService_PublishDuePosts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Now().UTC()
	published := []uuid.UUID{uuid.New(), uuid.New()}

	var gotNow time.Time
	svc, err := NewSchedulerService(stubDB(t), &mockTaskStore{}, &mockPostStore{
		PublishDueFn: func(ctx context.Context, at time.Time) ([]uuid.UUID, error) {
			gotNow = at
			return published, nil
		},
	}, slog.Default())
	require.NoError(t, err)

	got, err := svc.PublishDuePosts(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, published, got)
	assert.Equal(t, now, gotNow)
}
