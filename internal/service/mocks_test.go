package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/mail"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
)

// mockTaskStore implements store.TaskStore with overridable function
// fields. Unset fields return zero values.
type mockTaskStore struct {
	CreateFn         func(ctx context.Context, task *domain.Task) error
	GetByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	UpdateFn         func(ctx context.Context, task *domain.Task) error
	ListFn           func(ctx context.Context, filters store.TaskFilters) ([]*store.TaskWithDetails, error)
	ListDueBetweenFn func(ctx context.Context, from, to time.Time, status domain.TaskStatus) ([]*store.TaskWithAssignee, error)
	SetPostLinkFn    func(ctx context.Context, taskID, postID uuid.UUID) error
}

func (m *mockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) List(ctx context.Context, filters store.TaskFilters) ([]*store.TaskWithDetails, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filters)
	}
	return nil, nil
}

func (m *mockTaskStore) ListDueBetween(
	ctx context.Context,
	from, to time.Time,
	status domain.TaskStatus,
) ([]*store.TaskWithAssignee, error) {
	if m.ListDueBetweenFn != nil {
		return m.ListDueBetweenFn(ctx, from, to, status)
	}
	return nil, nil
}

func (m *mockTaskStore) SetPostLink(ctx context.Context, taskID, postID uuid.UUID) error {
	if m.SetPostLinkFn != nil {
		return m.SetPostLinkFn(ctx, taskID, postID)
	}
	return nil
}

func (m *mockTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return m }

// mockPostStore implements store.PostStore with overridable function fields.
type mockPostStore struct {
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	ScheduleFn      func(ctx context.Context, id uuid.UUID, publishAt time.Time) error
	SetTaskLinkFn   func(ctx context.Context, postID, taskID uuid.UUID, publishAt time.Time) error
	ListScheduledFn func(ctx context.Context, notBefore time.Time, authorID *uuid.UUID) ([]*domain.Post, error)
	PublishDueFn    func(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

func (m *mockPostStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrPostNotFound
}

func (m *mockPostStore) Schedule(ctx context.Context, id uuid.UUID, publishAt time.Time) error {
	if m.ScheduleFn != nil {
		return m.ScheduleFn(ctx, id, publishAt)
	}
	return nil
}

func (m *mockPostStore) SetTaskLink(ctx context.Context, postID, taskID uuid.UUID, publishAt time.Time) error {
	if m.SetTaskLinkFn != nil {
		return m.SetTaskLinkFn(ctx, postID, taskID, publishAt)
	}
	return nil
}

func (m *mockPostStore) ListScheduled(
	ctx context.Context,
	notBefore time.Time,
	authorID *uuid.UUID,
) ([]*domain.Post, error) {
	if m.ListScheduledFn != nil {
		return m.ListScheduledFn(ctx, notBefore, authorID)
	}
	return nil, nil
}

func (m *mockPostStore) PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	if m.PublishDueFn != nil {
		return m.PublishDueFn(ctx, now)
	}
	return nil, nil
}

func (m *mockPostStore) WithTx(tx *sql.Tx) store.PostStore { return m }

// mockCommentStore implements store.CommentStore with overridable function fields.
type mockCommentStore struct {
	CreateFn     func(ctx context.Context, comment *domain.TaskComment) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.TaskComment, error)
	ListThreadFn func(ctx context.Context, taskID uuid.UUID) ([]store.CommentWithAuthor, error)
}

func (m *mockCommentStore) Create(ctx context.Context, comment *domain.TaskComment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, comment)
	}
	return nil
}

func (m *mockCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskComment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrCommentNotFound
}

func (m *mockCommentStore) ListThread(ctx context.Context, taskID uuid.UUID) ([]store.CommentWithAuthor, error) {
	if m.ListThreadFn != nil {
		return m.ListThreadFn(ctx, taskID)
	}
	return nil, nil
}

func (m *mockCommentStore) WithTx(tx *sql.Tx) store.CommentStore { return m }

// mockUserStore implements store.UserStore with overridable function fields.
type mockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

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

// mockActivityStore implements store.ActivityStore, recording appended
// entries for inspection.
type mockActivityStore struct {
	mu       sync.Mutex
	AppendFn func(ctx context.Context, entry *domain.ActivityLog) error
	Entries  []*domain.ActivityLog
}

func (m *mockActivityStore) Append(ctx context.Context, entry *domain.ActivityLog) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

// mockSender implements mail.Sender, recording sent messages. FailFor
// makes delivery to matching recipients fail.
type mockSender struct {
	mu      sync.Mutex
	Sent    []mail.Message
	FailFor map[string]bool
}

func (m *mockSender) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor[msg.To] {
		return errors.New("smtp: connection refused")
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Interface conformance for the mocks.
var (
	_ store.TaskStore     = (*mockTaskStore)(nil)
	_ store.PostStore     = (*mockPostStore)(nil)
	_ store.CommentStore  = (*mockCommentStore)(nil)
	_ store.UserStore     = (*mockUserStore)(nil)
	_ store.ActivityStore = (*mockActivityStore)(nil)
	_ mail.Sender         = (*mockSender)(nil)
)
