package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/google/uuid"
)

// TaskFilters narrows a task listing. Nil fields are ignored.
// AssignedTo is set by the service for non-privileged callers so the
// query only returns their own assignments.
type TaskFilters struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssignedTo *uuid.UUID
}

// TaskWithDetails is a task enriched with the summaries the listing
// endpoint returns alongside it.
type TaskWithDetails struct {
	Task           domain.Task
	Assignee       domain.UserSummary
	LinkedPost     *domain.PostSummary
	RecentComments []CommentWithAuthor
	CommentCount   int
}

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the assignee does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// List retrieves tasks matching the filters, ordered by deadline
	// ascending, each enriched with assignee summary, linked post summary,
	// the 3 most recent comments and the total comment count.
	List(ctx context.Context, filters TaskFilters) ([]*TaskWithDetails, error)

	// ListDueBetween retrieves tasks with the given status whose deadline
	// falls in [from, to], each with its assignee loaded. Used by the
	// reminder dispatcher.
	ListDueBetween(ctx context.Context, from, to time.Time, status domain.TaskStatus) ([]*TaskWithAssignee, error)

	// SetPostLink records the task side of the scheduling link.
	// Returns ErrTaskNotFound if the task does not exist.
	SetPostLink(ctx context.Context, taskID, postID uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}

// TaskWithAssignee pairs a task with its assignee for notification
// composition.
type TaskWithAssignee struct {
	Task     domain.Task
	Assignee domain.UserSummary
}
