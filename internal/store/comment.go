package store

import (
	"context"
	"database/sql"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/google/uuid"
)

// CommentWithAuthor pairs a comment with its author summary, plus any
// replies when loaded as part of a thread.
type CommentWithAuthor struct {
	Comment domain.TaskComment
	Author  domain.UserSummary
	Replies []CommentWithAuthor
}

// CommentStore defines the interface for task comment persistence.
// Comments are never updated; deletion happens only via the task's
// cascade.
type CommentStore interface {
	// Create saves a new comment to the store.
	Create(ctx context.Context, comment *domain.TaskComment) error

	// GetByID retrieves a comment by its unique ID.
	// Returns ErrCommentNotFound if the comment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskComment, error)

	// ListThread retrieves the comment thread for a task: top-level
	// comments ordered newest-first, each with its replies ordered
	// oldest-first and author summaries attached.
	ListThread(ctx context.Context, taskID uuid.UUID) ([]CommentWithAuthor, error)

	// WithTx returns a new CommentStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) CommentStore
}
