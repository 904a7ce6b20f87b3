package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/google/uuid"
)

// PostStore defines the interface for the post fields the scheduling core
// touches. The wider CMS owns the rest of the post surface.
type PostStore interface {
	// GetByID retrieves a post by its unique ID.
	// Returns ErrPostNotFound if the post does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	// Schedule sets the post's status to scheduled and its publish instant.
	// Returns ErrPostNotFound if the post does not exist.
	Schedule(ctx context.Context, id uuid.UUID, publishAt time.Time) error

	// SetTaskLink records the post side of the scheduling link: the task
	// reference, scheduled status and publish instant, in one statement.
	// Returns ErrPostNotFound if the post does not exist and
	// ErrPostAlreadyLinked if the unique constraint on the task reference
	// rejects the write.
	SetTaskLink(ctx context.Context, postID, taskID uuid.UUID, publishAt time.Time) error

	// ListScheduled retrieves posts with scheduled status and a publish
	// instant at or after the given time, ordered by publish instant
	// ascending. When authorID is non-nil the listing is scoped to that
	// author's posts.
	ListScheduled(ctx context.Context, notBefore time.Time, authorID *uuid.UUID) ([]*domain.Post, error)

	// PublishDue flips scheduled posts whose publish instant has passed to
	// published. Returns the IDs of the posts it published.
	PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)

	// WithTx returns a new PostStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) PostStore
}
