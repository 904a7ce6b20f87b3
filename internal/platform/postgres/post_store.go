package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
)

// PostgresPostStore implements the store.PostStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPostStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPostStore creates a new PostgreSQL implementation of the
// PostStore interface.
func NewPostgresPostStore(db store.DBTX, logger *slog.Logger) *PostgresPostStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPostStore{
		db:     db,
		logger: logger.With(slog.String("component", "post_store")),
	}
}

// Ensure PostgresPostStore implements store.PostStore interface
var _ store.PostStore = (*PostgresPostStore)(nil)

// WithTx implements store.PostStore.WithTx
func (s *PostgresPostStore) WithTx(tx *sql.Tx) store.PostStore {
	return &PostgresPostStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByID implements store.PostStore.GetByID
// Returns store.ErrPostNotFound if the post does not exist.
func (s *PostgresPostStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, author_id, title, summary, status, published_at, scheduled_task_id,
			created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	var (
		post        domain.Post
		publishedAt sql.NullTime
		taskID      uuid.NullUUID
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Summary,
		&post.Status,
		&publishedAt,
		&taskID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("post not found", slog.String("post_id", id.String()))
			return nil, store.ErrPostNotFound
		}
		log.Error("failed to get post by ID",
			slog.String("error", err.Error()),
			slog.String("post_id", id.String()))
		return nil, err
	}

	if publishedAt.Valid {
		t := publishedAt.Time
		post.PublishedAt = &t
	}
	if taskID.Valid {
		tid := taskID.UUID
		post.ScheduledTaskID = &tid
	}

	return &post, nil
}

// Schedule implements store.PostStore.Schedule
// The publish instant is stored as given; past instants are accepted
// (scheduling doubles as backdating).
// Returns store.ErrPostNotFound if the post does not exist.
func (s *PostgresPostStore) Schedule(ctx context.Context, id uuid.UUID, publishAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE posts
		SET status = $1, published_at = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		domain.PostStatusScheduled,
		publishAt,
		time.Now().UTC(),
		id,
	)

	if err != nil {
		log.Error("failed to schedule post",
			slog.String("error", err.Error()),
			slog.String("post_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		log.Debug("post not found for scheduling",
			slog.String("post_id", id.String()))
		return store.ErrPostNotFound
	}

	log.Info("post scheduled",
		slog.String("post_id", id.String()),
		slog.Time("publish_at", publishAt))
	return nil
}

// SetTaskLink implements store.PostStore.SetTaskLink
// The unique index on scheduled_task_id serializes concurrent link
// attempts: the loser gets store.ErrPostAlreadyLinked.
func (s *PostgresPostStore) SetTaskLink(ctx context.Context, postID, taskID uuid.UUID, publishAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Refuse to overwrite an existing link to a different task.
	query := `
		UPDATE posts
		SET scheduled_task_id = $1, status = $2, published_at = $3, updated_at = $4
		WHERE id = $5 AND (scheduled_task_id IS NULL OR scheduled_task_id = $1)
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		taskID,
		domain.PostStatusScheduled,
		publishAt,
		time.Now().UTC(),
		postID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("task already linked to another post",
				slog.String("task_id", taskID.String()),
				slog.String("post_id", postID.String()))
			return store.ErrPostAlreadyLinked
		}
		log.Error("failed to set post task link",
			slog.String("error", err.Error()),
			slog.String("post_id", postID.String()),
			slog.String("task_id", taskID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// Either the post is missing or it already carries a different
		// link; distinguish the two for the caller.
		var exists bool
		checkQuery := `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`
		if err := s.db.QueryRowContext(ctx, checkQuery, postID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return store.ErrPostNotFound
		}
		log.Warn("post already linked to a different task",
			slog.String("post_id", postID.String()),
			slog.String("task_id", taskID.String()))
		return store.ErrPostAlreadyLinked
	}

	log.Info("post linked to task",
		slog.String("post_id", postID.String()),
		slog.String("task_id", taskID.String()),
		slog.Time("publish_at", publishAt))
	return nil
}

// ListScheduled implements store.PostStore.ListScheduled
func (s *PostgresPostStore) ListScheduled(
	ctx context.Context,
	notBefore time.Time,
	authorID *uuid.UUID,
) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, author_id, title, summary, status, published_at, scheduled_task_id,
			created_at, updated_at
		FROM posts
		WHERE status = $1 AND published_at >= $2
		  AND ($3::uuid IS NULL OR author_id = $3)
		ORDER BY published_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, domain.PostStatusScheduled, notBefore, authorID)
	if err != nil {
		log.Error("failed to query scheduled posts",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var posts []*domain.Post
	for rows.Next() {
		var (
			post        domain.Post
			publishedAt sql.NullTime
			taskID      uuid.NullUUID
		)

		err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.Title,
			&post.Summary,
			&post.Status,
			&publishedAt,
			&taskID,
			&post.CreatedAt,
			&post.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan scheduled post row",
				slog.String("error", err.Error()))
			return nil, err
		}

		if publishedAt.Valid {
			t := publishedAt.Time
			post.PublishedAt = &t
		}
		if taskID.Valid {
			tid := taskID.UUID
			post.ScheduledTaskID = &tid
		}

		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning scheduled post rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if posts == nil {
		posts = []*domain.Post{}
	}

	log.Debug("listed scheduled posts", slog.Int("count", len(posts)))
	return posts, nil
}

// PublishDue implements store.PostStore.PublishDue
func (s *PostgresPostStore) PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE status = $3 AND published_at <= $4
		RETURNING id
	`

	rows, err := s.db.QueryContext(
		ctx,
		query,
		domain.PostStatusPublished,
		time.Now().UTC(),
		domain.PostStatusScheduled,
		now,
	)
	if err != nil {
		log.Error("failed to publish due posts",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var published []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		published = append(published, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(published) > 0 {
		log.Info("published due posts", slog.Int("count", len(published)))
	}
	return published, nil
}
