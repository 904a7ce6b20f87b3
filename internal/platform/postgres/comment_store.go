package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
)

// PostgresCommentStore implements the store.CommentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCommentStore creates a new PostgreSQL implementation of the
// CommentStore interface.
func NewPostgresCommentStore(db store.DBTX, logger *slog.Logger) *PostgresCommentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "comment_store")),
	}
}

// Ensure PostgresCommentStore implements store.CommentStore interface
var _ store.CommentStore = (*PostgresCommentStore)(nil)

// WithTx implements store.CommentStore.WithTx
func (s *PostgresCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return &PostgresCommentStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CommentStore.Create
// Returns store.ErrInvalidEntity if the task or author does not exist.
func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.TaskComment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		log.Warn("comment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return err
	}

	query := `
		INSERT INTO task_comments (id, task_id, author_id, parent_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		comment.ID,
		comment.TaskID,
		comment.AuthorID,
		comment.ParentID,
		comment.Content,
		comment.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during comment creation",
				slog.String("error", err.Error()),
				slog.String("comment_id", comment.ID.String()),
				slog.String("task_id", comment.TaskID.String()))
			return fmt.Errorf("%w: comment references a missing row",
				store.ErrInvalidEntity)
		}

		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return err
	}

	log.Info("comment created successfully",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", comment.TaskID.String()))
	return nil
}

// GetByID implements store.CommentStore.GetByID
// Returns store.ErrCommentNotFound if the comment does not exist.
func (s *PostgresCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskComment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, author_id, parent_id, content, created_at
		FROM task_comments
		WHERE id = $1
	`

	var (
		comment  domain.TaskComment
		parentID uuid.NullUUID
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.TaskID,
		&comment.AuthorID,
		&parentID,
		&comment.Content,
		&comment.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("comment not found", slog.String("comment_id", id.String()))
			return nil, store.ErrCommentNotFound
		}
		log.Error("failed to get comment by ID",
			slog.String("error", err.Error()),
			slog.String("comment_id", id.String()))
		return nil, err
	}

	if parentID.Valid {
		pid := parentID.UUID
		comment.ParentID = &pid
	}

	return &comment, nil
}

// ListThread implements store.CommentStore.ListThread
// Top-level comments come back newest-first; each carries its replies
// oldest-first. Threading is a single level deep, which the query shape
// enforces by only collecting replies of top-level comments.
func (s *PostgresCommentStore) ListThread(ctx context.Context, taskID uuid.UUID) ([]store.CommentWithAuthor, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT c.id, c.task_id, c.author_id, c.parent_id, c.content, c.created_at,
			u.name, u.email, u.role, u.avatar_url
		FROM task_comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.task_id = $1
		ORDER BY c.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to query comment thread",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var all []store.CommentWithAuthor
	for rows.Next() {
		entry, err := scanCommentWithAuthor(rows)
		if err != nil {
			log.Error("failed to scan comment row",
				slog.String("error", err.Error()))
			return nil, err
		}
		all = append(all, entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning comment rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	// Group replies (oldest-first, the scan order) under their parents,
	// then reverse the top level to newest-first.
	replies := make(map[uuid.UUID][]store.CommentWithAuthor)
	var topLevel []store.CommentWithAuthor
	for _, entry := range all {
		if entry.Comment.ParentID != nil {
			parent := *entry.Comment.ParentID
			replies[parent] = append(replies[parent], entry)
			continue
		}
		topLevel = append(topLevel, entry)
	}

	thread := make([]store.CommentWithAuthor, 0, len(topLevel))
	for i := len(topLevel) - 1; i >= 0; i-- {
		entry := topLevel[i]
		entry.Replies = replies[entry.Comment.ID]
		thread = append(thread, entry)
	}

	log.Debug("listed comment thread",
		slog.String("task_id", taskID.String()),
		slog.Int("top_level", len(thread)),
		slog.Int("total", len(all)))
	return thread, nil
}

// scanCommentWithAuthor reads a comment row joined with author columns.
func scanCommentWithAuthor(rows *sql.Rows) (store.CommentWithAuthor, error) {
	var (
		entry     store.CommentWithAuthor
		parentID  uuid.NullUUID
		avatarURL sql.NullString
	)

	err := rows.Scan(
		&entry.Comment.ID,
		&entry.Comment.TaskID,
		&entry.Comment.AuthorID,
		&parentID,
		&entry.Comment.Content,
		&entry.Comment.CreatedAt,
		&entry.Author.Name,
		&entry.Author.Email,
		&entry.Author.Role,
		&avatarURL,
	)
	if err != nil {
		return store.CommentWithAuthor{}, err
	}

	if parentID.Valid {
		pid := parentID.UUID
		entry.Comment.ParentID = &pid
	}
	entry.Author.ID = entry.Comment.AuthorID
	entry.Author.AvatarURL = avatarURL.String

	return entry, nil
}
