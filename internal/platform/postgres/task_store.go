package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
)

// recentCommentLimit is how many of the newest comments a task listing
// carries per task.
const recentCommentLimit = 3

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task, handling domain validation.
// Returns store.ErrInvalidEntity if the assignee does not exist
// (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, topic, deadline, status, priority,
			progress, recurring, recurrence, assigned_to, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Topic,
		task.Deadline,
		task.Status,
		task.Priority,
		task.Progress,
		task.Recurring,
		task.Recurrence,
		task.AssignedTo,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()),
				slog.String("assigned_to", task.AssignedTo.String()))
			return fmt.Errorf("%w: assignee with ID %s not found",
				store.ErrInvalidEntity, task.AssignedTo)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("assigned_to", task.AssignedTo.String()),
		slog.Time("deadline", task.Deadline))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, description, topic, deadline, status, priority, progress,
			recurring, recurrence, assigned_to, created_by, post_id, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, topic = $3, deadline = $4, status = $5,
			priority = $6, progress = $7, recurring = $8, recurrence = $9,
			assigned_to = $10, updated_at = $11
		WHERE id = $12
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Topic,
		task.Deadline,
		task.Status,
		task.Priority,
		task.Progress,
		task.Recurring,
		task.Recurrence,
		task.AssignedTo,
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// List implements store.TaskStore.List
// Tasks come back ordered by deadline ascending, each enriched with the
// assignee summary, the linked post summary and the newest comments.
func (s *PostgresTaskStore) List(ctx context.Context, filters store.TaskFilters) ([]*store.TaskWithDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT t.id, t.title, t.description, t.topic, t.deadline, t.status, t.priority,
			t.progress, t.recurring, t.recurrence, t.assigned_to, t.created_by, t.post_id,
			t.created_at, t.updated_at,
			u.name, u.email, u.role, u.avatar_url,
			p.id, p.title, p.status, p.published_at
		FROM tasks t
		JOIN users u ON u.id = t.assigned_to
		LEFT JOIN posts p ON p.id = t.post_id
		WHERE ($1::text IS NULL OR t.status = $1)
		  AND ($2::text IS NULL OR t.priority = $2)
		  AND ($3::uuid IS NULL OR t.assigned_to = $3)
		ORDER BY t.deadline ASC
	`

	var status, priority *string
	if filters.Status != nil {
		v := string(*filters.Status)
		status = &v
	}
	if filters.Priority != nil {
		v := string(*filters.Priority)
		priority = &v
	}

	rows, err := s.db.QueryContext(ctx, query, status, priority, filters.AssignedTo)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var results []*store.TaskWithDetails
	for rows.Next() {
		detail, err := scanTaskWithDetails(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		results = append(results, detail)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning task rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	// Attach the newest comments and total count per task.
	for _, detail := range results {
		comments, count, err := s.recentComments(ctx, detail.Task.ID)
		if err != nil {
			return nil, err
		}
		detail.RecentComments = comments
		detail.CommentCount = count
	}

	if results == nil {
		results = []*store.TaskWithDetails{}
	}

	log.Debug("listed tasks", slog.Int("count", len(results)))
	return results, nil
}

// ListDueBetween implements store.TaskStore.ListDueBetween
func (s *PostgresTaskStore) ListDueBetween(
	ctx context.Context,
	from, to time.Time,
	status domain.TaskStatus,
) ([]*store.TaskWithAssignee, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT t.id, t.title, t.description, t.topic, t.deadline, t.status, t.priority,
			t.progress, t.recurring, t.recurrence, t.assigned_to, t.created_by, t.post_id,
			t.created_at, t.updated_at,
			u.name, u.email, u.role, u.avatar_url
		FROM tasks t
		JOIN users u ON u.id = t.assigned_to
		WHERE t.status = $1 AND t.deadline >= $2 AND t.deadline <= $3
		ORDER BY t.deadline ASC
	`

	rows, err := s.db.QueryContext(ctx, query, status, from, to)
	if err != nil {
		log.Error("failed to query due tasks",
			slog.String("error", err.Error()),
			slog.Time("from", from),
			slog.Time("to", to))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var results []*store.TaskWithAssignee
	for rows.Next() {
		var (
			task      domain.Task
			topic     sql.NullString
			recur     sql.NullString
			postID    uuid.NullUUID
			assignee  domain.UserSummary
			avatarURL sql.NullString
		)

		err := rows.Scan(
			&task.ID, &task.Title, &task.Description, &topic, &task.Deadline,
			&task.Status, &task.Priority, &task.Progress, &task.Recurring, &recur,
			&task.AssignedTo, &task.CreatedBy, &postID, &task.CreatedAt, &task.UpdatedAt,
			&assignee.Name, &assignee.Email, &assignee.Role, &avatarURL,
		)
		if err != nil {
			log.Error("failed to scan due task row",
				slog.String("error", err.Error()))
			return nil, err
		}

		applyNullables(&task, topic, recur, postID)
		assignee.ID = task.AssignedTo
		assignee.AvatarURL = avatarURL.String

		results = append(results, &store.TaskWithAssignee{Task: task, Assignee: assignee})
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning due task rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if results == nil {
		results = []*store.TaskWithAssignee{}
	}

	return results, nil
}

// SetPostLink implements store.TaskStore.SetPostLink
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) SetPostLink(ctx context.Context, taskID, postID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET post_id = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, postID, time.Now().UTC(), taskID)
	if err != nil {
		log.Error("failed to set task post link",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("post_id", postID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// recentComments loads the newest comments on a task and the total
// comment count for the listing enrichment.
func (s *PostgresTaskStore) recentComments(
	ctx context.Context,
	taskID uuid.UUID,
) ([]store.CommentWithAuthor, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT c.id, c.task_id, c.author_id, c.parent_id, c.content, c.created_at,
			u.name, u.email, u.role, u.avatar_url
		FROM task_comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.task_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, taskID, recentCommentLimit)
	if err != nil {
		log.Error("failed to query recent comments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, 0, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	comments := []store.CommentWithAuthor{}
	for rows.Next() {
		entry, err := scanCommentWithAuthor(rows)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int
	countQuery := `SELECT COUNT(*) FROM task_comments WHERE task_id = $1`
	if err := s.db.QueryRowContext(ctx, countQuery, taskID).Scan(&count); err != nil {
		log.Error("failed to count comments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, 0, err
	}

	return comments, count, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads a bare task row.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task   domain.Task
		topic  sql.NullString
		recur  sql.NullString
		postID uuid.NullUUID
	)

	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &topic, &task.Deadline,
		&task.Status, &task.Priority, &task.Progress, &task.Recurring, &recur,
		&task.AssignedTo, &task.CreatedBy, &postID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyNullables(&task, topic, recur, postID)
	return &task, nil
}

// scanTaskWithDetails reads a task row joined with assignee and linked
// post columns.
func scanTaskWithDetails(rows *sql.Rows) (*store.TaskWithDetails, error) {
	var (
		task        domain.Task
		topic       sql.NullString
		recur       sql.NullString
		postID      uuid.NullUUID
		assignee    domain.UserSummary
		avatarURL   sql.NullString
		linkedID    uuid.NullUUID
		linkedTitle sql.NullString
		linkedState sql.NullString
		publishedAt sql.NullTime
	)

	err := rows.Scan(
		&task.ID, &task.Title, &task.Description, &topic, &task.Deadline,
		&task.Status, &task.Priority, &task.Progress, &task.Recurring, &recur,
		&task.AssignedTo, &task.CreatedBy, &postID, &task.CreatedAt, &task.UpdatedAt,
		&assignee.Name, &assignee.Email, &assignee.Role, &avatarURL,
		&linkedID, &linkedTitle, &linkedState, &publishedAt,
	)
	if err != nil {
		return nil, err
	}

	applyNullables(&task, topic, recur, postID)
	assignee.ID = task.AssignedTo
	assignee.AvatarURL = avatarURL.String

	detail := &store.TaskWithDetails{
		Task:     task,
		Assignee: assignee,
	}

	if linkedID.Valid {
		summary := domain.PostSummary{
			ID:     linkedID.UUID,
			Title:  linkedTitle.String,
			Status: domain.PostStatus(linkedState.String),
		}
		if publishedAt.Valid {
			t := publishedAt.Time
			summary.PublishedAt = &t
		}
		detail.LinkedPost = &summary
	}

	return detail, nil
}

// applyNullables copies nullable columns onto the task.
func applyNullables(task *domain.Task, topic, recur sql.NullString, postID uuid.NullUUID) {
	if topic.Valid {
		task.Topic = &topic.String
	}
	if recur.Valid {
		task.Recurrence = &recur.String
	}
	if postID.Valid {
		id := postID.UUID
		task.PostID = &id
	}
}
