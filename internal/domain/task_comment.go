package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxCommentLength is the maximum number of characters a task comment
// may contain after trimming.
const MaxCommentLength = 2000

// Common validation errors for TaskComment
var (
	ErrEmptyCommentID     = errors.New("comment ID cannot be empty")
	ErrEmptyCommentTaskID = errors.New("comment task ID cannot be empty")
	ErrEmptyCommentAuthor = errors.New("comment author cannot be empty")
	ErrEmptyComment       = errors.New("comment content cannot be empty")
	ErrCommentTooLong     = errors.New("comment content exceeds maximum length")
)

// TaskComment is a discussion entry on a task. Threading is a single level
// deep: a comment may reply to a top-level comment, and replies cannot
// themselves have replies.
type TaskComment struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"task_id"`
	AuthorID  uuid.UUID  `json:"author_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewTaskComment creates a new TaskComment on the given task.
// Content is trimmed before validation; parentID may be nil for a
// top-level comment. Returns an error if validation fails.
func NewTaskComment(taskID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*TaskComment, error) {
	comment := &TaskComment{
		ID:        uuid.New(),
		TaskID:    taskID,
		AuthorID:  authorID,
		ParentID:  parentID,
		Content:   strings.TrimSpace(content),
		CreatedAt: time.Now().UTC(),
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the TaskComment has valid data.
// Returns an error if any field fails validation.
func (c *TaskComment) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCommentID
	}

	if c.TaskID == uuid.Nil {
		return ErrEmptyCommentTaskID
	}

	if c.AuthorID == uuid.Nil {
		return ErrEmptyCommentAuthor
	}

	if c.Content == "" {
		return ErrEmptyComment
	}

	if utf8.RuneCountInString(c.Content) > MaxCommentLength {
		return ErrCommentTooLong
	}

	return nil
}
