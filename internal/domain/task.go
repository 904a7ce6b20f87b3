package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of an editorial task.
type TaskStatus string

// Possible task status values. Completed and cancelled are terminal.
const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityNormal TaskPriority = "normal"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrEmptyTaskDeadline = errors.New("task deadline cannot be empty")
	ErrEmptyAssignee     = errors.New("task assignee cannot be empty")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrInvalidPriority   = errors.New("invalid task priority")
	ErrInvalidProgress   = errors.New("task progress must be between 0 and 100")
)

// Task represents an assignable work item on the editorial calendar.
// A task may be linked to at most one post via the scheduling link;
// the linked post carries the matching back-reference.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Topic       *string      `json:"topic,omitempty"`
	Deadline    time.Time    `json:"deadline"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Progress    int          `json:"progress"`
	Recurring   bool         `json:"recurring"`
	Recurrence  *string      `json:"recurrence,omitempty"`
	AssignedTo  uuid.UUID    `json:"assigned_to"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	PostID      *uuid.UUID   `json:"post_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task assigned to the given user, with status open,
// normal priority and zero progress unless the input says otherwise.
// Returns an error if validation fails.
func NewTask(title, description string, deadline time.Time, assignedTo, createdBy uuid.UUID) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Deadline:    deadline,
		Status:      TaskStatusOpen,
		Priority:    TaskPriorityNormal,
		Progress:    0,
		AssignedTo:  assignedTo,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}

	if t.Deadline.IsZero() {
		return ErrEmptyTaskDeadline
	}

	if t.AssignedTo == uuid.Nil {
		return ErrEmptyAssignee
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if !isValidTaskPriority(t.Priority) {
		return ErrInvalidPriority
	}

	if t.Progress < 0 || t.Progress > 100 {
		return ErrInvalidProgress
	}

	return nil
}

// UpdateStatus updates the task's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (t *Task) UpdateStatus(status TaskStatus) error {
	if !isValidTaskStatus(status) {
		return ErrInvalidTaskStatus
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateProgress updates the task's progress percentage and the UpdatedAt
// timestamp. Returns an error if progress is outside 0-100.
func (t *Task) UpdateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return ErrInvalidProgress
	}

	t.Progress = progress
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Terminal reports whether the task has reached a terminal state.
func (t *Task) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// isValidTaskPriority checks if the given priority is a valid TaskPriority.
func isValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityNormal, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}
