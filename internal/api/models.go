package api

import (
	"time"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
)

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the request body for token refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse represents the response for successful authentication
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string    `json:"title"                 validate:"required,min=1,max=200"`
	Description string    `json:"description,omitempty"`
	Topic       *string   `json:"topic,omitempty"`
	Deadline    time.Time `json:"deadline"              validate:"required"`
	Priority    *string   `json:"priority,omitempty"    validate:"omitempty,oneof=low normal high urgent"`
	Recurring   bool      `json:"recurring,omitempty"`
	Recurrence  *string   `json:"recurrence,omitempty"`
	AssignedTo  uuid.UUID `json:"assigned_to"           validate:"required"`
}

// UpdateTaskRequest represents the request body for a task patch
type UpdateTaskRequest struct {
	Status   *string `json:"status,omitempty"   validate:"omitempty,oneof=open in_progress completed cancelled"`
	Progress *int    `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
}

// AddCommentRequest represents the request body for adding a comment
type AddCommentRequest struct {
	Content  string     `json:"content"             validate:"required"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// LinkPostRequest represents the request body for linking a post to a task
type LinkPostRequest struct {
	PostID uuid.UUID `json:"post_id" validate:"required"`
}

// SchedulePostRequest represents the request body for scheduling a post
type SchedulePostRequest struct {
	PostID       uuid.UUID `json:"post_id"       validate:"required"`
	ScheduledFor time.Time `json:"scheduled_for" validate:"required"`
}

// ModerationResultRequest represents the request body for a moderation
// notification
type ModerationResultRequest struct {
	Status      string `json:"status"                 validate:"required,oneof=approved rejected"`
	FeedbackURL string `json:"feedback_url,omitempty" validate:"omitempty,url"`
}

// CommentResponse represents one comment with its author and replies
type CommentResponse struct {
	ID        uuid.UUID          `json:"id"`
	TaskID    uuid.UUID          `json:"task_id"`
	ParentID  *uuid.UUID         `json:"parent_id,omitempty"`
	Content   string             `json:"content"`
	Author    domain.UserSummary `json:"author"`
	CreatedAt time.Time          `json:"created_at"`
	Replies   []CommentResponse  `json:"replies,omitempty"`
}

// TaskResponse represents a task enriched with its listing context
type TaskResponse struct {
	domain.Task
	Assignee       domain.UserSummary  `json:"assignee"`
	LinkedPost     *domain.PostSummary `json:"linked_post,omitempty"`
	RecentComments []CommentResponse   `json:"recent_comments"`
	CommentCount   int                 `json:"comment_count"`
}

// ScheduledPostResponse represents one scheduled post in the calendar
type ScheduledPostResponse struct {
	domain.Post
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

// LinkPostResponse represents the result of a task-post link
type LinkPostResponse struct {
	Task domain.Task `json:"task"`
	Post domain.Post `json:"post"`
}

// commentToResponse converts a store comment tree node to its response form
func commentToResponse(c store.CommentWithAuthor) CommentResponse {
	resp := CommentResponse{
		ID:        c.Comment.ID,
		TaskID:    c.Comment.TaskID,
		ParentID:  c.Comment.ParentID,
		Content:   c.Comment.Content,
		Author:    c.Author,
		CreatedAt: c.Comment.CreatedAt,
	}
	for _, reply := range c.Replies {
		resp.Replies = append(resp.Replies, commentToResponse(reply))
	}
	return resp
}

// commentsToResponse converts a comment thread to its response form
func commentsToResponse(thread []store.CommentWithAuthor) []CommentResponse {
	out := make([]CommentResponse, 0, len(thread))
	for _, c := range thread {
		out = append(out, commentToResponse(c))
	}
	return out
}

// taskToResponse converts an enriched task to its response form
func taskToResponse(t *store.TaskWithDetails) TaskResponse {
	return TaskResponse{
		Task:           t.Task,
		Assignee:       t.Assignee,
		LinkedPost:     t.LinkedPost,
		RecentComments: commentsToResponse(t.RecentComments),
		CommentCount:   t.CommentCount,
	}
}

// postToScheduledResponse annotates a post with its scheduled_for instant
func postToScheduledResponse(p *domain.Post) ScheduledPostResponse {
	return ScheduledPostResponse{
		Post:         *p,
		ScheduledFor: p.PublishedAt,
	}
}
