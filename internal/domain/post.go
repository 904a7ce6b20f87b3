package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publication state of a post.
type PostStatus string

// Possible post status values. The scheduling core moves posts from
// draft/pending to scheduled; the publisher flips scheduled posts to
// published once their publish instant passes. Archived is a side
// terminal state not reached from this flow.
const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPending   PostStatus = "pending"
	PostStatusPublished PostStatus = "published"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusArchived  PostStatus = "archived"
)

// Common validation errors for Post
var (
	ErrEmptyPostID       = errors.New("post ID cannot be empty")
	ErrEmptyPostAuthor   = errors.New("post author cannot be empty")
	ErrEmptyPostTitle    = errors.New("post title cannot be empty")
	ErrInvalidPostStatus = errors.New("invalid post status")
)

// Post is the collaborator entity the scheduling core touches. Only the
// fields the core reads or writes are modeled; body, categories and tags
// belong to the wider CMS.
//
// ScheduledTaskID is unique across posts, which makes the task↔post
// scheduling link at most one-to-one.
type Post struct {
	ID              uuid.UUID  `json:"id"`
	AuthorID        uuid.UUID  `json:"author_id"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary,omitempty"`
	Status          PostStatus `json:"status"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	ScheduledTaskID *uuid.UUID `json:"scheduled_task_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewPost creates a new draft Post for the given author.
// Returns an error if validation fails.
func NewPost(authorID uuid.UUID, title, summary string) (*Post, error) {
	post := &Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     title,
		Summary:   summary,
		Status:    PostStatusDraft,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := post.Validate(); err != nil {
		return nil, err
	}

	return post, nil
}

// Validate checks if the Post has valid data.
// Returns an error if any field fails validation.
func (p *Post) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPostID
	}

	if p.AuthorID == uuid.Nil {
		return ErrEmptyPostAuthor
	}

	if p.Title == "" {
		return ErrEmptyPostTitle
	}

	if !isValidPostStatus(p.Status) {
		return ErrInvalidPostStatus
	}

	return nil
}

// Schedule marks the post as scheduled for the given instant.
// Past instants are accepted: scheduling doubles as backdating.
func (p *Post) Schedule(at time.Time) {
	p.Status = PostStatusScheduled
	p.PublishedAt = &at
	p.UpdatedAt = time.Now().UTC()
}

// SummaryView returns the compact post representation embedded in task
// responses.
func (p *Post) SummaryView() PostSummary {
	return PostSummary{
		ID:          p.ID,
		Title:       p.Title,
		Status:      p.Status,
		PublishedAt: p.PublishedAt,
	}
}

// PostSummary is the compact post representation embedded in task
// responses.
type PostSummary struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Status      PostStatus `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// isValidPostStatus checks if the given status is a valid PostStatus.
func isValidPostStatus(status PostStatus) bool {
	switch status {
	case PostStatusDraft, PostStatusPending, PostStatusPublished,
		PostStatusScheduled, PostStatusArchived:
		return true
	default:
		return false
	}
}
