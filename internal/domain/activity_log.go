package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ActivityLog
var (
	ErrEmptyActivityAction = errors.New("activity action cannot be empty")
	ErrEmptyActivityEntity = errors.New("activity entity cannot be empty")
	ErrEmptyActivityUser   = errors.New("activity user ID cannot be empty")
)

// ActivityLog is an append-only audit record of an administrative
// mutation. Entries are never updated or deleted by the application.
type ActivityLog struct {
	ID          uuid.UUID       `json:"id"`
	Action      string          `json:"action"`
	Entity      string          `json:"entity"`
	EntityID    *uuid.UUID      `json:"entity_id,omitempty"`
	Description string          `json:"description"`
	UserID      uuid.UUID       `json:"user_id"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	IPAddress   string          `json:"ip_address"`
	UserAgent   string          `json:"user_agent"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewActivityLog creates a new ActivityLog entry. IPAddress and UserAgent
// default to "unknown" when the request context carries neither.
func NewActivityLog(action, entity, description string, userID uuid.UUID) (*ActivityLog, error) {
	entry := &ActivityLog{
		ID:          uuid.New(),
		Action:      action,
		Entity:      entity,
		Description: description,
		UserID:      userID,
		IPAddress:   "unknown",
		UserAgent:   "unknown",
		CreatedAt:   time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the ActivityLog has valid data.
func (a *ActivityLog) Validate() error {
	if a.Action == "" {
		return ErrEmptyActivityAction
	}

	if a.Entity == "" {
		return ErrEmptyActivityEntity
	}

	if a.UserID == uuid.Nil {
		return ErrEmptyActivityUser
	}

	return nil
}
