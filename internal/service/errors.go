package service

import (
	"errors"
	"fmt"

	"github.com/editorialhq/editorial-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrTaskNotFound indicates that the requested task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrPostNotFound indicates that the requested post does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrPostNotFound = errors.New("post not found")

	// ErrCommentNotFound indicates that the referenced comment does not
	// exist or belongs to a different task.
	// API layer should map this to HTTP 404 Not Found.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrUserNotFound indicates that a referenced user (an assignee, a
	// post author) does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrUserNotFound = errors.New("user not found")

	// ErrPostAlreadyLinked indicates that the target post already carries
	// a scheduling link to a different task.
	// API layer should map this to HTTP 409 Conflict.
	ErrPostAlreadyLinked = errors.New("post is already linked to another task")
)

// ServiceError wraps unexpected errors from a service with context.
type ServiceError struct {
	// Service is the service the error originated in (e.g., "task_service").
	Service string
	// Operation is the operation that failed (e.g., "create_task").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// mapStoreError translates store-level sentinels to their service-level
// counterparts, and wraps anything unexpected in a ServiceError. Sentinel
// errors already at the service level pass through untouched.
func mapStoreError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrCommentNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrPostAlreadyLinked):
		return err
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrPostNotFound):
		return ErrPostNotFound
	case errors.Is(err, store.ErrCommentNotFound):
		return ErrCommentNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrPostAlreadyLinked):
		return ErrPostAlreadyLinked
	}

	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
