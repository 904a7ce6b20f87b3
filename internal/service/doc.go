// Package service implements the application-level operations of the
// editorial scheduling core: task management, comment threads, the
// post-link/scheduler, notification dispatch and the activity trail.
//
// Services take an explicit domain.Caller on every operation that acts
// on behalf of a user; nothing in this package reads ambient request
// state. Authorization goes through the internal/authz policy table,
// and resources are resolved before they are authorized, so a missing
// resource surfaces as not-found rather than forbidden.
//
// Error handling follows a sentinel pattern: expected conditions map to
// the sentinel errors in errors.go, which the API layer translates to
// HTTP status codes; unexpected failures are wrapped in a ServiceError
// carrying the operation that failed.
package service
