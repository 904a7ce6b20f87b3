// Package authz implements the authorization guard: a single table-driven
// policy mapping a caller's role (and resource ownership) to the
// capabilities the API exposes. Handlers never test roles ad hoc.
package authz

import (
	"errors"
	"fmt"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/google/uuid"
)

// Capability names an action a caller may attempt on a resource.
type Capability string

// Capabilities guarded by the policy table.
const (
	// TaskCreate allows creating a new task.
	TaskCreate Capability = "task:create"

	// TaskRead allows reading or listing tasks. Non-privileged callers
	// are additionally scoped to their own assignments by the store query.
	TaskRead Capability = "task:read"

	// TaskUpdate allows changing a task's status or progress.
	TaskUpdate Capability = "task:update"

	// TaskComment allows reading and writing the comment thread of a task.
	TaskComment Capability = "task:comment"

	// TaskLink allows binding a post to a task.
	TaskLink Capability = "task:link"

	// PostSchedule allows scheduling a post for publication.
	PostSchedule Capability = "post:schedule"

	// PostList allows listing scheduled posts. Non-admin callers are
	// additionally scoped to their own posts by the store query.
	PostList Capability = "post:list"

	// ReminderSend allows triggering a deadline reminder on demand.
	ReminderSend Capability = "reminder:send"

	// ModerationNotify allows sending a moderation-result notification.
	ModerationNotify Capability = "moderation:notify"
)

// ErrForbidden is returned when the policy denies a capability.
var ErrForbidden = errors.New("forbidden")

// rule describes who may exercise a capability: any of the listed roles,
// or the owner of the resource when ownerMay is set.
type rule struct {
	roles    []domain.Role
	ownerMay bool
}

// policy is the single source of truth for role checks. Ownership for
// task capabilities means the task's assignee; for post capabilities it
// means the post's author.
var policy = map[Capability]rule{
	TaskCreate:       {roles: []domain.Role{domain.RoleAdmin, domain.RoleEditor}},
	TaskRead:         {roles: []domain.Role{domain.RoleAdmin, domain.RoleEditor, domain.RoleAuthor, domain.RoleReader}},
	TaskUpdate:       {roles: []domain.Role{domain.RoleAdmin, domain.RoleEditor}, ownerMay: true},
	TaskComment:      {roles: []domain.Role{domain.RoleAdmin, domain.RoleEditor}, ownerMay: true},
	TaskLink:         {roles: []domain.Role{domain.RoleAdmin, domain.RoleEditor}, ownerMay: true},
	PostSchedule:     {roles: []domain.Role{domain.RoleAdmin}, ownerMay: true},
	PostList:         {roles: []domain.Role{domain.RoleAdmin, domain.RoleEditor, domain.RoleAuthor}},
	ReminderSend:     {roles: []domain.Role{domain.RoleAdmin, domain.RoleEditor}},
	ModerationNotify: {roles: []domain.Role{domain.RoleAdmin, domain.RoleEditor}},
}

// Allows reports whether the caller may exercise the capability on a
// resource owned by ownerID. Pass uuid.Nil when the capability has no
// ownership dimension. The check is a pure predicate with no side effects.
func Allows(caller domain.Caller, capability Capability, ownerID uuid.UUID) bool {
	r, ok := policy[capability]
	if !ok {
		return false
	}

	for _, role := range r.roles {
		if caller.Role == role {
			return true
		}
	}

	return r.ownerMay && caller.Owns(ownerID)
}

// Require returns nil when Allows would report true, and an error wrapping
// ErrForbidden otherwise. The error names the capability but never the
// resource, so it is safe to surface.
func Require(caller domain.Caller, capability Capability, ownerID uuid.UUID) error {
	if !Allows(caller, capability, ownerID) {
		return fmt.Errorf("%w: %s", ErrForbidden, capability)
	}
	return nil
}
