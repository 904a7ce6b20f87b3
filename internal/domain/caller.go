package domain

import "github.com/google/uuid"

// Caller identifies the authenticated user performing an operation.
// It is established once by the session middleware and passed explicitly
// into every core operation; nothing below the HTTP layer reads ambient
// request state.
type Caller struct {
	ID    uuid.UUID
	Role  Role
	Email string
}

// Valid reports whether the caller carries a usable identity.
func (c Caller) Valid() bool {
	return c.ID != uuid.Nil && c.Role.Valid()
}

// Owns reports whether the caller is the owner of a resource.
func (c Caller) Owns(ownerID uuid.UUID) bool {
	return ownerID != uuid.Nil && c.ID == ownerID
}
