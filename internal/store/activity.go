package store

import (
	"context"

	"github.com/editorialhq/editorial-api/internal/domain"
)

// ActivityStore defines the interface for the append-only audit trail.
// Entries are inserted and never mutated, so there is no transactional
// variant: audit writes must not participate in (or roll back with) the
// primary operation.
type ActivityStore interface {
	// Append persists an audit entry.
	Append(ctx context.Context, entry *domain.ActivityLog) error
}
