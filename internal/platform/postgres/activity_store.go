package postgres

import (
	"context"
	"log/slog"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
	"github.com/editorialhq/editorial-api/internal/store"
)

// PostgresActivityStore implements the store.ActivityStore interface
// using a PostgreSQL database as the storage backend. The audit table is
// append-only; this store exposes no update or delete.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of the
// ActivityStore interface.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

// Ensure PostgresActivityStore implements store.ActivityStore interface
var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// Append implements store.ActivityStore.Append
func (s *PostgresActivityStore) Append(ctx context.Context, entry *domain.ActivityLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO activity_logs (id, action, entity, entity_id, description, user_id,
			metadata, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		entry.Description,
		entry.UserID,
		entry.Metadata,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)

	if err != nil {
		log.Error("failed to append activity log entry",
			slog.String("error", err.Error()),
			slog.String("action", entry.Action),
			slog.String("entity", entry.Entity))
		return err
	}

	return nil
}
