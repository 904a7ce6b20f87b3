package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
)

// ActivityEntry describes one auditable mutation for recording.
type ActivityEntry struct {
	Action      string
	Entity      string
	EntityID    *uuid.UUID
	Description string
	Metadata    any
	IPAddress   string
	UserAgent   string
}

// ActivityService records the append-only audit trail. Recording is
// best-effort: a failed insert is logged and swallowed so audit problems
// never fail the mutation they describe.
type ActivityService interface {
	// Record appends an audit entry attributed to the caller. It never
	// returns an error.
	Record(ctx context.Context, caller domain.Caller, entry ActivityEntry)
}

// activityServiceImpl implements the ActivityService interface.
type activityServiceImpl struct {
	activityStore store.ActivityStore
	logger        *slog.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(activityStore store.ActivityStore, logger *slog.Logger) (ActivityService, error) {
	if activityStore == nil {
		return nil, &ServiceError{
			Service:   "activity_service",
			Operation: "create_service",
			Message:   "activityStore cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &activityServiceImpl{
		activityStore: activityStore,
		logger:        logger.With(slog.String("component", "activity_service")),
	}, nil
}

// Record appends an audit entry attributed to the caller.
func (s *activityServiceImpl) Record(ctx context.Context, caller domain.Caller, entry ActivityEntry) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	record, err := domain.NewActivityLog(entry.Action, entry.Entity, entry.Description, caller.ID)
	if err != nil {
		log.Warn("discarding invalid activity entry",
			slog.String("error", err.Error()),
			slog.String("action", entry.Action),
			slog.String("entity", entry.Entity))
		return
	}

	record.EntityID = entry.EntityID
	if entry.IPAddress != "" {
		record.IPAddress = entry.IPAddress
	}
	if entry.UserAgent != "" {
		record.UserAgent = entry.UserAgent
	}
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			log.Warn("failed to marshal activity metadata, recording without it",
				slog.String("error", err.Error()),
				slog.String("action", entry.Action))
		} else {
			record.Metadata = raw
		}
	}

	if err := s.activityStore.Append(ctx, record); err != nil {
		log.Error("failed to record activity entry",
			slog.String("error", err.Error()),
			slog.String("action", entry.Action),
			slog.String("entity", entry.Entity),
			slog.String("user_id", caller.ID.String()))
	}
}

// Compile-time interface check
var _ ActivityService = (*activityServiceImpl)(nil)
