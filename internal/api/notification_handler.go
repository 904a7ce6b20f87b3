package api

import (
	"log/slog"
	"net/http"

	"github.com/editorialhq/editorial-api/internal/api/shared"
	"github.com/editorialhq/editorial-api/internal/service"
	"github.com/go-playground/validator/v10"
)

// NotificationHandler handles notification endpoints that are triggered by
// a caller rather than the background jobs.
type NotificationHandler struct {
	notificationService service.NotificationService
	activityService     service.ActivityService
	validator           *validator.Validate
	logger              *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(
	notificationService service.NotificationService,
	activityService service.ActivityService,
	logger *slog.Logger,
) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		notificationService: notificationService,
		activityService:     activityService,
		validator:           validator.New(),
		logger:              logger.With(slog.String("component", "notification_handler")),
	}
}

// ModerationResult handles POST /api/posts/{id}/moderation-result requests.
func (h *NotificationHandler) ModerationResult(w http.ResponseWriter, r *http.Request) {
	caller, postID, ok := handleCallerAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req ModerationResultRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.notificationService.SendModerationResult(
		r.Context(),
		caller,
		postID,
		service.ModerationStatus(req.Status),
		req.FeedbackURL,
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to send moderation result")
		return
	}

	h.activityService.Record(r.Context(), caller, activityEntryFromRequest(r, service.ActivityEntry{
		Action:      "moderate",
		Entity:      "post",
		EntityID:    &postID,
		Description: "sent moderation result: " + req.Status,
	}))

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
