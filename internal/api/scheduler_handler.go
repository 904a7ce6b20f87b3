package api

import (
	"log/slog"
	"net/http"

	"github.com/editorialhq/editorial-api/internal/api/shared"
	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/service"
	"github.com/go-playground/validator/v10"
)

// SchedulerHandler handles the publication calendar: listing scheduled
// posts and scheduling new ones.
type SchedulerHandler struct {
	schedulerService service.SchedulerService
	activityService  service.ActivityService
	validator        *validator.Validate
	logger           *slog.Logger
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(
	schedulerService service.SchedulerService,
	activityService service.ActivityService,
	logger *slog.Logger,
) *SchedulerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerHandler{
		schedulerService: schedulerService,
		activityService:  activityService,
		validator:        validator.New(),
		logger:           logger.With(slog.String("component", "scheduler_handler")),
	}
}

// ListScheduled handles GET /api/scheduler requests.
func (h *SchedulerHandler) ListScheduled(w http.ResponseWriter, r *http.Request) {
	caller, ok := getCallerFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return
	}

	posts, err := h.schedulerService.ListScheduled(r.Context(), caller)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list scheduled posts")
		return
	}

	response := make([]ScheduledPostResponse, 0, len(posts))
	for _, p := range posts {
		response = append(response, postToScheduledResponse(p))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// SchedulePost handles POST /api/scheduler requests.
func (h *SchedulerHandler) SchedulePost(w http.ResponseWriter, r *http.Request) {
	caller, ok := getCallerFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return
	}

	var req SchedulePostRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	post, err := h.schedulerService.SchedulePost(r.Context(), caller, req.PostID, req.ScheduledFor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to schedule post")
		return
	}

	postID := post.ID
	h.activityService.Record(r.Context(), caller, activityEntryFromRequest(r, service.ActivityEntry{
		Action:      "schedule",
		Entity:      "post",
		EntityID:    &postID,
		Description: "scheduled post " + post.Title,
		Metadata:    map[string]string{"scheduled_for": req.ScheduledFor.String()},
	}))

	shared.RespondWithJSON(w, r, http.StatusOK, postToScheduledResponse(post))
}
