package api

import (
	"log/slog"
	"net/http"

	"github.com/editorialhq/editorial-api/internal/api/shared"
	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TaskHandler handles task-related HTTP requests: the task surface itself,
// its comment thread, the post link and the on-demand reminder.
type TaskHandler struct {
	taskService         service.TaskService
	commentService      service.CommentService
	schedulerService    service.SchedulerService
	notificationService service.NotificationService
	activityService     service.ActivityService
	validator           *validator.Validate
	logger              *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(
	taskService service.TaskService,
	commentService service.CommentService,
	schedulerService service.SchedulerService,
	notificationService service.NotificationService,
	activityService service.ActivityService,
	logger *slog.Logger,
) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService:         taskService,
		commentService:      commentService,
		schedulerService:    schedulerService,
		notificationService: notificationService,
		activityService:     activityService,
		validator:           validator.New(),
		logger:              logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks requests.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	caller, ok := getCallerFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return
	}

	filters := service.TaskListFilters{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.TaskStatus(s)
		filters.Status = &status
	}
	if p := r.URL.Query().Get("priority"); p != "" {
		priority := domain.TaskPriority(p)
		filters.Priority = &priority
	}

	tasks, err := h.taskService.ListTasks(r.Context(), caller, filters)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	response := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		response = append(response, taskToResponse(t))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := getCallerFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Topic:       req.Topic,
		Deadline:    req.Deadline,
		Recurring:   req.Recurring,
		Recurrence:  req.Recurrence,
		AssignedTo:  req.AssignedTo,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.taskService.CreateTask(r.Context(), caller, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	taskID := task.ID
	h.activityService.Record(r.Context(), caller, activityEntryFromRequest(r, service.ActivityEntry{
		Action:      "create",
		Entity:      "task",
		EntityID:    &taskID,
		Description: "created task " + task.Title,
	}))

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// UpdateTask handles PATCH /api/tasks/{id} requests.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	caller, taskID, ok := handleCallerAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}
	if req.Status == nil && req.Progress == nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Nothing to update")
		return
	}

	patch := service.UpdateTaskPatch{Progress: req.Progress}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}

	task, err := h.taskService.UpdateTask(r.Context(), caller, taskID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	h.activityService.Record(r.Context(), caller, activityEntryFromRequest(r, service.ActivityEntry{
		Action:      "update",
		Entity:      "task",
		EntityID:    &taskID,
		Description: "updated task status/progress",
		Metadata:    req,
	}))

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ListComments handles GET /api/tasks/{id}/comments requests.
func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	caller, taskID, ok := handleCallerAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	thread, err := h.commentService.ListComments(r.Context(), caller, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list comments")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, commentsToResponse(thread))
}

// AddComment handles POST /api/tasks/{id}/comments requests.
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	caller, taskID, ok := handleCallerAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	comment, err := h.commentService.AddComment(r.Context(), caller, taskID, req.Content, req.ParentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add comment")
		return
	}

	h.activityService.Record(r.Context(), caller, activityEntryFromRequest(r, service.ActivityEntry{
		Action:      "comment",
		Entity:      "task",
		EntityID:    &taskID,
		Description: "commented on task",
		Metadata:    map[string]string{"comment_id": comment.ID.String()},
	}))

	shared.RespondWithJSON(w, r, http.StatusCreated, comment)
}

// LinkPost handles PATCH /api/tasks/{id}/link-post requests.
func (h *TaskHandler) LinkPost(w http.ResponseWriter, r *http.Request) {
	caller, taskID, ok := handleCallerAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req LinkPostRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}
	if req.PostID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid post_id")
		return
	}

	task, post, err := h.schedulerService.LinkTaskToPost(r.Context(), caller, taskID, req.PostID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to link post to task")
		return
	}

	postID := post.ID
	h.activityService.Record(r.Context(), caller, activityEntryFromRequest(r, service.ActivityEntry{
		Action:      "link",
		Entity:      "task",
		EntityID:    &taskID,
		Description: "linked task to post",
		Metadata:    map[string]string{"post_id": postID.String()},
	}))

	shared.RespondWithJSON(w, r, http.StatusOK, LinkPostResponse{
		Task: *task,
		Post: *post,
	})
}

// Remind handles POST /api/tasks/{id}/remind requests.
func (h *TaskHandler) Remind(w http.ResponseWriter, r *http.Request) {
	caller, taskID, ok := handleCallerAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	result, err := h.notificationService.RemindTaskAssignee(r.Context(), caller, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to send reminder")
		return
	}

	// The delivery outcome is part of the response either way; a failed
	// send is reported, not converted into an API error.
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
