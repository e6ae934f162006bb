package api

import (
	"net/http"

	"github.com/openkanban/board-api/internal/api/shared"
	"github.com/openkanban/board-api/internal/service"
)

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListByList handles GET /api/lists/{listID}/tasks.
func (h *TaskHandler) ListByList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	listID, err := getPathUUID(r, "listID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	tasks, err := h.taskService.ListByList(r.Context(), userID, listID, r.URL.Query().Get("q"))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// ListByBoard handles GET /api/boards/{boardID}/tasks.
func (h *TaskHandler) ListByBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	boardID, err := getPathUUID(r, "boardID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	tasks, err := h.taskService.ListByBoard(r.Context(), userID, boardID, r.URL.Query().Get("q"))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Create handles POST /api/lists/{listID}/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	listID, err := getPathUUID(r, "listID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, listID, req.Title, req.Description)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Get handles GET /api/tasks/{taskID}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "taskID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	detail, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// Update handles PATCH /api/tasks/{taskID}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "taskID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{taskID}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "taskID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Move handles POST /api/tasks/{taskID}/move.
func (h *TaskHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "taskID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	var req MoveTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.Move(r.Context(), userID, taskID, req.ToListID, *req.Position)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Assign handles POST /api/tasks/{taskID}/assign.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "taskID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	var req AssignTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	assignment, err := h.taskService.Assign(r.Context(), userID, taskID, req.UserID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, assignment)
}

// Unassign handles DELETE /api/tasks/{taskID}/assign/{userID}.
func (h *TaskHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "taskID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	assigneeID, err := getPathUUID(r, "userID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	if err := h.taskService.Unassign(r.Context(), userID, taskID, assigneeID); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
