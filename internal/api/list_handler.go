package api

import (
	"net/http"

	"github.com/openkanban/board-api/internal/api/shared"
	"github.com/openkanban/board-api/internal/service"
)

// ListHandler handles list-related API requests.
type ListHandler struct {
	listService service.ListService
}

// NewListHandler creates a new ListHandler with the given dependencies.
func NewListHandler(listService service.ListService) *ListHandler {
	return &ListHandler{listService: listService}
}

// ListByBoard handles GET /api/boards/{boardID}/lists.
func (h *ListHandler) ListByBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	boardID, err := getPathUUID(r, "boardID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	lists, err := h.listService.ListByBoard(r.Context(), userID, boardID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, lists)
}

// Create handles POST /api/boards/{boardID}/lists.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	boardID, err := getPathUUID(r, "boardID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	var req CreateListRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	list, err := h.listService.Create(r.Context(), userID, boardID, req.Title)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, list)
}

// Rename handles PATCH /api/lists/{listID}.
func (h *ListHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	listID, err := getPathUUID(r, "listID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	var req RenameListRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	list, err := h.listService.Rename(r.Context(), userID, listID, req.Title)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// Delete handles DELETE /api/lists/{listID}.
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	listID, err := getPathUUID(r, "listID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	if err := h.listService.Delete(r.Context(), userID, listID); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reorder handles PATCH /api/lists/{listID}/reorder.
func (h *ListHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	listID, err := getPathUUID(r, "listID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	var req ReorderListRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	list, err := h.listService.Reorder(r.Context(), userID, listID, *req.Position)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, list)
}
