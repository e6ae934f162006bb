package api

import (
	"net/http"

	"github.com/openkanban/board-api/internal/api/shared"
	"github.com/openkanban/board-api/internal/service"
)

// BoardHandler handles board-related API requests.
type BoardHandler struct {
	boardService    service.BoardService
	activityService service.ActivityService
}

// NewBoardHandler creates a new BoardHandler with the given dependencies.
func NewBoardHandler(boardService service.BoardService, activityService service.ActivityService) *BoardHandler {
	return &BoardHandler{boardService: boardService, activityService: activityService}
}

// List handles GET /api/boards.
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	boards, err := h.boardService.List(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, boards)
}

// Create handles POST /api/boards.
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	board, err := h.boardService.Create(r.Context(), userID, req.Title, req.IsPublic)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, board)
}

// Get handles GET /api/boards/{boardID}.
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	boardID, err := getPathUUID(r, "boardID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	detail, err := h.boardService.Get(r.Context(), userID, boardID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// Update handles PATCH /api/boards/{boardID}.
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	boardID, err := getPathUUID(r, "boardID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	var req UpdateBoardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	board, err := h.boardService.Update(r.Context(), userID, boardID, service.BoardUpdate{
		Title:    req.Title,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

// Activity handles GET /api/boards/{boardID}/activity.
func (h *BoardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	boardID, err := getPathUUID(r, "boardID")
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per", 0)

	records, err := h.activityService.ListByBoard(r.Context(), userID, boardID, page, perPage)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, records)
}
