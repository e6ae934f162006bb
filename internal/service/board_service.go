package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/platform/logger"
	"github.com/openkanban/board-api/internal/store"
)

// BoardDetail is a board together with its ordered lists.
type BoardDetail struct {
	Board domain.Board  `json:"board"`
	Lists []domain.List `json:"lists"`
}

// BoardUpdate carries the optional fields of a board update. Nil fields
// are left unchanged.
type BoardUpdate struct {
	Title    *string
	IsPublic *bool
}

// BoardService provides board-level operations.
type BoardService interface {
	// List returns the boards visible to the viewer: public boards plus
	// the viewer's own.
	List(ctx context.Context, viewerID uuid.UUID) ([]domain.Board, error)

	// Create creates a board owned by the actor. Returns
	// store.ErrBoardTitleExists when the actor already owns a board with
	// that title.
	Create(ctx context.Context, actorID uuid.UUID, title string, isPublic bool) (*domain.Board, error)

	// Get returns the board and its lists in position order. Returns
	// domain.ErrForbidden when the board is private and not the viewer's.
	Get(ctx context.Context, viewerID, boardID uuid.UUID) (*BoardDetail, error)

	// Update applies the non-nil fields and broadcasts BOARD_UPDATED.
	// Only the owner may update.
	Update(ctx context.Context, actorID, boardID uuid.UUID, update BoardUpdate) (*domain.Board, error)
}

// boardServiceImpl implements BoardService.
type boardServiceImpl struct {
	boardStore  store.BoardStore
	listStore   store.ListStore
	broadcaster Broadcaster
	activity    ActivityService
	logger      *slog.Logger
}

// NewBoardService creates a new BoardService.
// It returns an error if any of the required dependencies are nil.
func NewBoardService(
	boardStore store.BoardStore,
	listStore store.ListStore,
	broadcaster Broadcaster,
	activity ActivityService,
	log *slog.Logger,
) (BoardService, error) {
	if boardStore == nil {
		return nil, domain.NewValidationError("boardStore", "cannot be nil", domain.ErrValidation)
	}
	if listStore == nil {
		return nil, domain.NewValidationError("listStore", "cannot be nil", domain.ErrValidation)
	}
	if broadcaster == nil {
		return nil, domain.NewValidationError("broadcaster", "cannot be nil", domain.ErrValidation)
	}
	if activity == nil {
		return nil, domain.NewValidationError("activity", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}
	return &boardServiceImpl{
		boardStore:  boardStore,
		listStore:   listStore,
		broadcaster: broadcaster,
		activity:    activity,
		logger:      log.With(slog.String("component", "board_service")),
	}, nil
}

// List implements BoardService.List.
func (s *boardServiceImpl) List(ctx context.Context, viewerID uuid.UUID) ([]domain.Board, error) {
	boards, err := s.boardStore.ListVisible(ctx, viewerID)
	if err != nil {
		return nil, NewBoardServiceError("list", "failed to load boards", err)
	}
	return boards, nil
}

// Create implements BoardService.Create.
func (s *boardServiceImpl) Create(
	ctx context.Context,
	actorID uuid.UUID,
	title string,
	isPublic bool,
) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board, err := domain.NewBoard(actorID, title, isPublic)
	if err != nil {
		return nil, err
	}

	if err := s.boardStore.Create(ctx, board); err != nil {
		if store.IsDuplicateError(err) {
			return nil, err
		}
		return nil, NewBoardServiceError("create", "failed to save board", err)
	}

	log.Info("board created",
		"board_id", board.ID,
		"owner_id", actorID)

	s.recordActivity(ctx, board.ID, actorID, domain.ActionCreated, domain.EntityBoard, board.ID,
		domain.ActivityMetadata{Title: board.Title})

	return board, nil
}

// Get implements BoardService.Get.
func (s *boardServiceImpl) Get(ctx context.Context, viewerID, boardID uuid.UUID) (*BoardDetail, error) {
	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewBoardServiceError("get", "failed to load board", err)
	}
	if !board.ReadableBy(viewerID) {
		return nil, domain.ErrForbidden
	}

	lists, err := s.listStore.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, NewBoardServiceError("get", "failed to load lists", err)
	}

	return &BoardDetail{Board: *board, Lists: lists}, nil
}

// Update implements BoardService.Update.
func (s *boardServiceImpl) Update(
	ctx context.Context,
	actorID, boardID uuid.UUID,
	update BoardUpdate,
) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewBoardServiceError("update", "failed to load board", err)
	}
	if !board.OwnedBy(actorID) {
		return nil, domain.ErrForbidden
	}

	if update.Title != nil {
		board.Title = *update.Title
	}
	if update.IsPublic != nil {
		board.IsPublic = *update.IsPublic
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}
	board.UpdatedAt = time.Now().UTC()

	if err := s.boardStore.Update(ctx, board); err != nil {
		if store.IsDuplicateError(err) || store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewBoardServiceError("update", "failed to save board", err)
	}

	log.Info("board updated", "board_id", board.ID)

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventBoardUpdated, board.ID, actorID, board))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionUpdated, domain.EntityBoard, board.ID,
		domain.ActivityMetadata{Title: board.Title})

	return board, nil
}

// recordActivity appends an activity record, logging failures without
// surfacing them.
func (s *boardServiceImpl) recordActivity(
	ctx context.Context,
	boardID, actorID uuid.UUID,
	action domain.ActionKind,
	entity domain.EntityKind,
	entityID uuid.UUID,
	metadata domain.ActivityMetadata,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	record, err := domain.NewActivityRecord(boardID, actorID, action, entity, entityID, metadata)
	if err != nil {
		log.Warn("failed to build activity record", "board_id", boardID, "error", err)
		return
	}
	if err := s.activity.Record(ctx, record); err != nil {
		log.Warn("failed to record activity", "board_id", boardID, "error", err)
	}
}
