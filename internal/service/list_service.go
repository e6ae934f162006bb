package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/ordering"
	"github.com/openkanban/board-api/internal/platform/logger"
	"github.com/openkanban/board-api/internal/store"
)

// ListService provides list-level operations. Creates append at the end of
// the board; deletes close the position gap; reorders clamp the requested
// position and shift the affected siblings, all inside one transaction so
// positions stay dense.
type ListService interface {
	// ListByBoard returns the board's lists in position order.
	ListByBoard(ctx context.Context, viewerID, boardID uuid.UUID) ([]domain.List, error)

	// Create appends a new list at the end of the board and broadcasts
	// LIST_CREATED. Only the board owner may create lists.
	Create(ctx context.Context, actorID, boardID uuid.UUID, title string) (*domain.List, error)

	// Rename changes the list title and broadcasts LIST_UPDATED.
	Rename(ctx context.Context, actorID, listID uuid.UUID, title string) (*domain.List, error)

	// Delete removes the list with its tasks and closes the position gap,
	// then broadcasts LIST_DELETED.
	Delete(ctx context.Context, actorID, listID uuid.UUID) error

	// Reorder moves the list to the requested position, clamped into the
	// board's valid range, and broadcasts LIST_REORDERED. Moving a list to
	// the position it already holds is a no-op: no write, no event, no
	// activity record.
	Reorder(ctx context.Context, actorID, listID uuid.UUID, position int) (*domain.List, error)
}

// listServiceImpl implements ListService.
type listServiceImpl struct {
	txRunner    store.TxRunner
	boardStore  store.BoardStore
	listStore   store.ListStore
	broadcaster Broadcaster
	activity    ActivityService
	logger      *slog.Logger
}

// NewListService creates a new ListService.
// It returns an error if any of the required dependencies are nil.
func NewListService(
	txRunner store.TxRunner,
	boardStore store.BoardStore,
	listStore store.ListStore,
	broadcaster Broadcaster,
	activity ActivityService,
	log *slog.Logger,
) (ListService, error) {
	if txRunner == nil {
		return nil, domain.NewValidationError("txRunner", "cannot be nil", domain.ErrValidation)
	}
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
	return &listServiceImpl{
		txRunner:    txRunner,
		boardStore:  boardStore,
		listStore:   listStore,
		broadcaster: broadcaster,
		activity:    activity,
		logger:      log.With(slog.String("component", "list_service")),
	}, nil
}

// ListByBoard implements ListService.ListByBoard.
func (s *listServiceImpl) ListByBoard(ctx context.Context, viewerID, boardID uuid.UUID) ([]domain.List, error) {
	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewListServiceError("list", "failed to load board", err)
	}
	if !board.ReadableBy(viewerID) {
		return nil, domain.ErrForbidden
	}

	lists, err := s.listStore.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, NewListServiceError("list", "failed to load lists", err)
	}
	return lists, nil
}

// Create implements ListService.Create.
func (s *listServiceImpl) Create(
	ctx context.Context,
	actorID, boardID uuid.UUID,
	title string,
) (*domain.List, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.ownedBoard(ctx, boardID, actorID, "create"); err != nil {
		return nil, err
	}

	var list *domain.List
	err := s.txRunner.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txBoards := s.boardStore.WithTx(tx)
		txLists := s.listStore.WithTx(tx)

		// Lock the board row so the append position cannot be claimed by
		// a concurrent shift on the same board.
		if _, err := txBoards.GetForUpdate(ctx, boardID); err != nil {
			return NewListServiceError("create", "failed to lock board", err)
		}

		max, err := txLists.MaxPosition(ctx, boardID)
		if err != nil {
			return NewListServiceError("create", "failed to determine append position", err)
		}

		list, err = domain.NewList(boardID, title, max+1)
		if err != nil {
			return err
		}
		if err := txLists.Create(ctx, list); err != nil {
			return NewListServiceError("create", "failed to save list", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("list created",
		"list_id", list.ID,
		"board_id", boardID,
		"position", list.Position)

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventListCreated, boardID, actorID, list))
	s.recordActivity(ctx, boardID, actorID, domain.ActionCreated, list.ID,
		domain.ActivityMetadata{Title: list.Title, Position: &list.Position})

	return list, nil
}

// Rename implements ListService.Rename.
func (s *listServiceImpl) Rename(
	ctx context.Context,
	actorID, listID uuid.UUID,
	title string,
) (*domain.List, error) {
	list, board, err := s.listScope(ctx, listID, "rename")
	if err != nil {
		return nil, err
	}
	if !board.OwnedBy(actorID) {
		return nil, domain.ErrForbidden
	}

	previous := list.Title
	list.Title = title
	if err := list.Validate(); err != nil {
		return nil, err
	}
	list.UpdatedAt = time.Now().UTC()
	if err := s.listStore.Update(ctx, list); err != nil {
		return nil, NewListServiceError("rename", "failed to save list", err)
	}

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventListUpdated, board.ID, actorID, list))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionUpdated, list.ID,
		domain.ActivityMetadata{Title: list.Title, ListTitle: previous})

	return list, nil
}

// Delete implements ListService.Delete.
func (s *listServiceImpl) Delete(ctx context.Context, actorID, listID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	list, board, err := s.listScope(ctx, listID, "delete")
	if err != nil {
		return err
	}
	if !board.OwnedBy(actorID) {
		return domain.ErrForbidden
	}

	err = s.txRunner.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txBoards := s.boardStore.WithTx(tx)
		txLists := s.listStore.WithTx(tx)

		if _, err := txBoards.GetForUpdate(ctx, board.ID); err != nil {
			return NewListServiceError("delete", "failed to lock board", err)
		}

		// Re-read under the lock: a concurrent reorder may have shifted
		// the list since the authorization read.
		current, err := txLists.GetByID(ctx, listID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return err
			}
			return NewListServiceError("delete", "failed to load list", err)
		}

		// Tasks go with the list via the FK cascade.
		if err := txLists.Delete(ctx, listID); err != nil {
			return NewListServiceError("delete", "failed to delete list", err)
		}
		if err := txLists.CloseGap(ctx, board.ID, current.Position); err != nil {
			return NewListServiceError("delete", "failed to close position gap", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("list deleted",
		"list_id", listID,
		"board_id", board.ID)

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventListDeleted, board.ID, actorID,
		domain.ListDeletedPayload{ID: listID, BoardID: board.ID}))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionDeleted, listID,
		domain.ActivityMetadata{Title: list.Title})

	return nil
}

// Reorder implements ListService.Reorder.
func (s *listServiceImpl) Reorder(
	ctx context.Context,
	actorID, listID uuid.UUID,
	position int,
) (*domain.List, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	list, board, err := s.listScope(ctx, listID, "reorder")
	if err != nil {
		return nil, err
	}
	if !board.OwnedBy(actorID) {
		return nil, domain.ErrForbidden
	}

	// The position and sibling count are read inside the transaction,
	// after the board row lock is held: resolving the shift against a
	// pre-transaction snapshot would let two concurrent reorders commit
	// interleaved range updates and break the dense invariant.
	var (
		noop bool
		from int
	)
	err = s.txRunner.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txBoards := s.boardStore.WithTx(tx)
		txLists := s.listStore.WithTx(tx)

		if _, err := txBoards.GetForUpdate(ctx, board.ID); err != nil {
			return NewListServiceError("reorder", "failed to lock board", err)
		}

		current, err := txLists.GetByID(ctx, listID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return err
			}
			return NewListServiceError("reorder", "failed to load list", err)
		}
		count, err := txLists.Count(ctx, board.ID)
		if err != nil {
			return NewListServiceError("reorder", "failed to count lists", err)
		}

		from = current.Position
		move := ordering.ResolveReposition(current.Position, position, count)
		if move.NoOp {
			noop = true
			*list = *current
			return nil
		}

		if err := txLists.ShiftRange(ctx, board.ID, move.Lo, move.Hi, move.Delta); err != nil {
			return NewListServiceError("reorder", "failed to shift siblings", err)
		}
		current.Position = move.Target
		current.UpdatedAt = time.Now().UTC()
		if err := txLists.Update(ctx, current); err != nil {
			return NewListServiceError("reorder", "failed to save list", err)
		}
		*list = *current
		return nil
	})
	if err != nil {
		return nil, err
	}
	if noop {
		log.Debug("list reorder is a no-op",
			"list_id", listID,
			"position", list.Position)
		return list, nil
	}

	log.Info("list reordered",
		"list_id", listID,
		"board_id", board.ID,
		"from", from,
		"to", list.Position)

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventListReordered, board.ID, actorID,
		domain.ListReorderedPayload{ID: listID, Position: list.Position}))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionMoved, listID,
		domain.ActivityMetadata{Title: list.Title, From: &from, To: &list.Position})

	return list, nil
}

// ownedBoard loads a board and checks the actor owns it.
func (s *listServiceImpl) ownedBoard(
	ctx context.Context,
	boardID, actorID uuid.UUID,
	operation string,
) (*domain.Board, error) {
	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewListServiceError(operation, "failed to load board", err)
	}
	if !board.OwnedBy(actorID) {
		return nil, domain.ErrForbidden
	}
	return board, nil
}

// listScope loads a list and its board.
func (s *listServiceImpl) listScope(
	ctx context.Context,
	listID uuid.UUID,
	operation string,
) (*domain.List, *domain.Board, error) {
	list, err := s.listStore.GetByID(ctx, listID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, err
		}
		return nil, nil, NewListServiceError(operation, "failed to load list", err)
	}
	board, err := s.boardStore.GetByID(ctx, list.BoardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, err
		}
		return nil, nil, NewListServiceError(operation, "failed to load board", err)
	}
	return list, board, nil
}

// recordActivity appends a list activity record, logging failures without
// surfacing them.
func (s *listServiceImpl) recordActivity(
	ctx context.Context,
	boardID, actorID uuid.UUID,
	action domain.ActionKind,
	listID uuid.UUID,
	metadata domain.ActivityMetadata,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	record, err := domain.NewActivityRecord(boardID, actorID, action, domain.EntityList, listID, metadata)
	if err != nil {
		log.Warn("failed to build activity record", "board_id", boardID, "error", err)
		return
	}
	if err := s.activity.Record(ctx, record); err != nil {
		log.Warn("failed to record activity", "board_id", boardID, "error", err)
	}
}
