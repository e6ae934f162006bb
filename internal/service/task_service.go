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

// TaskDetail is a task together with its assignments.
type TaskDetail struct {
	Task        domain.Task             `json:"task"`
	Assignments []domain.TaskAssignment `json:"assignments"`
}

// TaskUpdate carries the optional fields of a task update. Nil fields are
// left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
}

// TaskService provides task-level operations. Moves within a list clamp
// the requested position into [0, N-1] and shift the siblings in between;
// moves across lists close the gap in the source list and open one in the
// destination, all inside a single transaction.
type TaskService interface {
	// ListByList returns a list's tasks in position order. A non-empty
	// query filters by case-insensitive substring match on title or
	// description.
	ListByList(ctx context.Context, viewerID, listID uuid.UUID, query string) ([]domain.Task, error)

	// ListByBoard returns every task on the board, same ordering and
	// filtering as ListByList.
	ListByBoard(ctx context.Context, viewerID, boardID uuid.UUID, query string) ([]domain.Task, error)

	// Create appends a new task at the end of the list and broadcasts
	// TASK_CREATED. Only the board owner may create tasks.
	Create(ctx context.Context, actorID, listID uuid.UUID, title, description string) (*domain.Task, error)

	// Get returns the task with its assignments.
	Get(ctx context.Context, viewerID, taskID uuid.UUID) (*TaskDetail, error)

	// Update applies the non-nil fields and broadcasts TASK_UPDATED.
	Update(ctx context.Context, actorID, taskID uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// Delete removes the task, closes the position gap in its list, and
	// broadcasts TASK_DELETED.
	Delete(ctx context.Context, actorID, taskID uuid.UUID) error

	// Move repositions the task within its list or transfers it to
	// another list on the same board, then broadcasts TASK_MOVED. Moving
	// a task to the list and position it already holds is a no-op: no
	// write, no event, no activity record.
	Move(ctx context.Context, actorID, taskID, toListID uuid.UUID, position int) (*domain.Task, error)

	// Assign links a user to the task and broadcasts TASK_ASSIGNED.
	// Returns store.ErrAlreadyAssigned when the pair already exists.
	Assign(ctx context.Context, actorID, taskID, userID uuid.UUID) (*domain.TaskAssignment, error)

	// Unassign removes the link and broadcasts TASK_UNASSIGNED.
	// Returns store.ErrAssignmentNotFound when the pair does not exist.
	Unassign(ctx context.Context, actorID, taskID, userID uuid.UUID) error
}

// taskServiceImpl implements TaskService.
type taskServiceImpl struct {
	txRunner        store.TxRunner
	boardStore      store.BoardStore
	listStore       store.ListStore
	taskStore       store.TaskStore
	assignmentStore store.AssignmentStore
	userStore       store.UserStore
	broadcaster     Broadcaster
	activity        ActivityService
	logger          *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	txRunner store.TxRunner,
	boardStore store.BoardStore,
	listStore store.ListStore,
	taskStore store.TaskStore,
	assignmentStore store.AssignmentStore,
	userStore store.UserStore,
	broadcaster Broadcaster,
	activity ActivityService,
	log *slog.Logger,
) (TaskService, error) {
	if txRunner == nil {
		return nil, domain.NewValidationError("txRunner", "cannot be nil", domain.ErrValidation)
	}
	if boardStore == nil {
		return nil, domain.NewValidationError("boardStore", "cannot be nil", domain.ErrValidation)
	}
	if listStore == nil {
		return nil, domain.NewValidationError("listStore", "cannot be nil", domain.ErrValidation)
	}
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if assignmentStore == nil {
		return nil, domain.NewValidationError("assignmentStore", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
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
	return &taskServiceImpl{
		txRunner:        txRunner,
		boardStore:      boardStore,
		listStore:       listStore,
		taskStore:       taskStore,
		assignmentStore: assignmentStore,
		userStore:       userStore,
		broadcaster:     broadcaster,
		activity:        activity,
		logger:          log.With(slog.String("component", "task_service")),
	}, nil
}

// ListByList implements TaskService.ListByList.
func (s *taskServiceImpl) ListByList(
	ctx context.Context,
	viewerID, listID uuid.UUID,
	query string,
) ([]domain.Task, error) {
	list, board, err := s.listScope(ctx, listID, "list")
	if err != nil {
		return nil, err
	}
	if !board.ReadableBy(viewerID) {
		return nil, domain.ErrForbidden
	}

	tasks, err := s.taskStore.ListByList(ctx, list.ID, query)
	if err != nil {
		return nil, NewTaskServiceError("list", "failed to load tasks", err)
	}
	return tasks, nil
}

// ListByBoard implements TaskService.ListByBoard.
func (s *taskServiceImpl) ListByBoard(
	ctx context.Context,
	viewerID, boardID uuid.UUID,
	query string,
) ([]domain.Task, error) {
	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewTaskServiceError("list", "failed to load board", err)
	}
	if !board.ReadableBy(viewerID) {
		return nil, domain.ErrForbidden
	}

	tasks, err := s.taskStore.ListByBoard(ctx, boardID, query)
	if err != nil {
		return nil, NewTaskServiceError("list", "failed to load tasks", err)
	}
	return tasks, nil
}

// Create implements TaskService.Create.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	actorID, listID uuid.UUID,
	title, description string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	list, board, err := s.listScope(ctx, listID, "create")
	if err != nil {
		return nil, err
	}
	if !board.OwnedBy(actorID) {
		return nil, domain.ErrForbidden
	}

	var task *domain.Task
	err = s.txRunner.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txLists := s.listStore.WithTx(tx)
		txTasks := s.taskStore.WithTx(tx)

		// Lock the list row so the append position cannot be claimed by a
		// concurrent shift on the same list.
		if _, err := txLists.GetForUpdate(ctx, listID); err != nil {
			return NewTaskServiceError("create", "failed to lock list", err)
		}

		max, err := txTasks.MaxPosition(ctx, listID)
		if err != nil {
			return NewTaskServiceError("create", "failed to determine append position", err)
		}

		task, err = domain.NewTask(listID, title, description, max+1, actorID)
		if err != nil {
			return err
		}
		if err := txTasks.Create(ctx, task); err != nil {
			return NewTaskServiceError("create", "failed to save task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task created",
		"task_id", task.ID,
		"list_id", listID,
		"position", task.Position)

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventTaskCreated, board.ID, actorID, task))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionCreated, task.ID,
		domain.ActivityMetadata{Title: task.Title, ListTitle: list.Title, Position: &task.Position})

	return task, nil
}

// Get implements TaskService.Get.
func (s *taskServiceImpl) Get(ctx context.Context, viewerID, taskID uuid.UUID) (*TaskDetail, error) {
	task, _, board, err := s.taskScope(ctx, taskID, "get")
	if err != nil {
		return nil, err
	}
	if !board.ReadableBy(viewerID) {
		return nil, domain.ErrForbidden
	}

	assignments, err := s.assignmentStore.ListByTask(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("get", "failed to load assignments", err)
	}

	return &TaskDetail{Task: *task, Assignments: assignments}, nil
}

// Update implements TaskService.Update.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	actorID, taskID uuid.UUID,
	update TaskUpdate,
) (*domain.Task, error) {
	task, _, board, err := s.taskScope(ctx, taskID, "update")
	if err != nil {
		return nil, err
	}
	if !board.OwnedBy(actorID) {
		return nil, domain.ErrForbidden
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	task.UpdatedAt = time.Now().UTC()
	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, NewTaskServiceError("update", "failed to save task", err)
	}

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventTaskUpdated, board.ID, actorID, task))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionUpdated, task.ID,
		domain.ActivityMetadata{Title: task.Title})

	return task, nil
}

// Delete implements TaskService.Delete.
func (s *taskServiceImpl) Delete(ctx context.Context, actorID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, _, board, err := s.taskScope(ctx, taskID, "delete")
	if err != nil {
		return err
	}
	if !board.OwnedBy(actorID) {
		return domain.ErrForbidden
	}

	err = s.txRunner.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txLists := s.listStore.WithTx(tx)
		txTasks := s.taskStore.WithTx(tx)

		if _, err := txLists.GetForUpdate(ctx, task.ListID); err != nil {
			return NewTaskServiceError("delete", "failed to lock list", err)
		}

		// Re-read under the lock: a concurrent move may have shifted the
		// task since the authorization read.
		current, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return err
			}
			return NewTaskServiceError("delete", "failed to load task", err)
		}
		if current.ListID != task.ListID {
			// A concurrent transfer moved the task to a list this
			// transaction does not hold a lock on; the caller retries
			// against fresh state.
			return NewTaskServiceError("delete", "task was moved concurrently", store.ErrInvalidEntity)
		}

		if err := txTasks.Delete(ctx, taskID); err != nil {
			return NewTaskServiceError("delete", "failed to delete task", err)
		}
		if err := txTasks.CloseGap(ctx, current.ListID, current.Position); err != nil {
			return NewTaskServiceError("delete", "failed to close position gap", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("task deleted",
		"task_id", taskID,
		"list_id", task.ListID)

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventTaskDeleted, board.ID, actorID,
		domain.TaskDeletedPayload{ID: taskID, ListID: task.ListID}))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionDeleted, taskID,
		domain.ActivityMetadata{Title: task.Title})

	return nil
}

// Move implements TaskService.Move.
func (s *taskServiceImpl) Move(
	ctx context.Context,
	actorID, taskID, toListID uuid.UUID,
	position int,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, _, board, err := s.taskScope(ctx, taskID, "move")
	if err != nil {
		return nil, err
	}
	if !board.OwnedBy(actorID) {
		return nil, domain.ErrForbidden
	}

	fromListID := task.ListID
	fromPosition := task.Position

	if toListID == fromListID {
		return s.reposition(ctx, actorID, task, board, position)
	}

	// Transfers stay within one board.
	dest, err := s.listStore.GetByID(ctx, toListID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewTaskServiceError("move", "failed to load destination list", err)
	}
	if dest.BoardID != board.ID {
		return nil, domain.NewValidationError("toListId", "list belongs to a different board", domain.ErrValidation)
	}

	err = s.txRunner.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txLists := s.listStore.WithTx(tx)
		txTasks := s.taskStore.WithTx(tx)

		// Lock both list rows in a stable order so two transfers that
		// share a list serialize without deadlocking.
		first, second := fromListID, toListID
		if second.String() < first.String() {
			first, second = second, first
		}
		if _, err := txLists.GetForUpdate(ctx, first); err != nil {
			return NewTaskServiceError("move", "failed to lock list", err)
		}
		if _, err := txLists.GetForUpdate(ctx, second); err != nil {
			return NewTaskServiceError("move", "failed to lock list", err)
		}

		// Re-read under the locks: the shift arithmetic must start from
		// the committed position, not the authorization-time snapshot.
		current, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return err
			}
			return NewTaskServiceError("move", "failed to load task", err)
		}
		if current.ListID != fromListID {
			return NewTaskServiceError("move", "task was moved concurrently", store.ErrInvalidEntity)
		}

		destCount, err := txTasks.Count(ctx, toListID)
		if err != nil {
			return NewTaskServiceError("move", "failed to count destination tasks", err)
		}

		move := ordering.ResolveTransfer(current.Position, position, destCount)
		if err := txTasks.CloseGap(ctx, fromListID, move.SourceFrom); err != nil {
			return NewTaskServiceError("move", "failed to close source gap", err)
		}
		if err := txTasks.OpenGap(ctx, toListID, move.DestFrom); err != nil {
			return NewTaskServiceError("move", "failed to open destination gap", err)
		}

		fromPosition = current.Position
		current.ListID = toListID
		current.Position = move.Target
		current.UpdatedAt = time.Now().UTC()
		if err := txTasks.Update(ctx, current); err != nil {
			return NewTaskServiceError("move", "failed to save task", err)
		}
		*task = *current
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task moved",
		"task_id", taskID,
		"from_list_id", fromListID,
		"to_list_id", toListID,
		"position", task.Position)

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventTaskMoved, board.ID, actorID,
		domain.TaskMovedPayload{
			ID:         taskID,
			FromListID: fromListID,
			ToListID:   toListID,
			Position:   task.Position,
		}))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionMoved, taskID,
		domain.ActivityMetadata{
			Title:      task.Title,
			From:       &fromPosition,
			To:         &task.Position,
			FromListID: &fromListID,
			ToListID:   &toListID,
		})

	return task, nil
}

// reposition moves a task within its own list.
func (s *taskServiceImpl) reposition(
	ctx context.Context,
	actorID uuid.UUID,
	task *domain.Task,
	board *domain.Board,
	position int,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// The position and sibling count are read inside the transaction,
	// after the list row lock is held: resolving the shift against a
	// pre-transaction snapshot would let two concurrent moves commit
	// interleaved range updates and break the dense invariant.
	var (
		noop bool
		from int
	)
	err := s.txRunner.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txLists := s.listStore.WithTx(tx)
		txTasks := s.taskStore.WithTx(tx)

		if _, err := txLists.GetForUpdate(ctx, task.ListID); err != nil {
			return NewTaskServiceError("move", "failed to lock list", err)
		}

		current, err := txTasks.GetByID(ctx, task.ID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return err
			}
			return NewTaskServiceError("move", "failed to load task", err)
		}
		if current.ListID != task.ListID {
			return NewTaskServiceError("move", "task was moved concurrently", store.ErrInvalidEntity)
		}
		count, err := txTasks.Count(ctx, current.ListID)
		if err != nil {
			return NewTaskServiceError("move", "failed to count tasks", err)
		}

		from = current.Position
		move := ordering.ResolveReposition(current.Position, position, count)
		if move.NoOp {
			noop = true
			*task = *current
			return nil
		}

		if err := txTasks.ShiftRange(ctx, current.ListID, move.Lo, move.Hi, move.Delta); err != nil {
			return NewTaskServiceError("move", "failed to shift siblings", err)
		}
		current.Position = move.Target
		current.UpdatedAt = time.Now().UTC()
		if err := txTasks.Update(ctx, current); err != nil {
			return NewTaskServiceError("move", "failed to save task", err)
		}
		*task = *current
		return nil
	})
	if err != nil {
		return nil, err
	}
	if noop {
		log.Debug("task move is a no-op",
			"task_id", task.ID,
			"position", task.Position)
		return task, nil
	}

	log.Info("task repositioned",
		"task_id", task.ID,
		"list_id", task.ListID,
		"from", from,
		"to", task.Position)

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventTaskMoved, board.ID, actorID,
		domain.TaskMovedPayload{
			ID:         task.ID,
			FromListID: task.ListID,
			ToListID:   task.ListID,
			Position:   task.Position,
		}))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionMoved, task.ID,
		domain.ActivityMetadata{Title: task.Title, From: &from, To: &task.Position})

	return task, nil
}

// Assign implements TaskService.Assign.
func (s *taskServiceImpl) Assign(
	ctx context.Context,
	actorID, taskID, userID uuid.UUID,
) (*domain.TaskAssignment, error) {
	task, _, board, err := s.taskScope(ctx, taskID, "assign")
	if err != nil {
		return nil, err
	}
	if !board.OwnedBy(actorID) {
		return nil, domain.ErrForbidden
	}

	// The assignee must exist; FK violations would surface anyway but a
	// not-found here gives the caller a clearer answer.
	if _, err := s.userStore.GetByID(ctx, userID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewTaskServiceError("assign", "failed to load user", err)
	}

	assignment, err := domain.NewTaskAssignment(taskID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.assignmentStore.Create(ctx, assignment); err != nil {
		if store.IsDuplicateError(err) {
			return nil, err
		}
		return nil, NewTaskServiceError("assign", "failed to save assignment", err)
	}

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventTaskAssigned, board.ID, actorID,
		domain.TaskAssignmentPayload{TaskID: taskID, UserID: userID}))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionUpdated, taskID,
		domain.ActivityMetadata{Title: task.Title, AssignedUserID: &userID})

	return assignment, nil
}

// Unassign implements TaskService.Unassign.
func (s *taskServiceImpl) Unassign(ctx context.Context, actorID, taskID, userID uuid.UUID) error {
	task, _, board, err := s.taskScope(ctx, taskID, "unassign")
	if err != nil {
		return err
	}
	if !board.OwnedBy(actorID) {
		return domain.ErrForbidden
	}

	if err := s.assignmentStore.Delete(ctx, taskID, userID); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		return NewTaskServiceError("unassign", "failed to delete assignment", err)
	}

	s.broadcaster.Broadcast(ctx, domain.NewEvent(domain.EventTaskUnassigned, board.ID, actorID,
		domain.TaskAssignmentPayload{TaskID: taskID, UserID: userID}))
	s.recordActivity(ctx, board.ID, actorID, domain.ActionUpdated, taskID,
		domain.ActivityMetadata{Title: task.Title, UnassignedUserID: &userID})

	return nil
}

// listScope loads a list and its board.
func (s *taskServiceImpl) listScope(
	ctx context.Context,
	listID uuid.UUID,
	operation string,
) (*domain.List, *domain.Board, error) {
	list, err := s.listStore.GetByID(ctx, listID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, err
		}
		return nil, nil, NewTaskServiceError(operation, "failed to load list", err)
	}
	board, err := s.boardStore.GetByID(ctx, list.BoardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, err
		}
		return nil, nil, NewTaskServiceError(operation, "failed to load board", err)
	}
	return list, board, nil
}

// taskScope loads a task, its list, and the owning board.
func (s *taskServiceImpl) taskScope(
	ctx context.Context,
	taskID uuid.UUID,
	operation string,
) (*domain.Task, *domain.List, *domain.Board, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, nil, err
		}
		return nil, nil, nil, NewTaskServiceError(operation, "failed to load task", err)
	}
	list, board, err := s.listScope(ctx, task.ListID, operation)
	if err != nil {
		return nil, nil, nil, err
	}
	return task, list, board, nil
}

// recordActivity appends a task activity record, logging failures without
// surfacing them.
func (s *taskServiceImpl) recordActivity(
	ctx context.Context,
	boardID, actorID uuid.UUID,
	action domain.ActionKind,
	taskID uuid.UUID,
	metadata domain.ActivityMetadata,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	record, err := domain.NewActivityRecord(boardID, actorID, action, domain.EntityTask, taskID, metadata)
	if err != nil {
		log.Warn("failed to build activity record", "board_id", boardID, "error", err)
		return
	}
	if err := s.activity.Record(ctx, record); err != nil {
		log.Warn("failed to record activity", "board_id", boardID, "error", err)
	}
}
