package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/platform/logger"
	"github.com/openkanban/board-api/internal/store"
)

// Activity feed pagination bounds.
const (
	defaultActivityPageSize = 20
	maxActivityPageSize     = 100
)

// ActivityService records mutations into the board activity log and serves
// the paginated feed.
type ActivityService interface {
	// Record appends an activity record. Mutation services call this after
	// their transaction commits and log-and-continue on failure: a lost
	// record never fails the mutation it describes.
	Record(ctx context.Context, record *domain.ActivityRecord) error

	// ListByBoard returns one page of the board's activity in descending
	// creation order. page starts at 1; perPage is capped at 100. List and
	// task titles are resolved by ID at read time where the entities still
	// exist, so renames are reflected and stored snapshots cover deletions.
	ListByBoard(ctx context.Context, viewerID, boardID uuid.UUID, page, perPage int) ([]domain.ActivityRecord, error)
}

// activityServiceImpl implements ActivityService.
type activityServiceImpl struct {
	activityStore store.ActivityStore
	boardStore    store.BoardStore
	listStore     store.ListStore
	taskStore     store.TaskStore
	logger        *slog.Logger
}

// NewActivityService creates a new ActivityService.
// It returns an error if any of the required dependencies are nil.
func NewActivityService(
	activityStore store.ActivityStore,
	boardStore store.BoardStore,
	listStore store.ListStore,
	taskStore store.TaskStore,
	log *slog.Logger,
) (ActivityService, error) {
	if activityStore == nil {
		return nil, domain.NewValidationError("activityStore", "cannot be nil", domain.ErrValidation)
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
	if log == nil {
		log = slog.Default()
	}
	return &activityServiceImpl{
		activityStore: activityStore,
		boardStore:    boardStore,
		listStore:     listStore,
		taskStore:     taskStore,
		logger:        log.With(slog.String("component", "activity_service")),
	}, nil
}

// Record implements ActivityService.Record.
func (s *activityServiceImpl) Record(ctx context.Context, record *domain.ActivityRecord) error {
	if err := s.activityStore.Create(ctx, record); err != nil {
		return NewActivityServiceError("record", "failed to append activity record", err)
	}
	return nil
}

// ListByBoard implements ActivityService.ListByBoard.
func (s *activityServiceImpl) ListByBoard(
	ctx context.Context,
	viewerID, boardID uuid.UUID,
	page, perPage int,
) ([]domain.ActivityRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewActivityServiceError("list", "failed to load board", err)
	}
	if !board.ReadableBy(viewerID) {
		return nil, domain.ErrForbidden
	}

	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultActivityPageSize
	}
	if perPage > maxActivityPageSize {
		perPage = maxActivityPageSize
	}

	records, err := s.activityStore.ListByBoard(ctx, boardID, (page-1)*perPage, perPage)
	if err != nil {
		return nil, NewActivityServiceError("list", "failed to load activity records", err)
	}

	if err := s.enrichTitles(ctx, records); err != nil {
		// Stored metadata snapshots remain usable without enrichment.
		log.Warn("failed to enrich activity titles",
			"board_id", boardID,
			"error", err)
	}

	return records, nil
}

// enrichTitles resolves current list and task titles for the records that
// reference entities still present. Deleted entities keep the title
// snapshot captured at write time.
func (s *activityServiceImpl) enrichTitles(ctx context.Context, records []domain.ActivityRecord) error {
	listIDs := make(map[uuid.UUID]struct{})
	taskIDs := make(map[uuid.UUID]struct{})
	for i := range records {
		switch records[i].EntityKind {
		case domain.EntityList:
			listIDs[records[i].EntityID] = struct{}{}
		case domain.EntityTask:
			taskIDs[records[i].EntityID] = struct{}{}
		}
		meta := records[i].Metadata
		if meta.FromListID != nil {
			listIDs[*meta.FromListID] = struct{}{}
		}
		if meta.ToListID != nil {
			listIDs[*meta.ToListID] = struct{}{}
		}
	}

	listTitles, err := s.listStore.TitlesByIDs(ctx, keys(listIDs))
	if err != nil {
		return err
	}
	taskTitles, err := s.taskStore.TitlesByIDs(ctx, keys(taskIDs))
	if err != nil {
		return err
	}

	for i := range records {
		meta := &records[i].Metadata
		switch records[i].EntityKind {
		case domain.EntityList:
			if title, ok := listTitles[records[i].EntityID]; ok {
				meta.Title = title
			}
		case domain.EntityTask:
			if title, ok := taskTitles[records[i].EntityID]; ok {
				meta.Title = title
			}
		}
		if meta.FromListID != nil {
			if title, ok := listTitles[*meta.FromListID]; ok {
				meta.FromListTitle = title
			}
		}
		if meta.ToListID != nil {
			if title, ok := listTitles[*meta.ToListID]; ok {
				meta.ToListTitle = title
			}
		}
	}
	return nil
}

func keys(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
