package service_test

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/openkanban/board-api/internal/config"
	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/service"
	"github.com/openkanban/board-api/internal/service/auth"
	"github.com/openkanban/board-api/internal/store"
)

// fakeTxRunner executes the function directly. The fake stores are not
// transactional, so the nil *sql.Tx is never dereferenced: their WithTx
// returns the store itself.
type fakeTxRunner struct{}

func (fakeTxRunner) Run(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// gateTxRunner holds every transaction at the gate until the expected
// number of callers has arrived, then runs them one at a time. Positions
// resolved before Run would all see the same stale snapshot; positions
// resolved inside Run see each committed predecessor, the way row locks
// order transactions in Postgres.
type gateTxRunner struct {
	arrived *sync.WaitGroup
	mu      sync.Mutex
}

func newGateTxRunner(callers int) *gateTxRunner {
	var wg sync.WaitGroup
	wg.Add(callers)
	return &gateTxRunner{arrived: &wg}
}

func (r *gateTxRunner) Run(ctx context.Context, fn store.TxFn) error {
	r.arrived.Done()
	r.arrived.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, nil)
}

// captureBroadcaster records every broadcast event for assertions.
type captureBroadcaster struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *captureBroadcaster) Broadcast(ctx context.Context, event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBroadcaster) all() []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Event(nil), b.events...)
}

func (b *captureBroadcaster) last(t *testing.T) domain.Event {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.events, "expected at least one broadcast event")
	return b.events[len(b.events)-1]
}

// fakeBoardStore is an in-memory BoardStore.
type fakeBoardStore struct {
	mu     sync.Mutex
	boards map[uuid.UUID]domain.Board
}

func newFakeBoardStore() *fakeBoardStore {
	return &fakeBoardStore{boards: make(map[uuid.UUID]domain.Board)}
}

func (s *fakeBoardStore) Create(ctx context.Context, board *domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.boards {
		if existing.OwnerID == board.OwnerID && existing.Title == board.Title {
			return store.ErrBoardTitleExists
		}
	}
	s.boards[board.ID] = *board
	return nil
}

func (s *fakeBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[id]
	if !ok {
		return nil, store.ErrBoardNotFound
	}
	return &board, nil
}

// GetForUpdate carries no lock here; test transactions serialize through
// the runner instead, the way row locks serialize them in Postgres.
func (s *fakeBoardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeBoardStore) ListVisible(ctx context.Context, viewerID uuid.UUID) ([]domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var boards []domain.Board
	for _, board := range s.boards {
		if board.ReadableBy(viewerID) {
			boards = append(boards, board)
		}
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].Title < boards[j].Title })
	return boards, nil
}

func (s *fakeBoardStore) Update(ctx context.Context, board *domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[board.ID]; !ok {
		return store.ErrBoardNotFound
	}
	for _, existing := range s.boards {
		if existing.ID != board.ID && existing.OwnerID == board.OwnerID && existing.Title == board.Title {
			return store.ErrBoardTitleExists
		}
	}
	s.boards[board.ID] = *board
	return nil
}

func (s *fakeBoardStore) WithTx(tx *sql.Tx) store.BoardStore { return s }

// fakeListStore is an in-memory ListStore.
type fakeListStore struct {
	mu    sync.Mutex
	lists map[uuid.UUID]domain.List
}

func newFakeListStore() *fakeListStore {
	return &fakeListStore{lists: make(map[uuid.UUID]domain.List)}
}

func (s *fakeListStore) Create(ctx context.Context, list *domain.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[list.ID] = *list
	return nil
}

func (s *fakeListStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.lists[id]
	if !ok {
		return nil, store.ErrListNotFound
	}
	return &list, nil
}

func (s *fakeListStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeListStore) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]domain.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lists []domain.List
	for _, list := range s.lists {
		if list.BoardID == boardID {
			lists = append(lists, list)
		}
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].Position < lists[j].Position })
	return lists, nil
}

func (s *fakeListStore) Update(ctx context.Context, list *domain.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[list.ID]; !ok {
		return store.ErrListNotFound
	}
	s.lists[list.ID] = *list
	return nil
}

func (s *fakeListStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[id]; !ok {
		return store.ErrListNotFound
	}
	delete(s.lists, id)
	return nil
}

func (s *fakeListStore) MaxPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := -1
	for _, list := range s.lists {
		if list.BoardID == boardID && list.Position > max {
			max = list.Position
		}
	}
	return max, nil
}

func (s *fakeListStore) Count(ctx context.Context, boardID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, list := range s.lists {
		if list.BoardID == boardID {
			count++
		}
	}
	return count, nil
}

func (s *fakeListStore) ShiftRange(ctx context.Context, boardID uuid.UUID, lo, hi, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, list := range s.lists {
		if list.BoardID == boardID && list.Position >= lo && list.Position <= hi {
			list.Position += delta
			s.lists[id] = list
		}
	}
	return nil
}

func (s *fakeListStore) CloseGap(ctx context.Context, boardID uuid.UUID, above int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, list := range s.lists {
		if list.BoardID == boardID && list.Position > above {
			list.Position--
			s.lists[id] = list
		}
	}
	return nil
}

func (s *fakeListStore) TitlesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make(map[uuid.UUID]string)
	for _, id := range ids {
		if list, ok := s.lists[id]; ok {
			titles[id] = list.Title
		}
	}
	return titles, nil
}

func (s *fakeListStore) WithTx(tx *sql.Tx) store.ListStore { return s }

// fakeTaskStore is an in-memory TaskStore. It holds a reference to the
// list store for board-wide queries.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]domain.Task
	lists *fakeListStore
}

func newFakeTaskStore(lists *fakeListStore) *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]domain.Task), lists: lists}
}

func matchesQuery(task domain.Task, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(task.Title), query) ||
		strings.Contains(strings.ToLower(task.Description), query)
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &task, nil
}

func (s *fakeTaskStore) ListByList(ctx context.Context, listID uuid.UUID, query string) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tasks []domain.Task
	for _, task := range s.tasks {
		if task.ListID == listID && matchesQuery(task, query) {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })
	return tasks, nil
}

func (s *fakeTaskStore) ListByBoard(ctx context.Context, boardID uuid.UUID, query string) ([]domain.Task, error) {
	lists, err := s.lists.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	listIDs := make(map[uuid.UUID]struct{}, len(lists))
	for _, list := range lists {
		listIDs[list.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var tasks []domain.Task
	for _, task := range s.tasks {
		if _, ok := listIDs[task.ListID]; ok && matchesQuery(task, query) {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].ListID != tasks[j].ListID {
			return tasks[i].ListID.String() < tasks[j].ListID.String()
		}
		return tasks[i].Position < tasks[j].Position
	})
	return tasks, nil
}

func (s *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeTaskStore) MaxPosition(ctx context.Context, listID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := -1
	for _, task := range s.tasks {
		if task.ListID == listID && task.Position > max {
			max = task.Position
		}
	}
	return max, nil
}

func (s *fakeTaskStore) Count(ctx context.Context, listID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, task := range s.tasks {
		if task.ListID == listID {
			count++
		}
	}
	return count, nil
}

func (s *fakeTaskStore) ShiftRange(ctx context.Context, listID uuid.UUID, lo, hi, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, task := range s.tasks {
		if task.ListID == listID && task.Position >= lo && task.Position <= hi {
			task.Position += delta
			s.tasks[id] = task
		}
	}
	return nil
}

func (s *fakeTaskStore) CloseGap(ctx context.Context, listID uuid.UUID, above int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, task := range s.tasks {
		if task.ListID == listID && task.Position > above {
			task.Position--
			s.tasks[id] = task
		}
	}
	return nil
}

func (s *fakeTaskStore) OpenGap(ctx context.Context, listID uuid.UUID, from int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, task := range s.tasks {
		if task.ListID == listID && task.Position >= from {
			task.Position++
			s.tasks[id] = task
		}
	}
	return nil
}

func (s *fakeTaskStore) TitlesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make(map[uuid.UUID]string)
	for _, id := range ids {
		if task, ok := s.tasks[id]; ok {
			titles[id] = task.Title
		}
	}
	return titles, nil
}

func (s *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

// fakeAssignmentStore is an in-memory AssignmentStore.
type fakeAssignmentStore struct {
	mu          sync.Mutex
	assignments map[uuid.UUID]map[uuid.UUID]domain.TaskAssignment
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{assignments: make(map[uuid.UUID]map[uuid.UUID]domain.TaskAssignment)}
}

func (s *fakeAssignmentStore) Create(ctx context.Context, assignment *domain.TaskAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.assignments[assignment.TaskID]
	if !ok {
		byUser = make(map[uuid.UUID]domain.TaskAssignment)
		s.assignments[assignment.TaskID] = byUser
	}
	if _, exists := byUser[assignment.UserID]; exists {
		return store.ErrAlreadyAssigned
	}
	byUser[assignment.UserID] = *assignment
	return nil
}

func (s *fakeAssignmentStore) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser := s.assignments[taskID]
	if _, ok := byUser[userID]; !ok {
		return store.ErrAssignmentNotFound
	}
	delete(byUser, userID)
	return nil
}

func (s *fakeAssignmentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.TaskAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var assignments []domain.TaskAssignment
	for _, assignment := range s.assignments[taskID] {
		assignments = append(assignments, assignment)
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].UserID.String() < assignments[j].UserID.String()
	})
	return assignments, nil
}

func (s *fakeAssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore { return s }

// fakeActivityStore is an in-memory ActivityStore.
type fakeActivityStore struct {
	mu      sync.Mutex
	records []domain.ActivityRecord
}

func newFakeActivityStore() *fakeActivityStore {
	return &fakeActivityStore{}
}

func (s *fakeActivityStore) Create(ctx context.Context, record *domain.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

func (s *fakeActivityStore) ListByBoard(
	ctx context.Context,
	boardID uuid.UUID,
	offset, limit int,
) ([]domain.ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []domain.ActivityRecord
	// Newest first, by insertion order.
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].BoardID == boardID {
			matched = append(matched, s.records[i])
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *fakeActivityStore) WithTx(tx *sql.Tx) store.ActivityStore { return s }

func (s *fakeActivityStore) count(boardID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, record := range s.records {
		if record.BoardID == boardID {
			count++
		}
	}
	return count
}

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]domain.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			match := user
			return &match, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) List(ctx context.Context) ([]domain.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var summaries []domain.UserSummary
	for _, user := range s.users {
		summaries = append(summaries, domain.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Email < summaries[j].Email })
	return summaries, nil
}

func (s *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

// serviceEnv wires every service over the fakes for a single test.
type serviceEnv struct {
	boards      *fakeBoardStore
	lists       *fakeListStore
	tasks       *fakeTaskStore
	assignments *fakeAssignmentStore
	activity    *fakeActivityStore
	users       *fakeUserStore
	events      *captureBroadcaster

	boardSvc    service.BoardService
	listSvc     service.ListService
	taskSvc     service.TaskService
	activitySvc service.ActivityService
	userSvc     service.UserService
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()

	env := &serviceEnv{
		boards:      newFakeBoardStore(),
		lists:       newFakeListStore(),
		assignments: newFakeAssignmentStore(),
		activity:    newFakeActivityStore(),
		users:       newFakeUserStore(),
		events:      &captureBroadcaster{},
	}
	env.tasks = newFakeTaskStore(env.lists)

	log := slog.Default()

	activitySvc, err := service.NewActivityService(env.activity, env.boards, env.lists, env.tasks, log)
	require.NoError(t, err)
	env.activitySvc = activitySvc

	boardSvc, err := service.NewBoardService(env.boards, env.lists, env.events, activitySvc, log)
	require.NoError(t, err)
	env.boardSvc = boardSvc

	listSvc, err := service.NewListService(fakeTxRunner{}, env.boards, env.lists, env.events, activitySvc, log)
	require.NoError(t, err)
	env.listSvc = listSvc

	taskSvc, err := service.NewTaskService(
		fakeTxRunner{}, env.boards, env.lists, env.tasks, env.assignments, env.users,
		env.events, activitySvc, log)
	require.NoError(t, err)
	env.taskSvc = taskSvc

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-that-is-long-enough-for-hmac",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	userSvc, err := service.NewUserService(env.users, auth.NewPasswordHasher(4), jwtService, log)
	require.NoError(t, err)
	env.userSvc = userSvc

	return env
}

// seedUser registers a user directly in the store.
func (env *serviceEnv) seedUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, email)
	require.NoError(t, err)
	user.HashedPassword = "x"
	require.NoError(t, env.users.Create(context.Background(), user))
	return user
}

// seedBoard creates a board owned by the given user.
func (env *serviceEnv) seedBoard(t *testing.T, ownerID uuid.UUID, title string, public bool) *domain.Board {
	t.Helper()
	board, err := env.boardSvc.Create(context.Background(), ownerID, title, public)
	require.NoError(t, err)
	return board
}

// seedList appends a list to the board through the service.
func (env *serviceEnv) seedList(t *testing.T, ownerID, boardID uuid.UUID, title string) *domain.List {
	t.Helper()
	list, err := env.listSvc.Create(context.Background(), ownerID, boardID, title)
	require.NoError(t, err)
	return list
}

// seedTask appends a task to the list through the service.
func (env *serviceEnv) seedTask(t *testing.T, ownerID, listID uuid.UUID, title string) *domain.Task {
	t.Helper()
	task, err := env.taskSvc.Create(context.Background(), ownerID, listID, title, "")
	require.NoError(t, err)
	return task
}

// listPositions returns the board's list titles indexed by position,
// asserting the dense zero-based invariant along the way.
func (env *serviceEnv) listPositions(t *testing.T, boardID uuid.UUID) []string {
	t.Helper()
	lists, err := env.lists.ListByBoard(context.Background(), boardID)
	require.NoError(t, err)
	titles := make([]string, len(lists))
	for i, list := range lists {
		require.Equal(t, i, list.Position, "positions must be dense zero-based")
		titles[i] = list.Title
	}
	return titles
}

// taskPositions is listPositions for a list's tasks.
func (env *serviceEnv) taskPositions(t *testing.T, listID uuid.UUID) []string {
	t.Helper()
	tasks, err := env.tasks.ListByList(context.Background(), listID, "")
	require.NoError(t, err)
	titles := make([]string, len(tasks))
	for i, task := range tasks {
		require.Equal(t, i, task.Position, "positions must be dense zero-based")
		titles[i] = task.Title
	}
	return titles
}
