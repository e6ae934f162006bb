package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks, per board, the set of live connections subscribed to
// that board's events. All membership state lives behind one mutex so the
// per-board sets and each connection's own joined set can never disagree.
//
// The registry is process-wide with lifecycle from start to shutdown.
// Nothing is persisted: reconnecting clients resynchronize with a full
// state fetch.
type Registry struct {
	mu     sync.Mutex
	rooms  map[uuid.UUID]map[*Client]struct{}
	joined map[*Client]map[uuid.UUID]struct{}
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[uuid.UUID]map[*Client]struct{}),
		joined: make(map[*Client]map[uuid.UUID]struct{}),
	}
}

// Join adds the client to the board's room. Idempotent if already present.
func (r *Registry) Join(boardID uuid.UUID, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[boardID]
	if !ok {
		room = make(map[*Client]struct{})
		r.rooms[boardID] = room
	}
	room[client] = struct{}{}

	boards, ok := r.joined[client]
	if !ok {
		boards = make(map[uuid.UUID]struct{})
		r.joined[client] = boards
	}
	boards[boardID] = struct{}{}
}

// Leave removes the client from the board's room. Empty rooms are pruned
// so inactive boards do not leak memory.
func (r *Registry) Leave(boardID uuid.UUID, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(boardID, client)
}

// LeaveAll removes the client from every room it had joined. Called
// unconditionally on disconnect or transport error.
func (r *Registry) LeaveAll(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for boardID := range r.joined[client] {
		r.leaveLocked(boardID, client)
	}
}

// leaveLocked removes one membership. Caller holds r.mu.
func (r *Registry) leaveLocked(boardID uuid.UUID, client *Client) {
	if room, ok := r.rooms[boardID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(r.rooms, boardID)
		}
	}
	if boards, ok := r.joined[client]; ok {
		delete(boards, boardID)
		if len(boards) == 0 {
			delete(r.joined, client)
		}
	}
}

// Members returns a snapshot of the board's room. The snapshot is safe to
// iterate while other goroutines mutate membership.
func (r *Registry) Members(boardID uuid.UUID) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[boardID]
	members := make([]*Client, 0, len(room))
	for client := range room {
		members = append(members, client)
	}
	return members
}

// Boards returns a snapshot of the boards the client has joined.
func (r *Registry) Boards(client *Client) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	boards := make([]uuid.UUID, 0, len(r.joined[client]))
	for boardID := range r.joined[client] {
		boards = append(boards, boardID)
	}
	return boards
}

// RoomCount returns the number of boards that currently have at least one
// subscriber.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
