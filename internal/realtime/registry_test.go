package realtime

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	return newClient(nil, clientIdentity{
		UserID: uuid.New(),
		Email:  "user@example.com",
		Name:   "Test User",
	}, 8, time.Second, slog.Default())
}

func TestRegistryJoinAndMembers(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	boardID := uuid.New()
	client := testClient(t)

	registry.Join(boardID, client)

	members := registry.Members(boardID)
	assert.Len(t, members, 1)
	assert.Same(t, client, members[0])
	assert.Equal(t, []uuid.UUID{boardID}, registry.Boards(client))
}

func TestRegistryJoinIsIdempotent(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	boardID := uuid.New()
	client := testClient(t)

	registry.Join(boardID, client)
	registry.Join(boardID, client)

	assert.Len(t, registry.Members(boardID), 1)
	assert.Len(t, registry.Boards(client), 1)
}

func TestRegistryLeavePrunesEmptyRooms(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	boardID := uuid.New()
	first := testClient(t)
	second := testClient(t)

	registry.Join(boardID, first)
	registry.Join(boardID, second)
	assert.Equal(t, 1, registry.RoomCount())

	registry.Leave(boardID, first)
	assert.Len(t, registry.Members(boardID), 1)
	assert.Equal(t, 1, registry.RoomCount())

	registry.Leave(boardID, second)
	assert.Empty(t, registry.Members(boardID))
	assert.Equal(t, 0, registry.RoomCount())
}

func TestRegistryLeaveUnknownBoardIsNoop(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	client := testClient(t)

	registry.Leave(uuid.New(), client)

	assert.Equal(t, 0, registry.RoomCount())
	assert.Empty(t, registry.Boards(client))
}

func TestRegistryLeaveAllClearsEveryMembership(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	boardA := uuid.New()
	boardB := uuid.New()
	leaver := testClient(t)
	stayer := testClient(t)

	registry.Join(boardA, leaver)
	registry.Join(boardB, leaver)
	registry.Join(boardA, stayer)

	registry.LeaveAll(leaver)

	assert.Empty(t, registry.Boards(leaver))
	assert.Len(t, registry.Members(boardA), 1)
	assert.Same(t, stayer, registry.Members(boardA)[0])
	assert.Empty(t, registry.Members(boardB))
	assert.Equal(t, 1, registry.RoomCount())
}

func TestRegistryRoomsAreIsolated(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	boardA := uuid.New()
	boardB := uuid.New()
	inA := testClient(t)
	inB := testClient(t)

	registry.Join(boardA, inA)
	registry.Join(boardB, inB)

	assert.Len(t, registry.Members(boardA), 1)
	assert.Same(t, inA, registry.Members(boardA)[0])
	assert.Len(t, registry.Members(boardB), 1)
	assert.Same(t, inB, registry.Members(boardB)[0])
}
