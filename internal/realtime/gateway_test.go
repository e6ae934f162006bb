package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkanban/board-api/internal/config"
	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/service/auth"
)

type gatewayFixture struct {
	server     *httptest.Server
	registry   *Registry
	hub        *Hub
	jwtService auth.JWTService
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-that-is-long-enough-for-hmac",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	registry := NewRegistry()
	gateway := NewGateway(jwtService, registry, GatewayOptions{
		SendBufferSize:  8,
		WriteTimeoutSec: 5,
	}, slog.Default())

	server := httptest.NewServer(gateway)
	t.Cleanup(server.Close)

	return &gatewayFixture{
		server:     server,
		registry:   registry,
		hub:        NewHub(registry, slog.Default()),
		jwtService: jwtService,
	}
}

func (f *gatewayFixture) wsURL() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http")
}

func (f *gatewayFixture) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := f.jwtService.GenerateToken(context.Background(), userID, "user@example.com", "Test User")
	require.NoError(t, err)
	return token
}

func (f *gatewayFixture) dial(t *testing.T, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL()+"?token="+f.token(t, userID), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readControl(t *testing.T, conn *websocket.Conn) controlMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg controlMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func expectUnauthorizedClose(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected close error, got %v", err)
	assert.Equal(t, CloseCodeUnauthorized, closeErr.Code)
}

func TestGatewayRejectsMissingToken(t *testing.T) {
	fixture := newGatewayFixture(t)

	conn, _, err := websocket.DefaultDialer.Dial(fixture.wsURL(), nil)
	require.NoError(t, err)
	defer conn.Close()

	expectUnauthorizedClose(t, conn)
	assert.Equal(t, 0, fixture.registry.RoomCount())
}

func TestGatewayRejectsInvalidToken(t *testing.T) {
	fixture := newGatewayFixture(t)

	conn, _, err := websocket.DefaultDialer.Dial(fixture.wsURL()+"?token=not-a-jwt", nil)
	require.NoError(t, err)
	defer conn.Close()

	expectUnauthorizedClose(t, conn)
}

func TestGatewayAcceptsBearerHeader(t *testing.T) {
	fixture := newGatewayFixture(t)
	token := fixture.token(t, uuid.New())

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(fixture.wsURL(), header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(controlMessage{Type: messagePing}))
	assert.Equal(t, messagePong, readControl(t, conn).Type)
}

func TestGatewayJoinLeaveAndPing(t *testing.T) {
	fixture := newGatewayFixture(t)
	boardID := uuid.New()

	conn := fixture.dial(t, uuid.New())

	require.NoError(t, conn.WriteJSON(controlMessage{Type: messageJoinBoard, BoardID: boardID.String()}))
	ack := readControl(t, conn)
	assert.Equal(t, messageJoinedBoard, ack.Type)
	assert.Equal(t, boardID.String(), ack.BoardID)
	require.Eventually(t, func() bool {
		return len(fixture.registry.Members(boardID)) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(controlMessage{Type: messagePing}))
	assert.Equal(t, messagePong, readControl(t, conn).Type)

	require.NoError(t, conn.WriteJSON(controlMessage{Type: messageLeaveBoard, BoardID: boardID.String()}))
	ack = readControl(t, conn)
	assert.Equal(t, messageLeftBoard, ack.Type)
	require.Eventually(t, func() bool {
		return fixture.registry.RoomCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestGatewayDeliversBroadcastsToJoinedBoard(t *testing.T) {
	fixture := newGatewayFixture(t)
	boardID := uuid.New()
	actorID := uuid.New()

	conn := fixture.dial(t, uuid.New())
	require.NoError(t, conn.WriteJSON(controlMessage{Type: messageJoinBoard, BoardID: boardID.String()}))
	assert.Equal(t, messageJoinedBoard, readControl(t, conn).Type)

	fixture.hub.Broadcast(context.Background(), domain.NewEvent(
		domain.EventListReordered, boardID, actorID, domain.ListReorderedPayload{
			ID:       uuid.New(),
			Position: 2,
		}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event domain.Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, domain.EventListReordered, event.Type)
	assert.Equal(t, boardID, event.BoardID)
	assert.Equal(t, actorID, event.ActorID)
}

func TestGatewayIgnoresMalformedMessages(t *testing.T) {
	fixture := newGatewayFixture(t)

	conn := fixture.dial(t, uuid.New())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteJSON(controlMessage{Type: "SHOUT"}))
	require.NoError(t, conn.WriteJSON(controlMessage{Type: messageJoinBoard, BoardID: "not-a-uuid"}))

	// The connection survives and still answers pings.
	require.NoError(t, conn.WriteJSON(controlMessage{Type: messagePing}))
	assert.Equal(t, messagePong, readControl(t, conn).Type)
	assert.Equal(t, 0, fixture.registry.RoomCount())
}

func TestGatewayLeavesAllRoomsOnDisconnect(t *testing.T) {
	fixture := newGatewayFixture(t)
	boardA := uuid.New()
	boardB := uuid.New()

	conn := fixture.dial(t, uuid.New())
	require.NoError(t, conn.WriteJSON(controlMessage{Type: messageJoinBoard, BoardID: boardA.String()}))
	readControl(t, conn)
	require.NoError(t, conn.WriteJSON(controlMessage{Type: messageJoinBoard, BoardID: boardB.String()}))
	readControl(t, conn)
	require.Eventually(t, func() bool {
		return fixture.registry.RoomCount() == 2
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return fixture.registry.RoomCount() == 0
	}, time.Second, 10*time.Millisecond)
}
