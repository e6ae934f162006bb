package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/openkanban/board-api/internal/service/auth"
)

// CloseCodeUnauthorized is the application close code sent when a
// connection presents no credential or an invalid one. It is sent before
// any room membership is established.
const CloseCodeUnauthorized = 4001

// Inbound control message types.
const (
	messageJoinBoard  = "JOIN_BOARD"
	messageLeaveBoard = "LEAVE_BOARD"
	messagePing       = "PING"
)

// Outbound control message types.
const (
	messageJoinedBoard = "JOINED_BOARD"
	messageLeftBoard   = "LEFT_BOARD"
	messagePong        = "PONG"
)

// controlMessage is the shape of the three inbound control messages and
// their acknowledgments. Anything that does not parse into this shape, or
// carries an unknown type, is silently ignored.
type controlMessage struct {
	Type    string `json:"type"`
	BoardID string `json:"boardId,omitempty"`
}

// Gateway accepts websocket connections, authenticates them, and bridges
// their control messages to the room registry.
type Gateway struct {
	jwtService   auth.JWTService
	registry     *Registry
	logger       *slog.Logger
	upgrader     websocket.Upgrader
	sendBuffer   int
	writeTimeout time.Duration
}

// GatewayOptions tunes per-connection buffering and write deadlines.
type GatewayOptions struct {
	SendBufferSize  int
	WriteTimeoutSec int
}

// NewGateway creates a connection gateway bound to the given registry.
func NewGateway(jwtService auth.JWTService, registry *Registry, opts GatewayOptions, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	if opts.SendBufferSize <= 0 {
		opts.SendBufferSize = 32
	}
	if opts.WriteTimeoutSec <= 0 {
		opts.WriteTimeoutSec = 10
	}
	return &Gateway{
		jwtService: jwtService,
		registry:   registry,
		logger:     log.With(slog.String("component", "ws_gateway")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the app origin; cross-origin
			// policy is enforced by the credential, not the Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sendBuffer:   opts.SendBufferSize,
		writeTimeout: time.Duration(opts.WriteTimeoutSec) * time.Second,
	}
}

// ServeHTTP upgrades the request and runs the connection until it closes.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	token := extractToken(r)
	if token == "" {
		g.reject(conn, "unauthorized: missing token")
		return
	}

	claims, err := g.jwtService.ValidateToken(r.Context(), token)
	if err != nil {
		g.reject(conn, "unauthorized: invalid or expired token")
		return
	}

	client := newClient(conn, clientIdentity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	}, g.sendBuffer, g.writeTimeout, g.logger)

	g.logger.Info("websocket connected",
		"user_id", client.UserID,
		"email", client.Email)

	go client.writePump()
	g.readLoop(client)
}

// reject closes a not-yet-admitted connection with the unauthorized close
// code. No room membership exists at this point.
func (g *Gateway) reject(conn *websocket.Conn, reason string) {
	g.logger.Warn("websocket connection rejected", "reason", reason)
	deadline := time.Now().Add(g.writeTimeout)
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(CloseCodeUnauthorized, reason),
		deadline,
	)
	_ = conn.Close()
}

// readLoop consumes inbound messages until the connection drops, then
// removes the client from every room it joined.
func (g *Gateway) readLoop(client *Client) {
	defer func() {
		g.registry.LeaveAll(client)
		client.close()
		g.logger.Info("websocket disconnected", "user_id", client.UserID)
	}()

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		g.handleMessage(client, data)
	}
}

// handleMessage dispatches one inbound control message. Malformed JSON and
// unknown message types are dropped without surfacing an error to the
// client.
func (g *Gateway) handleMessage(client *Client, data []byte) {
	var msg controlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	switch msg.Type {
	case messageJoinBoard:
		boardID, err := uuid.Parse(msg.BoardID)
		if err != nil {
			return
		}
		g.registry.Join(boardID, client)
		g.logger.Debug("client joined board",
			"user_id", client.UserID,
			"board_id", boardID)
		g.sendControl(client, controlMessage{Type: messageJoinedBoard, BoardID: msg.BoardID})

	case messageLeaveBoard:
		boardID, err := uuid.Parse(msg.BoardID)
		if err != nil {
			return
		}
		g.registry.Leave(boardID, client)
		g.sendControl(client, controlMessage{Type: messageLeftBoard, BoardID: msg.BoardID})

	case messagePing:
		g.sendControl(client, controlMessage{Type: messagePong})
	}
}

// sendControl enqueues an acknowledgment on the client's writer.
func (g *Gateway) sendControl(client *Client, msg controlMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	client.enqueue(data)
}

// extractToken pulls the credential from the handshake: the token query
// parameter, the token cookie, or a bearer Authorization header.
func extractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
