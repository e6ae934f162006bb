package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one live, authenticated websocket connection. Outbound
// messages flow through a buffered send channel drained by writePump; the
// channel never blocks a broadcaster — when the buffer is full the message
// is dropped and the client is expected to resynchronize.
type Client struct {
	UserID uuid.UUID
	Email  string
	Name   string

	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
	logger       *slog.Logger
}

// newClient wraps an upgraded connection. conn may be nil in tests that
// only exercise registry and fan-out behavior.
func newClient(conn *websocket.Conn, claims clientIdentity, bufferSize int, writeTimeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		UserID:       claims.UserID,
		Email:        claims.Email,
		Name:         claims.Name,
		conn:         conn,
		send:         make(chan []byte, bufferSize),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// clientIdentity is the authenticated identity bound to a connection.
type clientIdentity struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// enqueue hands a serialized message to the client's writer without
// blocking. Returns false when the message was dropped because the buffer
// is full or the client is closed.
func (c *Client) enqueue(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// close marks the client finished and closes the underlying connection.
// Safe to call multiple times and from multiple goroutines.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// writePump drains the send channel onto the wire. It exits when the
// client is closed or a write fails; transport errors just end the
// connection, the registry cleanup happens in the gateway's read loop.
func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			if c.conn == nil {
				continue
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				c.close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed, closing client",
					"user_id", c.UserID,
					"error", err)
				c.close()
				return
			}
		}
	}
}
