package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	sendBuffer = 64
)

// ErrConnectionClosed is returned when sending on a closed or saturated connection
var ErrConnectionClosed = errors.New("connection closed")

// Connection represents one WebSocket viewer
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	sendMu    sync.Mutex
	closed    bool
	version   uint64
	handle    func(*Connection, *Message)
}

// NewConnection wraps an upgraded WebSocket. handle is called for every
// message read from the peer.
func NewConnection(conn *websocket.Conn, logger *log.Logger, handle func(*Connection, *Message)) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, sendBuffer),
		logger: logger.WithPrefix("conn").With("remote", conn.RemoteAddr().String()),
		ctx:    ctx,
		cancel: cancel,
		handle: handle,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection shuts down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.sendMu.Lock()
		c.closed = true
		close(c.send)
		c.sendMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the peer. A peer that cannot keep up is
// disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	c.sendMu.Lock()
	return c.enqueueLocked(msg)
}

// SendVersioned queues a message unless a newer version was already queued,
// so the peer sees versions in order. Resending the current version is allowed.
func (c *Connection) SendVersioned(version uint64, msg *Message) error {
	c.sendMu.Lock()
	if version < c.version {
		c.sendMu.Unlock()
		return nil
	}
	c.version = version
	return c.enqueueLocked(msg)
}

// enqueueLocked is called with sendMu held and releases it
func (c *Connection) enqueueLocked(msg *Message) error {
	if c.closed {
		c.sendMu.Unlock()
		return ErrConnectionClosed
	}

	select {
	case c.send <- msg:
		c.sendMu.Unlock()
		return nil
	default:
		c.sendMu.Unlock()
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) sendError(code, message string) {
	msg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		return
	}
	_ = c.SendMessage(msg)
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)
		c.handle(c, &msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
