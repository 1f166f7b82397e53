package stream

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Connection wraps a watcher's websocket with a buffered outbox.
type Connection struct {
	ws     *websocket.Conn
	log    *slog.Logger
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewConnection creates a new connection wrapper.
func NewConnection(ws *websocket.Conn, log *slog.Logger) *Connection {
	return &Connection{
		ws:   ws,
		log:  log,
		send: make(chan []byte, 256),
	}
}

// ReadPump reads until the watcher goes away; watchers have nothing to say,
// so anything they send is dropped.
func (c *Connection) ReadPump() {
	defer c.ws.Close()
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("watcher read failed", "remote", c.ws.RemoteAddr(), "err", err)
			}
			return
		}
	}
}

// WritePump drains the outbox to the websocket until the outbox is closed.
func (c *Connection) WritePump() {
	defer c.ws.Close()
	for message := range c.send {
		w, err := c.ws.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		if _, err := w.Write(message); err != nil {
			return
		}
		if err := w.Close(); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// SendMessage queues msg for the watcher; a watcher too slow to keep its
// outbox drained is disconnected.
func (c *Connection) SendMessage(msg interface{}) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	select {
	case c.send <- messageBytes:
	default:
		c.log.Warn("watcher too slow, dropping", "remote", c.ws.RemoteAddr())
		c.closed = true
		close(c.send)
	}
	return nil
}

// Close closes the outbox, letting WritePump finish.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
