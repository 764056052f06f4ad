// Package ws provides the WebSocket transport: connection handling, room
// indexing, and event emission.
package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vibeweb/sockethub/internal/model"
)

// Client represents a single WebSocket client connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	sid    string
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// NewClient creates a client for the given connection and sid.
func NewClient(hub *Hub, conn *websocket.Conn, sid string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		sid:  sid,
		send: make(chan []byte, 256),
	}
}

// Sid returns the transport-assigned session identifier.
func (c *Client) Sid() string {
	return c.sid
}

// Conn returns the underlying WebSocket connection.
func (c *Client) Conn() *websocket.Conn {
	return c.conn
}

// SendChan returns the client's outbound queue for the write pump.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}

// Send queues data for delivery. A full buffer closes the client; a slow
// consumer must not stall fan-out to the rest.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return model.ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.closeLocked()
		return model.ErrClientClosed
	}
}

// Close closes the client's outbound queue.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// IsClosed returns true if the client is closed.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
