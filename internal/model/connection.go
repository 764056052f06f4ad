package model

import (
	"sort"
	"time"
)

// Connection represents a live client connection tracked by the registry.
// The sid is assigned by the transport at handshake time and is the only
// identity the rest of the system knows a client by.
type Connection struct {
	Sid         string
	ClientIP    string
	ConnectedAt time.Time
	Rooms       map[string]struct{}
}

// NewConnection creates a Connection with an empty room set and the current
// UTC timestamp.
func NewConnection(sid, clientIP string) *Connection {
	return &Connection{
		Sid:         sid,
		ClientIP:    clientIP,
		ConnectedAt: time.Now().UTC(),
		Rooms:       make(map[string]struct{}),
	}
}

// Clone returns a deep copy. Registry snapshots hand out clones so callers
// can never mutate registry-owned state through a returned Connection.
func (c *Connection) Clone() *Connection {
	rooms := make(map[string]struct{}, len(c.Rooms))
	for room := range c.Rooms {
		rooms[room] = struct{}{}
	}
	return &Connection{
		Sid:         c.Sid,
		ClientIP:    c.ClientIP,
		ConnectedAt: c.ConnectedAt,
		Rooms:       rooms,
	}
}

// RoomList returns the connection's rooms sorted by name.
func (c *Connection) RoomList() []string {
	rooms := make([]string, 0, len(c.Rooms))
	for room := range c.Rooms {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

// ConnectionView is the JSON projection of a Connection used by the snapshot
// API and the admin feed.
type ConnectionView struct {
	Sid         string   `json:"sid"`
	ClientIP    string   `json:"client_ip"`
	ConnectedAt string   `json:"connected_at"`
	Rooms       []string `json:"rooms"`
}

// View projects the connection for API responses.
func (c *Connection) View() ConnectionView {
	return ConnectionView{
		Sid:         c.Sid,
		ClientIP:    c.ClientIP,
		ConnectedAt: c.ConnectedAt.Format(time.RFC3339Nano),
		Rooms:       c.RoomList(),
	}
}
