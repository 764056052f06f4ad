// Package dispatch implements the protocol state machine: it receives
// inbound client events, mutates the registry and traffic log, and produces
// outbound events (direct replies, room broadcasts, admin fan-out).
package dispatch

import (
	"context"
	"log"
	"net"
	"strings"
	"time"

	"github.com/vibeweb/sockethub/internal/model"
	"github.com/vibeweb/sockethub/internal/registry"
	"github.com/vibeweb/sockethub/internal/trafficlog"
)

// AdminRoom is the reserved room whose members receive a mirrored feed of
// all other protocol activity.
const AdminRoom = "admin"

// Reply is the direct response to an inbound event. At most one reply is
// produced per event.
type Reply struct {
	Status      string                 `json:"status"`
	Sid         string                 `json:"sid,omitempty"`
	Room        string                 `json:"room,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Connections []model.ConnectionView `json:"connections,omitempty"`
	Total       *int                   `json:"total,omitempty"`
}

// ConnectionUpdate is the admin notification for connection churn.
type ConnectionUpdate struct {
	Type       string               `json:"type"`
	Connection model.ConnectionView `json:"connection"`
	Total      int                  `json:"total"`
}

// Activity is the admin notification mirroring logged traffic. Timestamp is
// the exact timestamp recorded in the corresponding traffic log entry.
type Activity struct {
	Event     string `json:"event"`
	From      string `json:"from,omitempty"`
	Room      string `json:"room,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Relay is the payload re-emitted to other clients for message and
// broadcast events.
type Relay struct {
	From string `json:"from"`
	Data any    `json:"data"`
}

// RoomRelay is the payload re-emitted to room members for room_message.
type RoomRelay struct {
	From    string `json:"from"`
	Room    string `json:"room"`
	Message any    `json:"message"`
}

// RoomChange is the payload emitted to room members on join and leave.
type RoomChange struct {
	Room string `json:"room"`
	Sid  string `json:"sid"`
}

// ConnectInfo carries the transport environment for a connect event.
type ConnectInfo struct {
	// RemoteAddr is the peer address, host:port or bare host.
	RemoteAddr string
	// ForwardedFor is the raw X-Forwarded-For header value, if any.
	ForwardedFor string
	// Auth is an optional opaque auth payload. No rejection policy exists;
	// it is logged and otherwise ignored.
	Auth any
}

// Dispatcher wires the registry, traffic log, transport, and session store
// together. It holds no state of its own; every handler is a pure function
// of its inputs over those collaborators.
type Dispatcher struct {
	registry *registry.Registry
	traffic  *trafficlog.Log
	trans    Transport
	sessions SessionStore
}

// New creates a Dispatcher over explicitly owned collaborators.
func New(reg *registry.Registry, traffic *trafficlog.Log, trans Transport, sessions SessionStore) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		traffic:  traffic,
		trans:    trans,
		sessions: sessions,
	}
}

// Connect handles a transport-level connect notification. It derives the
// client IP, records the connection, persists the session marker, and
// notifies admin observers. The returned accept flag is always true; this
// design has no rejection policy.
func (d *Dispatcher) Connect(ctx context.Context, sid string, info ConnectInfo) bool {
	log.Printf("Client connecting: %s", sid)
	if info.Auth != nil {
		log.Printf("Auth data for %s: %v", sid, info.Auth)
	}

	ip := ClientIP(info.ForwardedFor, info.RemoteAddr)
	conn := d.registry.Add(sid, ip)

	if err := d.sessions.SaveSession(ctx, sid, ip, conn.ConnectedAt); err != nil {
		log.Printf("Failed to save session for %s: %v", sid, err)
	}
	log.Printf("Client connected: %s (%s)", sid, ip)

	d.trans.EmitRoom(AdminRoom, "admin:connection_update", ConnectionUpdate{
		Type:       "connect",
		Connection: conn.View(),
		Total:      d.registry.Count(),
	}, "")

	return true
}

// Disconnect handles a transport-level disconnect notification. Removal is
// terminal: the registry no longer holds the sid, so later events for it
// become no-ops.
func (d *Dispatcher) Disconnect(ctx context.Context, sid string) {
	log.Printf("Client disconnecting: %s", sid)
	if rec, err := d.sessions.GetSession(ctx, sid); err == nil {
		log.Printf("Session data for %s: connected=%v", sid, rec.Connected)
	}

	if conn, ok := d.registry.Get(sid); ok {
		d.trans.EmitRoom(AdminRoom, "admin:connection_update", ConnectionUpdate{
			Type:       "disconnect",
			Connection: conn.View(),
			Total:      d.registry.Count() - 1,
		}, "")
	}

	if err := d.sessions.MarkDisconnected(ctx, sid); err != nil {
		log.Printf("Failed to mark session disconnected for %s: %v", sid, err)
	}
	d.registry.Remove(sid)
	log.Printf("Client disconnected: %s", sid)
}

// Message relays a point-to-point payload to every connection except the
// sender.
func (d *Dispatcher) Message(sid string, data any) Reply {
	log.Printf("Message from %s", sid)
	entry := d.traffic.Log("message", sid, "", data)
	d.trans.EmitAll("message", Relay{From: sid, Data: data}, sid)
	d.notifyAdmins(entry)
	return Reply{Status: "received", Sid: sid}
}

// JoinRoom adds the connection to a room and notifies its members.
func (d *Dispatcher) JoinRoom(sid, room string) Reply {
	log.Printf("Client %s joining room: %s", sid, room)
	d.trans.EnterRoom(sid, room)
	d.registry.AddRoom(sid, room)
	entry := d.traffic.Log("join_room", sid, room, nil)
	d.trans.EmitRoom(room, "room_joined", RoomChange{Room: room, Sid: sid}, "")
	d.notifyAdmins(entry)
	return Reply{Status: "joined", Room: room}
}

// LeaveRoom removes the connection from a room and notifies the remaining
// members.
func (d *Dispatcher) LeaveRoom(sid, room string) Reply {
	log.Printf("Client %s leaving room: %s", sid, room)
	d.trans.LeaveRoom(sid, room)
	d.registry.RemoveRoom(sid, room)
	entry := d.traffic.Log("leave_room", sid, room, nil)
	d.trans.EmitRoom(room, "room_left", RoomChange{Room: room, Sid: sid}, "")
	d.notifyAdmins(entry)
	return Reply{Status: "left", Room: room}
}

// RoomMessage relays a payload to all members of a room except the sender.
// Both room and message must be present; an empty-string message is valid,
// absence or null is not. Validation failure produces an error reply with no
// log entry and no broadcast.
func (d *Dispatcher) RoomMessage(sid string, data map[string]any) Reply {
	room, _ := data["room"].(string)
	message, present := data["message"]
	if room == "" || !present || message == nil {
		return Reply{Status: "error", Message: "Missing room or message"}
	}

	log.Printf("Room message from %s to %s", sid, room)
	entry := d.traffic.Log("room_message", sid, room, message)
	d.trans.EmitRoom(room, "room_message", RoomRelay{From: sid, Room: room, Message: message}, sid)
	d.notifyAdmins(entry)
	return Reply{Status: "sent", Room: room}
}

// Broadcast relays a payload to every connection except the sender.
func (d *Dispatcher) Broadcast(sid string, data any) Reply {
	log.Printf("Broadcast from %s", sid)
	entry := d.traffic.Log("broadcast", sid, "", data)
	d.trans.EmitAll("broadcast", Relay{From: sid, Data: data}, sid)
	d.notifyAdmins(entry)
	return Reply{Status: "broadcasted"}
}

// Ping replies with a pong. No state is touched and no admin notification
// is produced.
func (d *Dispatcher) Ping(sid string) Reply {
	return Reply{Status: "pong", Sid: sid}
}

// AdminSubscribe joins the caller to the admin room and returns the current
// connections snapshot.
func (d *Dispatcher) AdminSubscribe(sid string) Reply {
	log.Printf("Admin client subscribing: %s", sid)
	d.trans.EnterRoom(sid, AdminRoom)
	d.registry.AddRoom(sid, AdminRoom)
	total := d.registry.Count()
	return Reply{
		Status:      "subscribed",
		Connections: d.connectionViews(),
		Total:       &total,
	}
}

// AdminConnections returns the current connections snapshot without
// subscribing.
func (d *Dispatcher) AdminConnections(sid string) Reply {
	total := d.registry.Count()
	return Reply{
		Status:      "ok",
		Connections: d.connectionViews(),
		Total:       &total,
	}
}

// notifyAdmins mirrors a logged event to the admin room. Activity already
// addressed to the admin room is suppressed so admin-internal traffic is
// never echoed back, and the notification itself is never logged.
func (d *Dispatcher) notifyAdmins(entry *model.LogEntry) {
	if entry.ToRoom == AdminRoom {
		return
	}
	d.trans.EmitRoom(AdminRoom, "admin:activity", Activity{
		Event:     entry.Event,
		From:      entry.FromSid,
		Room:      entry.ToRoom,
		Data:      entry.Data,
		Timestamp: entry.Timestamp.Format(time.RFC3339Nano),
	}, "")
}

func (d *Dispatcher) connectionViews() []model.ConnectionView {
	conns := d.registry.All()
	views := make([]model.ConnectionView, 0, len(conns))
	for _, conn := range conns {
		views = append(views, conn.View())
	}
	return views
}

// ClientIP derives the best-effort client address: the first comma-separated
// token of the forwarded-for header, else the peer address with any port
// stripped, else empty.
func ClientIP(forwardedFor, remoteAddr string) string {
	if forwardedFor != "" {
		first := forwardedFor
		if i := strings.Index(first, ","); i >= 0 {
			first = first[:i]
		}
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if remoteAddr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
