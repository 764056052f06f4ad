package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vibeweb/sockethub/internal/model"
)

// Hub manages all WebSocket client connections and the transport-level room
// index. It implements the dispatcher's Transport contract: room primitives,
// targeted emits, and forced disconnects.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.sid] = client
	total := len(h.clients)
	h.mu.Unlock()
	log.Printf("Client registered: %s. Total clients: %d", client.sid, total)
}

// Unregister removes a client from the hub and from every room it is in,
// closing its outbound queue.
func (h *Hub) Unregister(sid string) {
	h.mu.Lock()
	client, ok := h.clients[sid]
	if ok {
		delete(h.clients, sid)
		for room, members := range h.rooms {
			delete(members, sid)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		client.Close()
		log.Printf("Client unregistered: %s. Total clients: %d", sid, total)
	}
}

// Get returns the client for sid, or nil.
func (h *Hub) Get(sid string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[sid]
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// EnterRoom adds sid to a room. Unknown sids are ignored.
func (h *Hub) EnterRoom(sid, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[sid]
	if !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[sid] = client
}

// LeaveRoom removes sid from a room. Empty rooms are deleted.
func (h *Hub) LeaveRoom(sid, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, sid)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// EmitTo sends an event to a single client.
func (h *Hub) EmitTo(sid, event string, data any) error {
	client := h.Get(sid)
	if client == nil {
		return fmt.Errorf("emit %q to %s: %w", event, sid, model.ErrClientNotFound)
	}
	payload, err := marshalFrame(event, data)
	if err != nil {
		return err
	}
	return client.Send(payload)
}

// EmitRoom sends an event to every member of room, excluding exceptSid when
// non-empty. Delivery is best-effort: a failed recipient never aborts the
// rest, and failures are reported in aggregate via the log.
func (h *Hub) EmitRoom(room, event string, data any, exceptSid string) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for sid, client := range h.rooms[room] {
		if sid == exceptSid {
			continue
		}
		members = append(members, client)
	}
	h.mu.RUnlock()

	h.emitClients(members, event, data)
}

// EmitAll sends an event to every client, excluding exceptSid when
// non-empty.
func (h *Hub) EmitAll(event string, data any, exceptSid string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for sid, client := range h.clients {
		if sid == exceptSid {
			continue
		}
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.emitClients(clients, event, data)
}

func (h *Hub) emitClients(clients []*Client, event string, data any) {
	if len(clients) == 0 {
		return
	}
	payload, err := marshalFrame(event, data)
	if err != nil {
		log.Printf("Failed to marshal %q event: %v", event, err)
		return
	}

	failed := 0
	for _, client := range clients {
		if err := client.Send(payload); err != nil {
			failed++
		}
	}
	if failed > 0 {
		log.Printf("Event %q undeliverable to %d of %d clients", event, failed, len(clients))
	}
}

// ForceDisconnect asks the transport to terminate the client's session. The
// registry is not touched here; removal happens through the normal
// disconnect path once the connection tears down.
func (h *Hub) ForceDisconnect(sid string) error {
	client := h.Get(sid)
	if client == nil {
		return fmt.Errorf("force disconnect %s: %w", sid, model.ErrClientNotFound)
	}

	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "disconnected by server")
	if err := client.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		log.Printf("Failed to send close frame to %s: %v", sid, err)
	}
	return client.conn.Close()
}

// Close tears down every client connection.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[string]*Client)
	h.rooms = make(map[string]map[string]*Client)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

func marshalFrame(event string, data any) ([]byte, error) {
	return json.Marshal(outFrame{Event: event, Data: data})
}
