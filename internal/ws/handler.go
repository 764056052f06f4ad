package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vibeweb/sockethub/internal/dispatch"
)

const (
	// Time allowed to write a message to the peer.
	defaultWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	defaultPongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	defaultMaxMessageSize = 1 << 20
)

// EventHandler receives the decoded inbound protocol events. The dispatcher
// implements it; tests substitute a recorder.
type EventHandler interface {
	Connect(ctx context.Context, sid string, info dispatch.ConnectInfo) bool
	Disconnect(ctx context.Context, sid string)
	Message(sid string, data any) dispatch.Reply
	JoinRoom(sid, room string) dispatch.Reply
	LeaveRoom(sid, room string) dispatch.Reply
	RoomMessage(sid string, data map[string]any) dispatch.Reply
	Broadcast(sid string, data any) dispatch.Reply
	Ping(sid string) dispatch.Reply
	AdminSubscribe(sid string) dispatch.Reply
	AdminConnections(sid string) dispatch.Reply
}

// Config tunes transport behavior. Zero values fall back to defaults.
type Config struct {
	// PongWait bounds how long the peer may stay silent before the
	// connection is considered dead.
	PongWait time.Duration

	// PingInterval is the heartbeat period. Must be less than PongWait;
	// defaults to 9/10 of it.
	PingInterval time.Duration

	// WriteWait bounds a single write to the peer.
	WriteWait time.Duration

	// MaxMessageSize is the maximum inbound frame size in bytes.
	MaxMessageSize int64

	// CheckOrigin validates the upgrade request origin. Nil allows all.
	CheckOrigin func(r *http.Request) bool
}

func (c Config) withDefaults() Config {
	if c.PongWait <= 0 {
		c.PongWait = defaultPongWait
	}
	if c.PingInterval <= 0 {
		c.PingInterval = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	return c
}

// Handler upgrades HTTP requests to WebSocket connections and routes inbound
// frames to the event handler.
type Handler struct {
	hub      *Hub
	events   EventHandler
	cfg      Config
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler over the hub and event sink.
func NewHandler(hub *Hub, events EventHandler, cfg Config) *Handler {
	cfg = cfg.withDefaults()
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		hub:    hub,
		events: events,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// HandleConnection upgrades the request, assigns a sid, registers the client
// and delivers the connect event, then starts the read and write pumps.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sid := uuid.NewString()
	client := NewClient(h.hub, conn, sid)
	h.hub.Register(client)

	accepted := h.events.Connect(r.Context(), sid, dispatch.ConnectInfo{
		RemoteAddr:   r.RemoteAddr,
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
	})
	if !accepted {
		h.hub.Unregister(sid)
		return conn.Close()
	}

	go h.writePump(client)
	go h.readPump(client)

	return nil
}

// readPump pumps frames from the connection to the event handler. Exit is
// the single place a disconnect event originates, so a connection transitions
// to disconnected exactly once.
func (h *Handler) readPump(client *Client) {
	defer func() {
		h.events.Disconnect(context.Background(), client.sid)
		h.hub.Unregister(client.sid)
		client.Conn().Close()
	}()

	conn := client.Conn()
	conn.SetReadLimit(h.cfg.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", client.sid, err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			log.Printf("Failed to unmarshal frame from %s: %v", client.sid, err)
			continue
		}

		h.handleFrame(client, &frame)
	}
}

// handleFrame routes one inbound frame. A frame carrying an ID gets the
// handler's reply echoed back as an ack; without an ID the reply is dropped.
func (h *Handler) handleFrame(client *Client, frame *Frame) {
	sid := client.sid

	var reply dispatch.Reply
	switch frame.Event {
	case "message":
		reply = h.events.Message(sid, decodeData(frame.Data))
	case "join_room":
		reply = h.events.JoinRoom(sid, frame.Room)
	case "leave_room":
		reply = h.events.LeaveRoom(sid, frame.Room)
	case "room_message":
		data, _ := decodeData(frame.Data).(map[string]any)
		reply = h.events.RoomMessage(sid, data)
	case "broadcast":
		reply = h.events.Broadcast(sid, decodeData(frame.Data))
	case "ping":
		reply = h.events.Ping(sid)
	case "admin_subscribe":
		reply = h.events.AdminSubscribe(sid)
	case "admin_get_connections":
		reply = h.events.AdminConnections(sid)
	default:
		log.Printf("Unknown event %q from %s", frame.Event, sid)
		return
	}

	if frame.ID == 0 {
		return
	}
	ack, err := json.Marshal(outFrame{Event: ackEvent, ID: frame.ID, Data: reply})
	if err != nil {
		log.Printf("Failed to marshal ack for %s: %v", sid, err)
		return
	}
	if err := client.Send(ack); err != nil {
		log.Printf("Failed to send ack to %s: %v", sid, err)
	}
}

// writePump pumps queued messages to the connection and keeps the heartbeat
// going.
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		client.Conn().Close()
	}()

	conn := client.Conn()
	for {
		select {
		case message, ok := <-client.SendChan():
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// decodeData decodes an opaque frame payload. Malformed payloads decode to
// nil, which downstream validation treats as absent.
func decodeData(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}
