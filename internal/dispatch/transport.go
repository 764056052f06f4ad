package dispatch

import (
	"context"
	"time"

	"github.com/vibeweb/sockethub/internal/model"
)

// Transport is the wire-layer collaborator the dispatcher drives. The
// websocket hub implements it; tests substitute a fake. Emits are
// best-effort: a recipient that vanished mid-fan-out is the transport's
// problem to report, never the dispatcher's to retry.
type Transport interface {
	// EnterRoom adds sid to the transport's own room index.
	EnterRoom(sid, room string)

	// LeaveRoom removes sid from the transport's room index.
	LeaveRoom(sid, room string)

	// EmitTo sends an event to a single connection.
	EmitTo(sid, event string, data any) error

	// EmitRoom sends an event to every member of room, excluding exceptSid
	// when non-empty.
	EmitRoom(room, event string, data any, exceptSid string)

	// EmitAll sends an event to every connection, excluding exceptSid when
	// non-empty.
	EmitAll(event string, data any, exceptSid string)
}

// SessionStore persists the minimal per-connection session marker required
// by the transport contract.
type SessionStore interface {
	SaveSession(ctx context.Context, sid, clientIP string, connectedAt time.Time) error
	MarkDisconnected(ctx context.Context, sid string) error
	GetSession(ctx context.Context, sid string) (*model.SessionRecord, error)
}
