package ws

import "encoding/json"

// Frame is the inbound JSON wire frame. Event names the protocol event; ID,
// when non-zero, requests a direct reply frame carrying the same ID; Room is
// used by room-scoped events; Data is the opaque payload.
type Frame struct {
	Event string          `json:"event"`
	ID    uint64          `json:"id,omitempty"`
	Room  string          `json:"room,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outFrame is the outbound frame shape for server-initiated events and
// replies.
type outFrame struct {
	Event string `json:"event"`
	ID    uint64 `json:"id,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// ackEvent is the event name used for direct replies.
const ackEvent = "ack"
