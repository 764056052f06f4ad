package model

import "time"

// SessionRecord is the persisted session marker for a connection. The
// transport contract only requires a boolean "connected" flag; the rest is
// bookkeeping that makes the record useful when inspecting the store.
type SessionRecord struct {
	Sid            string     `json:"sid"`
	Connected      bool       `json:"connected"`
	ClientIP       string     `json:"client_ip"`
	ConnectedAt    time.Time  `json:"connected_at"`
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`
}
