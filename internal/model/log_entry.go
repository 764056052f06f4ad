package model

import "time"

// LogEntry is a single observed protocol event in the traffic log.
// Entries are immutable once created; the traffic log hands out the same
// pointers it stores and callers must treat them as read-only.
type LogEntry struct {
	Event     string
	FromSid   string
	ToRoom    string
	Data      any
	Timestamp time.Time
}

// NewLogEntry creates an entry stamped with the current UTC time.
func NewLogEntry(event, fromSid, toRoom string, data any) *LogEntry {
	return &LogEntry{
		Event:     event,
		FromSid:   fromSid,
		ToRoom:    toRoom,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// LogEntryView is the JSON projection of a LogEntry for the snapshot API.
type LogEntryView struct {
	Event     string `json:"event"`
	From      string `json:"from,omitempty"`
	Room      string `json:"room,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// View projects the entry for API responses.
func (e *LogEntry) View() LogEntryView {
	return LogEntryView{
		Event:     e.Event,
		From:      e.FromSid,
		Room:      e.ToRoom,
		Data:      e.Data,
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
	}
}
