// Package trafficlog provides the bounded, append-only history of observed
// protocol events used for diagnostics.
package trafficlog

import (
	"sync"

	"github.com/vibeweb/sockethub/internal/model"
)

// DefaultCapacity is used when no explicit capacity is configured.
const DefaultCapacity = 500

// Log is a thread-safe fixed-capacity FIFO of log entries. Once full, each
// append evicts exactly the oldest entry. Entries are immutable; All returns
// a copied slice so callers never observe later appends.
type Log struct {
	mu       sync.RWMutex
	entries  []*model.LogEntry
	capacity int
}

// New creates a Log with the given capacity. A capacity of zero or less
// falls back to DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries:  make([]*model.LogEntry, 0, capacity),
		capacity: capacity,
	}
}

// Log appends a new entry stamped with the current time, evicting the oldest
// entry first if at capacity. The created entry is returned so callers can
// reuse its timestamp in a paired outbound broadcast instead of taking a
// second clock reading.
func (l *Log) Log(event, fromSid, toRoom string, data any) *model.LogEntry {
	entry := model.NewLogEntry(event, fromSid, toRoom, data)

	l.mu.Lock()
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries[len(l.entries)-1] = entry
	} else {
		l.entries = append(l.entries, entry)
	}
	l.mu.Unlock()

	return entry
}

// All returns a copy of the entries, oldest first.
func (l *Log) All() []*model.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*model.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the log. Only operator actions call this; the protocol
// itself never does.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Count returns the number of retained entries.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Cap returns the configured capacity.
func (l *Log) Cap() int {
	return l.capacity
}
