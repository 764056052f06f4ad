// Package registry tracks live connections and their room memberships.
package registry

import (
	"sync"

	"github.com/vibeweb/sockethub/internal/model"
)

// Registry owns the set of live connections. All methods are safe for
// concurrent use; a single mutex guards every mutation so each operation is
// atomic with respect to the others.
//
// Snapshots (Get, All) return clones. Callers must never assume a returned
// Connection reflects later mutations.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*model.Connection
	order []string
	// rooms maps room name to member sids, kept in lockstep with each
	// connection's own room set. A room with no members is deleted.
	rooms map[string]map[string]struct{}
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		conns: make(map[string]*model.Connection),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Add creates the connection for sid with an empty room set and the current
// timestamp. Re-adding an existing sid overwrites the previous connection
// (last write wins) and drops its old room memberships; the sid keeps its
// original position in snapshot ordering.
func (r *Registry) Add(sid, clientIP string) *model.Connection {
	conn := model.NewConnection(sid, clientIP)

	r.mu.Lock()
	if old, ok := r.conns[sid]; ok {
		r.dropRoomsLocked(sid, old)
	} else {
		r.order = append(r.order, sid)
	}
	r.conns[sid] = conn
	r.mu.Unlock()

	return conn.Clone()
}

// Remove deletes the connection if present. No-op if absent.
func (r *Registry) Remove(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[sid]
	if !ok {
		return
	}
	r.dropRoomsLocked(sid, conn)
	delete(r.conns, sid)
	for i, s := range r.order {
		if s == sid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns a snapshot of the connection for sid.
func (r *Registry) Get(sid string) (*model.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[sid]
	if !ok {
		return nil, false
	}
	return conn.Clone(), true
}

// AddRoom inserts room into the connection's room set. Membership changes
// for unknown sids are silently dropped; the connection may have
// disconnected between request and processing.
func (r *Registry) AddRoom(sid, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[sid]
	if !ok {
		return
	}
	conn.Rooms[room] = struct{}{}
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[sid] = struct{}{}
}

// RemoveRoom removes room from the connection's room set if present.
func (r *Registry) RemoveRoom(sid, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[sid]
	if !ok {
		return
	}
	delete(conn.Rooms, room)
	r.dropMemberLocked(room, sid)
}

// Members returns the sids currently in room, in snapshot (insertion) order.
func (r *Registry) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	sids := make([]string, 0, len(members))
	for _, sid := range r.order {
		if _, in := members[sid]; in {
			sids = append(sids, sid)
		}
	}
	return sids
}

// All returns a snapshot of every connection in insertion order.
func (r *Registry) All() []*model.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*model.Connection, 0, len(r.order))
	for _, sid := range r.order {
		conns = append(conns, r.conns[sid].Clone())
	}
	return conns
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) dropRoomsLocked(sid string, conn *model.Connection) {
	for room := range conn.Rooms {
		r.dropMemberLocked(room, sid)
	}
}

func (r *Registry) dropMemberLocked(room, sid string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, sid)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}
