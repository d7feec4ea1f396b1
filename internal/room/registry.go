// Package room tracks which live sessions are in which conversation. The
// registry is in-memory only and lives as long as the process.
package room

import "sync"

// Session is the send side of one connected client. Implementations must be
// safe to call from any goroutine.
type Session interface {
	ID() string
	Send(message []byte) error
}

// Registry maps conversation ids to the sessions currently joined to them.
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]Session
	sessions map[string]Session
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]map[string]Session),
		sessions: make(map[string]Session),
	}
}

// Register adds a newly connected session. Registration does not join any
// room; membership only comes from an explicit Join.
func (r *Registry) Register(s Session) {
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
}

// Unregister removes the session from every room and from the connected
// set. Safe to call for a session that was never registered.
func (r *Registry) Unregister(s Session) {
	r.mu.Lock()
	delete(r.sessions, s.ID())
	for conversationID, members := range r.rooms {
		delete(members, s.ID())
		if len(members) == 0 {
			delete(r.rooms, conversationID)
		}
	}
	r.mu.Unlock()
}

// Join adds the session to the room. Idempotent: joining twice is the same
// as joining once.
func (r *Registry) Join(s Session, conversationID string) {
	r.mu.Lock()
	members, ok := r.rooms[conversationID]
	if !ok {
		members = make(map[string]Session)
		r.rooms[conversationID] = members
	}
	members[s.ID()] = s
	r.mu.Unlock()
}

// Leave removes the session from the room. A no-op if the session is not a
// member.
func (r *Registry) Leave(s Session, conversationID string) {
	r.mu.Lock()
	if members, ok := r.rooms[conversationID]; ok {
		delete(members, s.ID())
		if len(members) == 0 {
			delete(r.rooms, conversationID)
		}
	}
	r.mu.Unlock()
}

// LeaveAll removes the session from every room it belongs to. A no-op for
// an unknown session.
func (r *Registry) LeaveAll(s Session) {
	r.mu.Lock()
	for conversationID, members := range r.rooms {
		delete(members, s.ID())
		if len(members) == 0 {
			delete(r.rooms, conversationID)
		}
	}
	r.mu.Unlock()
}

// MembersOf returns a snapshot of the room's current members. An unknown
// conversation is just an empty room.
func (r *Registry) MembersOf(conversationID string) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[conversationID]
	snapshot := make([]Session, 0, len(members))
	for _, s := range members {
		snapshot = append(snapshot, s)
	}
	return snapshot
}

// Sessions returns a snapshot of every connected session, joined or not
func (r *Registry) Sessions() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	return snapshot
}
