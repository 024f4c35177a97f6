package ws

import (
	"sync"
)

// Registry is the live mapping from user id to active session, plus the
// per-group channel subscriptions. It is the only mutable state shared
// across connection handlers; every operation takes the single mutex, so
// register/unregister/lookup are atomic with respect to each other.
type Registry struct {
	mu       sync.RWMutex
	byUser   map[int64]Session
	owner    map[string]int64             // session id -> user id
	channels map[int64]map[string]Session // group id -> session id -> session
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:   make(map[int64]Session),
		owner:    make(map[string]int64),
		channels: make(map[int64]map[string]Session),
	}
}

// Register binds a user to a session, replacing any existing binding. A
// superseded session is closed so its read loop ends promptly; the
// protocol itself treats it as implicitly stale either way.
func (r *Registry) Register(userID int64, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[userID]; ok && old.ID() != s.ID() {
		delete(r.owner, old.ID())
		_ = old.Close()
	}
	r.byUser[userID] = s
	r.owner[s.ID()] = userID
}

// Unregister clears the binding owned by this exact session and removes it
// from every group channel. Returns the affected user id, or false if the
// session never registered (disconnect before joinroom) or was already
// superseded by a newer connection.
func (r *Registry) Unregister(s Session) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, members := range r.channels {
		delete(members, s.ID())
	}

	userID, ok := r.owner[s.ID()]
	if !ok {
		return 0, false
	}
	delete(r.owner, s.ID())
	delete(r.byUser, userID)
	return userID, true
}

// Lookup returns the live session for a user. A miss is a normal result
// meaning the user is offline.
func (r *Registry) Lookup(userID int64) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byUser[userID]
	return s, ok
}

// LookupMany returns the live sessions for the given users, omitting
// offline ones.
func (r *Registry) LookupMany(userIDs []int64) map[int64]Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make(map[int64]Session, len(userIDs))
	for _, id := range userIDs {
		if s, ok := r.byUser[id]; ok {
			res[id] = s
		}
	}
	return res
}

// Subscribe adds the session to a group's logical channel. Joining is an
// explicit client action; members are not auto-subscribed on fan-out.
func (r *Registry) Subscribe(groupID int64, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channels[groupID] == nil {
		r.channels[groupID] = make(map[string]Session)
	}
	r.channels[groupID][s.ID()] = s
}

// Channel returns the sessions currently subscribed to a group.
func (r *Registry) Channel(groupID int64) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.channels[groupID]
	res := make([]Session, 0, len(members))
	for _, s := range members {
		res = append(res, s)
	}
	return res
}

// Sessions returns every registered session.
func (r *Registry) Sessions() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]Session, 0, len(r.byUser))
	for _, s := range r.byUser {
		res = append(res, s)
	}
	return res
}
