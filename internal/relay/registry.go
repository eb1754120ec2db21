// Package relay maintains the authoritative set of live sessions via the
// Registry type.
package relay

import (
	"errors"
	"sync"
)

var (
	// ErrShuttingDown is returned when a session arrives after shutdown has
	// begun. This is the only expected registration failure.
	ErrShuttingDown = errors.New("registry is shutting down")

	// ErrDuplicateSession indicates two live sessions share a participant id.
	// Given how ids are minted this should never happen; it is surfaced as an
	// internal error and never becomes client-visible.
	ErrDuplicateSession = errors.New("duplicate session for participant id")
)

// Registry holds at most one live Session per participant id. Operations are
// safe under concurrent invocation; broadcast iteration works on a snapshot
// so registrations and removals during a fan-out cannot tear the walk.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Client
	closed   bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Client)}
}

// Register adds a session. It fails with ErrShuttingDown once Close has been
// called and with ErrDuplicateSession if the id is already present.
func (r *Registry) Register(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrShuttingDown
	}
	if _, exists := r.sessions[c.id]; exists {
		return ErrDuplicateSession
	}
	r.sessions[c.id] = c
	return nil
}

// Unregister removes the session for the given participant id and reports
// whether it was still present. It is idempotent; teardown paths rely on the
// report to fire their side effects exactly once.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Find returns the session for a participant id. A missing entry is not an
// error; directed sends to a vanished recipient are silently dropped.
func (r *Registry) Find(id string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[id]
	return c, ok
}

// Snapshot returns all sessions except the excluded participant. Pass an
// empty id to include everyone.
func (r *Registry) Snapshot(excludeID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.sessions))
	for id, c := range r.sessions {
		if id == excludeID {
			continue
		}
		clients = append(clients, c)
	}
	return clients
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close rejects all future registrations.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}
