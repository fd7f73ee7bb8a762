package relay

import (
	"sync"
)

// Registry is the authoritative mapping between phone-number topics and the
// live connections subscribed to them. It keeps a forward index
// (topic -> conn ids) and a reverse index (conn id -> topics) so that
// disconnect cleanup walks only the topics that connection held.
//
// Both indexes are guarded by one mutex; every method leaves them as exact
// mutual inverses.
type Registry struct {
	mu      sync.RWMutex
	byTopic map[string]map[string]struct{} // phoneNumberID -> conn ids
	byConn  map[string]map[string]struct{} // conn id -> phoneNumberIDs
}

func NewRegistry() *Registry {
	return &Registry{
		byTopic: make(map[string]map[string]struct{}),
		byConn:  make(map[string]map[string]struct{}),
	}
}

// Subscribe adds the pairing. Repeated calls with the same pair are no-ops.
func (r *Registry) Subscribe(connID, phoneNumberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byTopic[phoneNumberID] == nil {
		r.byTopic[phoneNumberID] = make(map[string]struct{})
	}
	r.byTopic[phoneNumberID][connID] = struct{}{}

	if r.byConn[connID] == nil {
		r.byConn[connID] = make(map[string]struct{})
	}
	r.byConn[connID][phoneNumberID] = struct{}{}
}

// Unsubscribe removes the pairing if present; absent pairings are no-ops.
func (r *Registry) Unsubscribe(connID, phoneNumberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(connID, phoneNumberID)
	if topics, ok := r.byConn[connID]; ok && len(topics) == 0 {
		delete(r.byConn, connID)
	}
}

// DropConnection removes the connection from every topic it belonged to and
// discards its reverse entry. Safe to call for an unknown connection.
func (r *Registry) DropConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for phoneNumberID := range r.byConn[connID] {
		r.removeLocked(connID, phoneNumberID)
	}
	delete(r.byConn, connID)
}

// SubscribersOf returns a snapshot of the conn ids currently bound to the
// topic. The snapshot is safe to range over while other goroutines mutate
// the registry.
func (r *Registry) SubscribersOf(phoneNumberID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byTopic[phoneNumberID]
	out := make([]string, 0, len(conns))
	for id := range conns {
		out = append(out, id)
	}
	return out
}

// Topics returns a snapshot of the topics a connection holds.
func (r *Registry) Topics(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := r.byConn[connID]
	out := make([]string, 0, len(topics))
	for id := range topics {
		out = append(out, id)
	}
	return out
}

// removeLocked drops connID from one topic set, pruning the set when empty.
// Caller holds r.mu.
func (r *Registry) removeLocked(connID, phoneNumberID string) {
	if conns, ok := r.byTopic[phoneNumberID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.byTopic, phoneNumberID)
		}
	}
	if topics, ok := r.byConn[connID]; ok {
		delete(topics, phoneNumberID)
	}
}
