// Package roster maps stable participant identities to display names.
package roster

import "sync"

// Roster remembers the most recent display name seen for each identity. A nil
// *Roster is valid and displays identities as they are.
type Roster struct {
	mu    sync.RWMutex
	names map[string]string
}

// New creates an empty roster
func New() *Roster {
	return &Roster{names: make(map[string]string)}
}

// Remember records name as identity's display name. An empty name is ignored.
func (r *Roster) Remember(identity, name string) {
	if r == nil || identity == "" || name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[identity] = name
}

// Name returns identity's display name, or identity itself when unknown
func (r *Roster) Name(identity string) string {
	if r == nil {
		return identity
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.names[identity]; ok {
		return name
	}
	return identity
}
