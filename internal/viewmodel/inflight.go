// internal/viewmodel/inflight.go
//
// Per-request serialization shared by the dashboards. Two lifecycle
// mutations for the same request id must never be in flight at once from
// the same view; actions on different requests stay independent.

package viewmodel

import (
	"errors"
	"sync"
)

// ErrActionInFlight is returned when a second mutation is attempted for a
// request whose previous mutation has not resolved yet.
var ErrActionInFlight = errors.New("an action for this request is still running")

// Guard tracks request ids with an unresolved mutating call.
type Guard struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// Begin claims id for a mutating call. The caller must End when the call
// resolves, success or failure.
func (g *Guard) Begin(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ids == nil {
		g.ids = map[string]struct{}{}
	}
	if _, busy := g.ids[id]; busy {
		return ErrActionInFlight
	}
	g.ids[id] = struct{}{}
	return nil
}

// End releases id.
func (g *Guard) End(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.ids, id)
}

// Busy reports whether id has an unresolved call; views use this to keep
// the action affordance hidden until resolution.
func (g *Guard) Busy(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.ids[id]
	return busy
}
