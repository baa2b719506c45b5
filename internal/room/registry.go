package room

import (
	"sync"
	"time"

	"github.com/callegarimattia/battleship/internal/events"
)

// Registry is the C5 room store: a thread-safe directory of live engines.
// Exactly one writer at a time operates on any given room, enforced by that
// room's own Engine; Registry itself only guards the map of room IDs to
// engines.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*Engine
	cfg     Config
	pub     Publisher
	rec     events.Sink
}

// NewRegistry creates an empty room store.
func NewRegistry(cfg Config, pub Publisher, rec events.Sink) *Registry {
	return &Registry{engines: make(map[string]*Engine), cfg: cfg, pub: pub, rec: rec}
}

// Create builds a new room between p1 and p2, stores it, and returns the engine.
func (r *Registry) Create(id string, p1, p2 PlayerInit, vsBot bool) *Engine {
	e := NewEngine(id, p1, p2, vsBot, r.cfg, r.pub, r.rec)

	r.mu.Lock()
	r.engines[id] = e
	r.mu.Unlock()

	return e
}

// Get returns the engine for id, if any.
func (r *Registry) Get(id string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[id]
	return e, ok
}

// Remove drops a room from the store, e.g. once it has been over long
// enough that no reconnect or chat replay will reference it again.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, id)
}

// All returns a snapshot slice of every tracked engine, for callers that
// need to scan rooms (e.g. reconnect token resolution).
func (r *Registry) All() []*Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Engine, 0, len(r.engines))
	for _, e := range r.engines {
		out = append(out, e)
	}
	return out
}

// Len returns the number of rooms currently tracked.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}

// SweepOver removes every over room whose ChatTTLDeadline has already
// elapsed and returns how many it removed. No server component calls it on
// a schedule.
func (r *Registry) SweepOver() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.engines {
		snap := e.Snapshot()
		if snap.Phase != PhaseOver {
			continue
		}
		if !snap.ChatTTLDeadline.IsZero() && time.Now().After(snap.ChatTTLDeadline) {
			delete(r.engines, id)
			removed++
		}
	}
	return removed
}
