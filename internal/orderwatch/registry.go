package orderwatch

import (
	"sync"
)

// Registry tracks one active watcher per session. Replacing a session's
// watcher stops the previous one; a session never has two concurrent
// pollers for different orders.
type Registry struct {
	mu       sync.Mutex
	watchers map[string]*Watcher
}

func NewRegistry() *Registry {
	return &Registry{
		watchers: make(map[string]*Watcher),
	}
}

func (r *Registry) Track(sessionID string, w *Watcher) {
	r.mu.Lock()
	prev := r.watchers[sessionID]
	r.watchers[sessionID] = w
	r.mu.Unlock()

	// A watcher that exits on its own (terminal order state) removes its
	// registry entry instead of lingering until session deletion.
	w.onDone = func() {
		r.remove(sessionID, w)
	}

	if prev != nil {
		prev.Stop()
	}
	w.Start()
}

// remove drops the entry only when it still points at w; a replacement
// tracked in the meantime stays.
func (r *Registry) remove(sessionID string, w *Watcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watchers[sessionID] == w {
		delete(r.watchers, sessionID)
	}
}

// Watching reports whether a watcher is currently registered for the
// session.
func (r *Registry) Watching(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.watchers[sessionID] != nil
}

// Poke wakes the session's watcher for an immediate out-of-band poll.
// No-op when nothing is being watched.
func (r *Registry) Poke(sessionID string) {
	r.mu.Lock()
	w := r.watchers[sessionID]
	r.mu.Unlock()

	if w != nil {
		w.Poke()
	}
}

func (r *Registry) Stop(sessionID string) {
	r.mu.Lock()
	w := r.watchers[sessionID]
	delete(r.watchers, sessionID)
	r.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

func (r *Registry) StopAll() {
	r.mu.Lock()
	watchers := r.watchers
	r.watchers = make(map[string]*Watcher)
	r.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}
}
