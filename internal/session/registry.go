package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

var ErrNotFound = errors.New("session not found")

// Registry holds live sessions keyed by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Create(direction Direction, inputAsset, outputAsset model.Asset) *Session {
	s := New(uuid.NewString(), direction, inputAsset, outputAsset)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
