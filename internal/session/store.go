// internal/session/store.go
//
// Store implementations for session state.
//
//   - Memory: map-backed, RWMutex-guarded; state is lost on restart.
//   - SQLite: see sqlite.go; survives restarts.
//
// Both copy State values on the way in and out, so a caller can never
// mutate another caller's session through a shared pointer.

package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for unknown session ids.
var ErrNotFound = errors.New("session: not found")

// Store persists session state keyed by session id.
type Store interface {
	// Get returns a copy of the stored state or ErrNotFound.
	Get(ctx context.Context, id string) (*State, error)

	// Save inserts or replaces the state under st.ID.
	Save(ctx context.Context, st *State) error

	// Delete removes a session. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error

	// Prune drops sessions idle since before and returns how many.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// memory is the in-process Store.
type memory struct {
	mu       sync.RWMutex      // guards sessions
	sessions map[string]*State // keyed by State.ID
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*State)}
}

func (m *memory) Get(ctx context.Context, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.sessions[id]; ok {
		return st.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Save(ctx context.Context, st *State) error {
	if st == nil || st.ID == "" {
		return errors.New("session: missing id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[st.ID] = st.Clone()
	return nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Prune(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, st := range m.sessions {
		if st.UpdatedAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
