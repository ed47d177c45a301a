package board

import (
	"sync"

	"github.com/rpggio/postflow/internal/domain/project"
)

// Store serializes dispatches against a single State.
type Store struct {
	mu     sync.RWMutex
	state  State
	issued uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Begin reserves a generation for a reload that is about to start.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Dispatch applies an action. Mutations without a generation are stamped
// with a fresh one so reloads started before them are discarded.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch m := a.(type) {
	case ProjectSaved:
		if m.Generation == 0 {
			s.issued++
			m.Generation = s.issued
			a = m
		}
	case ProjectRemoved:
		if m.Generation == 0 {
			s.issued++
			m.Generation = s.issued
			a = m
		}
	}
	s.state = Reduce(s.state, a)
	return s.state
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Visible returns the filtered projects of the current state.
func (s *Store) Visible() []project.Project {
	return s.Snapshot().Visible()
}
