package session

import (
	"sync"

	"neurolux_bot/internal/domain/dialog"
)

// MemoryManager is the in-process implementation of dialog.Manager. One bot
// process serves all users, so a mutex-guarded map is sufficient; sessions
// are small and disappear with the process by design.
type MemoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*dialog.Session
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{sessions: make(map[int64]*dialog.Session)}
}

// Get returns a copy of the user's session, or an idle session if none exists.
func (m *MemoryManager) Get(userID int64) dialog.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[userID]; ok {
		return *s
	}
	return dialog.Session{State: dialog.StateIdle}
}

// SetState moves the user to the given state, creating the session if needed.
// Scratch data is preserved across state changes within a funnel.
func (m *MemoryManager) SetState(userID int64, st dialog.State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = &dialog.Session{}
		m.sessions[userID] = s
	}
	s.State = st
}

// Update applies fn to the user's session under the write lock, creating the
// session if needed.
func (m *MemoryManager) Update(userID int64, fn func(*dialog.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = &dialog.Session{State: dialog.StateIdle}
		m.sessions[userID] = s
	}
	fn(s)
}

// Clear destroys the user's session, dropping state and scratch data.
func (m *MemoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
}

// InProgress reports whether the user has an active non-idle state.
func (m *MemoryManager) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	return ok && s.State != dialog.StateIdle
}
