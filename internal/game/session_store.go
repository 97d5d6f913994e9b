// internal/game/session_store.go
package game

import (
	"sync"

	"github.com/google/uuid"
)

// SessionStore keeps live sessions in memory only.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (s *SessionStore) AddSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

func (s *SessionStore) GetSession(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, exists := s.sessions[id]
	return session, exists
}

func (s *SessionStore) DeleteSession(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// GetSessionByRoomCode returns the first session showing the given room code, or nil.
// Codes are only unique per second of creation, so this is a convenience lookup.
func (s *SessionStore) GetSessionByRoomCode(code string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.RoomCode == code {
			return session
		}
	}
	return nil
}

// Len is the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
