package memory

import (
	"sync"

	"supplement-quiz-service/internal/quiz"
)

// SessionStore is an in-memory implementation of quiz.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*quiz.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*quiz.Session),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string) *quiz.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		return session
	}
	session := quiz.NewSession(sessionID)
	s.sessions[sessionID] = session
	return session
}

func (s *SessionStore) Get(sessionID string) (*quiz.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
