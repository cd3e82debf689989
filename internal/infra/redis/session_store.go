package redis

import (
	"context"
	"sync"
	"time"

	"supplement-quiz-service/internal/quiz"

	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of quiz.SessionRepository.
// Notes:
//   - Quiz sessions stay in a local map so cursor updates remain lock-cheap
//     in-process operations; one session is only ever driven by one client.
//   - Redis marks session liveness so operators can see active quizzes and
//     TTLs reap abandoned ones.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*quiz.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*quiz.Session),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string) *quiz.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		// refresh liveness on resume
		_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
		return session
	}
	session := quiz.NewSession(sessionID)
	s.sessions[sessionID] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(sessionID), "1", s.ttl).Err()
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
	if _, ok := s.sessions[sessionID]; !ok {
		return
	}
	delete(s.sessions, sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
