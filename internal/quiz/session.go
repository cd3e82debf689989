package quiz

import (
	"sync"

	"supplement-quiz-service/internal/domain"
)

// Session holds one user's quiz progress: the cursor and the per-supplement
// score records. Sessions are single-user and strictly sequential, but the
// mutex keeps concurrent transport reads (progress snapshots) safe.
type Session struct {
	id string

	mu      sync.Mutex
	cursor  domain.Cursor
	records map[string]*domain.ScoreRecord
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string) *Session {
	return &Session{
		id:      id,
		cursor:  domain.Cursor{Phase: domain.PhaseScreening},
		records: make(map[string]*domain.ScoreRecord),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Advance reports the controller decision after one answer.
type Advance struct {
	Step   Step
	Cursor domain.Cursor
}

// applyAnswer records the chosen option for the current question and moves
// the cursor. The option index is validated against the question's declared
// options; arbitrary caller-supplied scores are never accepted.
func (s *Session) applyAnswer(cat domain.Catalog, optionIndex int) (Advance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor.SupplementIndex >= len(cat.Supplements) {
		return Advance{}, domain.ErrQuizCompleted
	}

	supp := cat.Supplements[s.cursor.SupplementIndex]
	questions := supp.PhaseQuestions(s.cursor.Phase)
	if s.cursor.QuestionIndex >= len(questions) {
		// Catalog shrank under a live session (cache refresh); treat as done.
		return Advance{}, domain.ErrQuizCompleted
	}
	question := questions[s.cursor.QuestionIndex]
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return Advance{}, domain.ErrOptionNotFound
	}
	score := question.Options[optionIndex].Score

	record, ok := s.records[supp.ID]
	if !ok {
		record = &domain.ScoreRecord{}
		s.records[supp.ID] = record
	}
	switch s.cursor.Phase {
	case domain.PhaseDetail:
		record.DetailScore += score
	default:
		record.ScreenScore += score
	}

	next, step := NextCursor(cat, s.cursor, record.ScreenScore)
	s.cursor = next
	return Advance{Step: step, Cursor: next}, nil
}

// Reset discards all score records and rewinds the cursor to the first
// screening question of the first supplement.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = domain.Cursor{Phase: domain.PhaseScreening}
	s.records = make(map[string]*domain.ScoreRecord)
}

// Cursor returns a snapshot of the current position.
func (s *Session) Cursor() domain.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Records returns a copy of the per-supplement score records.
func (s *Session) Records() map[string]domain.ScoreRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.ScoreRecord, len(s.records))
	for id, record := range s.records {
		out[id] = *record
	}
	return out
}
